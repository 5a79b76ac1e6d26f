package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashAuditRepository implements CashAuditRepository using GORM. Audit
// rows are append-only.
type GormCashAuditRepository struct {
	db *gorm.DB
}

// NewGormCashAuditRepository creates a new GormCashAuditRepository
func NewGormCashAuditRepository(db *gorm.DB) *GormCashAuditRepository {
	return &GormCashAuditRepository{db: db}
}

// FindByID finds an audit by its ID
func (r *GormCashAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.CashAudit, error) {
	var audit cashdrawer.CashAudit
	if err := r.db.WithContext(ctx).First(&audit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audit, nil
}

// FindByRegister finds audits for a register, newest first by default
func (r *GormCashAuditRepository) FindByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashAuditFilter) ([]cashdrawer.CashAudit, error) {
	var audits []cashdrawer.CashAudit
	query := r.db.WithContext(ctx).Model(&cashdrawer.CashAudit{}).
		Where("register_id = ?", registerID)
	query = r.applyFilter(query, filter)

	sortField := ValidateSortField(filter.OrderBy, AuditSortFields, "audit_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// FindLatestByRegister finds the most recent audit for a register
func (r *GormCashAuditRepository) FindLatestByRegister(ctx context.Context, registerID uuid.UUID) (*cashdrawer.CashAudit, error) {
	var audit cashdrawer.CashAudit
	if err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("audit_date DESC").
		First(&audit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audit, nil
}

// Save appends an audit record
func (r *GormCashAuditRepository) Save(ctx context.Context, audit *cashdrawer.CashAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// CountByRegister counts audits for a register
func (r *GormCashAuditRepository) CountByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashAuditFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&cashdrawer.CashAudit{}).
		Where("register_id = ?", registerID)
	query = r.applyFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCashAuditRepository) applyFilter(query *gorm.DB, filter cashdrawer.CashAuditFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.FromDate != nil {
		query = query.Where("audit_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("audit_date <= ?", filter.ToDate)
	}
	return query
}
