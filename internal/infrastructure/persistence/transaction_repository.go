package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashTransactionRepository implements CashTransactionRepository using GORM.
// Transaction rows are append-only.
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.CashTransaction, error) {
	var transaction cashdrawer.CashTransaction
	if err := r.db.WithContext(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

// FindByRegister finds transactions for a register with filtering
func (r *GormCashTransactionRepository) FindByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashTransactionFilter) ([]cashdrawer.CashTransaction, error) {
	var transactions []cashdrawer.CashTransaction
	query := r.db.WithContext(ctx).Model(&cashdrawer.CashTransaction{}).
		Where("register_id = ?", registerID)
	query = r.applyFilter(query, filter)

	sortField := ValidateSortField(filter.OrderBy, TransactionSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Save appends a transaction record
func (r *GormCashTransactionRepository) Save(ctx context.Context, transaction *cashdrawer.CashTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// CountByRegister counts transactions for a register
func (r *GormCashTransactionRepository) CountByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashTransactionFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&cashdrawer.CashTransaction{}).
		Where("register_id = ?", registerID)
	query = r.applyFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCashTransactionRepository) applyFilter(query *gorm.DB, filter cashdrawer.CashTransactionFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", filter.ToDate)
	}
	return query
}
