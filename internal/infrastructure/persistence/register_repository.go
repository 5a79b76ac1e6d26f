package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashRegisterRepository implements CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByID finds a register by its ID
func (r *GormCashRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.CashRegister, error) {
	var register cashdrawer.CashRegister
	if err := r.db.WithContext(ctx).First(&register, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &register, nil
}

// FindByName finds a register by its unique name
func (r *GormCashRegisterRepository) FindByName(ctx context.Context, name string) (*cashdrawer.CashRegister, error) {
	var register cashdrawer.CashRegister
	if err := r.db.WithContext(ctx).First(&register, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &register, nil
}

// FindAll finds registers with filtering
func (r *GormCashRegisterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cashdrawer.CashRegister, error) {
	var registers []cashdrawer.CashRegister
	query := r.applyFilter(r.db.WithContext(ctx).Model(&cashdrawer.CashRegister{}), filter)
	if err := query.Find(&registers).Error; err != nil {
		return nil, err
	}
	return registers, nil
}

// FindActive finds all active registers
func (r *GormCashRegisterRepository) FindActive(ctx context.Context, filter shared.Filter) ([]cashdrawer.CashRegister, error) {
	var registers []cashdrawer.CashRegister
	query := r.db.WithContext(ctx).Model(&cashdrawer.CashRegister{}).
		Where("status = ?", cashdrawer.RegisterStatusActive)
	query = r.applyFilter(query, filter)
	if err := query.Find(&registers).Error; err != nil {
		return nil, err
	}
	return registers, nil
}

// Save creates or updates a register
func (r *GormCashRegisterRepository) Save(ctx context.Context, register *cashdrawer.CashRegister) error {
	return r.db.WithContext(ctx).Save(register).Error
}

// SaveWithLock saves the register with optimistic locking. The domain model
// has already incremented the version, so the persisted row must still hold
// the previous one.
func (r *GormCashRegisterRepository) SaveWithLock(ctx context.Context, register *cashdrawer.CashRegister) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveRegisterLocked(tx, register)
	})
}

// saveRegisterLocked performs the version-checked save inside an existing
// transaction. Shared with the ledger mutation scope.
func saveRegisterLocked(tx *gorm.DB, register *cashdrawer.CashRegister) error {
	var current cashdrawer.CashRegister
	if err := tx.Select("version").Where("id = ?", register.GetID()).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(register).Error
		}
		return err
	}

	expectedVersion := register.GetVersion() - 1
	if current.Version != expectedVersion {
		return cashdrawer.ErrConcurrentModification
	}

	result := tx.Model(register).
		Where("id = ? AND version = ?", register.GetID(), expectedVersion).
		Save(register)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cashdrawer.ErrConcurrentModification
	}
	return nil
}

// Count counts registers with filtering
func (r *GormCashRegisterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&cashdrawer.CashRegister{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCashRegisterRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	sortField := ValidateSortField(filter.OrderBy, RegisterSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}
