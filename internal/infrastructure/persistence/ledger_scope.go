package persistence

import (
	"context"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"gorm.io/gorm"
)

// GormLedgerMutationScope implements LedgerMutationScope using GORM
// transactions. The register save inside every commit is version-checked, so
// a lost race surfaces as ErrConcurrentModification and nothing is written.
type GormLedgerMutationScope struct {
	db *gorm.DB
}

// NewGormLedgerMutationScope creates a new GormLedgerMutationScope
func NewGormLedgerMutationScope(db *gorm.DB) *GormLedgerMutationScope {
	return &GormLedgerMutationScope{db: db}
}

// CommitAudit persists the mutated register, the audit record and an optional
// withdrawal transaction atomically
func (s *GormLedgerMutationScope) CommitAudit(ctx context.Context, register *cashdrawer.CashRegister, audit *cashdrawer.CashAudit, transaction *cashdrawer.CashTransaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveRegisterLocked(tx, register); err != nil {
			return err
		}
		if err := tx.Create(audit).Error; err != nil {
			return err
		}
		if transaction != nil {
			if err := tx.Create(transaction).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CommitTransaction persists the mutated register and its deposit or
// withdrawal record atomically
func (s *GormLedgerMutationScope) CommitTransaction(ctx context.Context, register *cashdrawer.CashRegister, transaction *cashdrawer.CashTransaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveRegisterLocked(tx, register); err != nil {
			return err
		}
		return tx.Create(transaction).Error
	})
}

var _ cashdrawer.LedgerMutationScope = (*GormLedgerMutationScope)(nil)
