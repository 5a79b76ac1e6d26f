package cashdrawer

import (
	"context"

	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/google/uuid"
)

// CashRegisterRepository defines the interface for register persistence
type CashRegisterRepository interface {
	// FindByID finds a register by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CashRegister, error)

	// FindByName finds a register by its unique name
	FindByName(ctx context.Context, name string) (*CashRegister, error)

	// FindAll finds registers with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]CashRegister, error)

	// FindActive finds all active registers
	FindActive(ctx context.Context, filter shared.Filter) ([]CashRegister, error)

	// Save creates or updates a register
	Save(ctx context.Context, register *CashRegister) error

	// SaveWithLock saves with optimistic locking (version check);
	// returns ErrConcurrentModification on a lost race
	SaveWithLock(ctx context.Context, register *CashRegister) error

	// Count counts registers with filtering
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CashTransactionRepository defines the interface for transaction persistence.
// Transactions are append-only: there is no update or delete.
type CashTransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CashTransaction, error)

	// FindByRegister finds transactions for a register with filtering
	FindByRegister(ctx context.Context, registerID uuid.UUID, filter CashTransactionFilter) ([]CashTransaction, error)

	// Save appends a transaction record
	Save(ctx context.Context, transaction *CashTransaction) error

	// CountByRegister counts transactions for a register
	CountByRegister(ctx context.Context, registerID uuid.UUID, filter CashTransactionFilter) (int64, error)
}

// CashAuditRepository defines the interface for audit record persistence.
// Audit records are append-only.
type CashAuditRepository interface {
	// FindByID finds an audit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CashAudit, error)

	// FindByRegister finds audits for a register, newest first
	FindByRegister(ctx context.Context, registerID uuid.UUID, filter CashAuditFilter) ([]CashAudit, error)

	// FindLatestByRegister finds the most recent audit for a register
	FindLatestByRegister(ctx context.Context, registerID uuid.UUID) (*CashAudit, error)

	// Save appends an audit record
	Save(ctx context.Context, audit *CashAudit) error

	// CountByRegister counts audits for a register
	CountByRegister(ctx context.Context, registerID uuid.UUID, filter CashAuditFilter) (int64, error)
}

// LedgerMutationScope commits a register mutation together with its paired
// records as one atomic unit: either every write lands or none does. The
// register save inside the scope is version-checked, so overlapping mutations
// against the same register fail with ErrConcurrentModification instead of
// silently clobbering each other.
type LedgerMutationScope interface {
	// CommitAudit persists the mutated register, the audit record and an
	// optional withdrawal transaction in a single transaction
	CommitAudit(ctx context.Context, register *CashRegister, audit *CashAudit, transaction *CashTransaction) error

	// CommitTransaction persists the mutated register and a deposit or
	// withdrawal record in a single transaction
	CommitTransaction(ctx context.Context, register *CashRegister, transaction *CashTransaction) error
}
