package cashdrawer

import (
	"fmt"
	"time"

	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterStatus represents the lifecycle state of a register
type RegisterStatus string

const (
	RegisterStatusActive RegisterStatus = "ACTIVE"
	RegisterStatusClosed RegisterStatus = "CLOSED"
)

// LedgerState tells whether a register's breakdown has been established.
// UNAUDITED registers have no breakdown yet; the balance-matches-breakdown
// invariant only holds once the first audit or breakdown deposit lands.
type LedgerState string

const (
	LedgerStateUnaudited  LedgerState = "UNAUDITED"
	LedgerStateReconciled LedgerState = "RECONCILED"
)

// CashRegister is the aggregate owning a physical drawer's running balance and
// its current denomination breakdown. Deposits, withdrawals, audits and
// handoffs mutate balance and breakdown together; the persistence layer
// commits each mutation atomically with its paired records, conditioned on the
// aggregate version.
type CashRegister struct {
	shared.BaseAggregateRoot
	Name          string                          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Fund          decimal.Decimal                 `gorm:"type:decimal(18,4);not null"`
	Balance       decimal.Decimal                 `gorm:"type:decimal(18,4);not null"`
	BillBreakdown *valueobject.DenominationVector `gorm:"type:jsonb"`
	ManagerID     uuid.UUID                       `gorm:"type:uuid;not null;index"`
	Status        RegisterStatus                  `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (CashRegister) TableName() string {
	return "cash_registers"
}

// OpenRegister creates a new register seeded with an initial fund and assigned
// to a manager. The balance starts at the fund; no breakdown exists until the
// first audit or breakdown deposit.
func OpenRegister(name string, fund valueobject.Money, managerID uuid.UUID) (*CashRegister, error) {
	if name == "" {
		return nil, NewValidationError("register name is required")
	}
	if len(name) > 100 {
		return nil, NewValidationError("register name cannot exceed 100 characters")
	}
	if fund.IsNegative() {
		return nil, NewValidationError("initial fund cannot be negative")
	}
	if managerID == uuid.Nil {
		return nil, NewValidationError("manager ID is required")
	}

	r := &CashRegister{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Fund:              fund.Amount(),
		Balance:           fund.Amount(),
		ManagerID:         managerID,
		Status:            RegisterStatusActive,
	}

	r.AddDomainEvent(NewRegisterOpenedEvent(r))

	return r, nil
}

// GetBalanceMoney returns the running balance as Money value object
func (r *CashRegister) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(r.Balance)
}

// GetFundMoney returns the initial fund as Money value object
func (r *CashRegister) GetFundMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(r.Fund)
}

// Breakdown returns the current denomination breakdown, or an empty vector if
// the register has never been audited
func (r *CashRegister) Breakdown() valueobject.DenominationVector {
	if r.BillBreakdown == nil {
		return valueobject.EmptyDenominationVector()
	}
	return *r.BillBreakdown
}

// LedgerState reports whether a breakdown has been established
func (r *CashRegister) LedgerState() LedgerState {
	if r.BillBreakdown == nil {
		return LedgerStateUnaudited
	}
	return LedgerStateReconciled
}

// IsReconciled reports whether the balance matches the breakdown total. Plain
// withdrawals decrement the balance without touching the breakdown, so the two
// can legitimately diverge between audits.
func (r *CashRegister) IsReconciled() bool {
	if r.BillBreakdown == nil {
		return false
	}
	return r.Balance.Equal(r.BillBreakdown.Total().Amount())
}

// Deposit adds a counted breakdown to the drawer: the balance grows by the
// vector total and the breakdown absorbs the vector. Used for petty-cash fund
// top-ups.
func (r *CashRegister) Deposit(vector valueobject.DenominationVector, description string, actorID uuid.UUID) (*CashTransaction, error) {
	if r.Status != RegisterStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot deposit into a %s register", r.Status))
	}
	if err := vector.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}
	total := vector.Total()
	if !total.IsPositive() {
		return nil, NewValidationError("deposit breakdown must have a positive total")
	}

	tx, err := NewCashTransaction(r.ID, TransactionDeposit, total, description, actorID)
	if err != nil {
		return nil, err
	}

	newBreakdown := r.Breakdown().Add(vector)
	r.Balance = r.Balance.Add(total.Amount())
	r.BillBreakdown = &newBreakdown
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewCashDepositedEvent(r, total))

	return tx, nil
}

// Withdraw decrements the balance without denomination tracking. The breakdown
// is left untouched, so balance and breakdown total diverge until the next
// audit re-establishes the counts.
func (r *CashRegister) Withdraw(amount valueobject.Money, description string, actorID uuid.UUID) (*CashTransaction, error) {
	if r.Status != RegisterStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot withdraw from a %s register", r.Status))
	}
	if !amount.IsPositive() {
		return nil, NewValidationError("withdrawal amount must be positive")
	}
	if amount.Amount().GreaterThan(r.Balance) {
		return nil, shared.NewDomainError("INSUFFICIENT_BALANCE",
			fmt.Sprintf("Withdrawal %.2f exceeds balance %.2f",
				amount.Amount().InexactFloat64(), r.Balance.InexactFloat64()))
	}

	tx, err := NewCashTransaction(r.ID, TransactionWithdrawal, amount, description, actorID)
	if err != nil {
		return nil, err
	}

	r.Balance = r.Balance.Sub(amount.Amount())
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewCashWithdrawnEvent(r, amount))

	return tx, nil
}

// ApplyAudit commits a counted breakdown against the expected one. The audit
// records endBalance = total(counted); the balance is decremented by the
// counted total (the counted cash leaves the drawer) and the breakdown becomes
// subtract(expected, counted). The returned shortfall is non-zero when the
// counted vector exceeded the expected one in any denomination; it is reported
// to the caller, never silently dropped.
func (r *CashRegister) ApplyAudit(counted valueobject.DenominationVector, kind AuditKind, managerID, userID uuid.UUID) (*CashAudit, valueobject.DenominationVector, error) {
	empty := valueobject.EmptyDenominationVector()

	if r.Status != RegisterStatusActive {
		return nil, empty, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot audit a %s register", r.Status))
	}
	if err := counted.Validate(); err != nil {
		return nil, empty, NewValidationError(err.Error())
	}

	startBalance := r.GetBalanceMoney()
	endBalance := counted.Total()

	audit, err := NewCashAudit(r.ID, managerID, userID, kind, startBalance, endBalance)
	if err != nil {
		return nil, empty, err
	}

	newBreakdown, shortfall := r.Breakdown().Subtract(counted)
	r.Balance = r.Balance.Sub(endBalance.Amount())
	r.BillBreakdown = &newBreakdown
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	if kind == AuditKindHandoff {
		r.AddDomainEvent(NewRegisterHandedOffEvent(r, audit))
	} else {
		r.AddDomainEvent(NewRegisterAuditedEvent(r, audit))
	}

	return audit, shortfall, nil
}

// Close deactivates the register. Registers are never physically deleted while
// transactions reference them.
func (r *CashRegister) Close() error {
	if r.Status == RegisterStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Register is already closed")
	}
	r.Status = RegisterStatusClosed
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}
