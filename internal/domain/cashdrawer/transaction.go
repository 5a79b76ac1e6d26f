package cashdrawer

import (
	"time"

	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money entering from money leaving the drawer
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// IsValid checks if the transaction type is a known value
func (t TransactionType) IsValid() bool {
	return t == TransactionDeposit || t == TransactionWithdrawal
}

// CashTransaction is an immutable append-only record of a deposit or
// withdrawal against a register. Created once, never mutated.
type CashTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	RegisterID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        TransactionType `gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description string          `gorm:"type:varchar(500)"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashTransaction) TableName() string {
	return "cash_transactions"
}

// NewCashTransaction creates a new transaction record
func NewCashTransaction(registerID uuid.UUID, txType TransactionType, amount valueobject.Money, description string, actorID uuid.UUID) (*CashTransaction, error) {
	if registerID == uuid.Nil {
		return nil, NewValidationError("register ID is required")
	}
	if !txType.IsValid() {
		return nil, NewValidationError("transaction type is not valid")
	}
	if !amount.IsPositive() {
		return nil, NewValidationError("transaction amount must be positive")
	}
	if actorID == uuid.Nil {
		return nil, NewValidationError("actor ID is required")
	}
	return &CashTransaction{
		ID:          uuid.New(),
		RegisterID:  registerID,
		Type:        txType,
		Amount:      amount.Amount(),
		Description: description,
		ActorID:     actorID,
		CreatedAt:   time.Now(),
	}, nil
}

// GetAmountMoney returns the amount as Money value object
func (t *CashTransaction) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(t.Amount)
}

// CashTransactionFilter defines filtering options for transaction queries
type CashTransactionFilter struct {
	shared.Filter
	RegisterID *uuid.UUID
	Type       *TransactionType
	FromDate   *time.Time
	ToDate     *time.Time
}
