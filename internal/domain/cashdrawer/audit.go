package cashdrawer

import (
	"time"

	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditKind separates a manager reconciliation from a driver cash handoff.
// Both share the same mechanics; authorization and downstream routing differ.
type AuditKind string

const (
	AuditKindAudit   AuditKind = "AUDIT"
	AuditKindHandoff AuditKind = "HANDOFF"
)

// IsValid checks if the audit kind is a known value
func (k AuditKind) IsValid() bool {
	return k == AuditKindAudit || k == AuditKindHandoff
}

// CashAudit is an immutable record of a reconciliation event: the
// cashier-counted total at a point in time versus the system-expected balance.
type CashAudit struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	RegisterID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ManagerID    uuid.UUID       `gorm:"type:uuid;not null"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null"`
	Kind         AuditKind       `gorm:"type:varchar(20);not null;index"`
	StartBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EndBalance   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AuditDate    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CashAudit) TableName() string {
	return "cash_audits"
}

// NewCashAudit creates a new audit record
func NewCashAudit(registerID, managerID, userID uuid.UUID, kind AuditKind, startBalance, endBalance valueobject.Money) (*CashAudit, error) {
	if registerID == uuid.Nil {
		return nil, NewValidationError("register ID is required")
	}
	if managerID == uuid.Nil {
		return nil, NewValidationError("manager ID is required")
	}
	if userID == uuid.Nil {
		return nil, NewValidationError("user ID is required")
	}
	if !kind.IsValid() {
		return nil, NewValidationError("audit kind is not valid")
	}
	return &CashAudit{
		ID:           uuid.New(),
		RegisterID:   registerID,
		ManagerID:    managerID,
		UserID:       userID,
		Kind:         kind,
		StartBalance: startBalance.Amount(),
		EndBalance:   endBalance.Amount(),
		AuditDate:    time.Now(),
	}, nil
}

// GetStartBalanceMoney returns the start balance as Money value object
func (a *CashAudit) GetStartBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(a.StartBalance)
}

// GetEndBalanceMoney returns the counted end balance as Money value object
func (a *CashAudit) GetEndBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(a.EndBalance)
}

// CashAuditFilter defines filtering options for audit queries
type CashAuditFilter struct {
	shared.Filter
	RegisterID *uuid.UUID
	Kind       *AuditKind
	FromDate   *time.Time
	ToDate     *time.Time
}
