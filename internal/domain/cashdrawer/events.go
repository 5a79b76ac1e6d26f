package cashdrawer

import (
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the cash drawer domain
const (
	EventRegisterOpened    = "cashdrawer.register.opened"
	EventCashDeposited     = "cashdrawer.cash.deposited"
	EventCashWithdrawn     = "cashdrawer.cash.withdrawn"
	EventRegisterAudited   = "cashdrawer.register.audited"
	EventRegisterHandedOff = "cashdrawer.register.handed_off"
)

const aggregateTypeRegister = "CashRegister"

// RegisterOpenedEvent is emitted when a register is opened with its initial fund
type RegisterOpenedEvent struct {
	shared.BaseDomainEvent
	Name      string          `json:"name"`
	Fund      decimal.Decimal `json:"fund"`
	ManagerID uuid.UUID       `json:"manager_id"`
}

// NewRegisterOpenedEvent creates a RegisterOpenedEvent
func NewRegisterOpenedEvent(r *CashRegister) *RegisterOpenedEvent {
	return &RegisterOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRegisterOpened, aggregateTypeRegister, r.ID),
		Name:            r.Name,
		Fund:            r.Fund,
		ManagerID:       r.ManagerID,
	}
}

// CashDepositedEvent is emitted when a breakdown deposit lands on a register
type CashDepositedEvent struct {
	shared.BaseDomainEvent
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// NewCashDepositedEvent creates a CashDepositedEvent
func NewCashDepositedEvent(r *CashRegister, amount valueobject.Money) *CashDepositedEvent {
	return &CashDepositedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCashDeposited, aggregateTypeRegister, r.ID),
		Amount:          amount.Amount(),
		NewBalance:      r.Balance,
	}
}

// CashWithdrawnEvent is emitted when a plain withdrawal decrements a register
type CashWithdrawnEvent struct {
	shared.BaseDomainEvent
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// NewCashWithdrawnEvent creates a CashWithdrawnEvent
func NewCashWithdrawnEvent(r *CashRegister, amount valueobject.Money) *CashWithdrawnEvent {
	return &CashWithdrawnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCashWithdrawn, aggregateTypeRegister, r.ID),
		Amount:          amount.Amount(),
		NewBalance:      r.Balance,
	}
}

// RegisterAuditedEvent is emitted when a manager audit commits
type RegisterAuditedEvent struct {
	shared.BaseDomainEvent
	AuditID      uuid.UUID       `json:"audit_id"`
	StartBalance decimal.Decimal `json:"start_balance"`
	EndBalance   decimal.Decimal `json:"end_balance"`
}

// NewRegisterAuditedEvent creates a RegisterAuditedEvent
func NewRegisterAuditedEvent(r *CashRegister, audit *CashAudit) *RegisterAuditedEvent {
	return &RegisterAuditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRegisterAudited, aggregateTypeRegister, r.ID),
		AuditID:         audit.ID,
		StartBalance:    audit.StartBalance,
		EndBalance:      audit.EndBalance,
	}
}

// RegisterHandedOffEvent is emitted when a driver handoff commits
type RegisterHandedOffEvent struct {
	shared.BaseDomainEvent
	AuditID      uuid.UUID       `json:"audit_id"`
	StartBalance decimal.Decimal `json:"start_balance"`
	EndBalance   decimal.Decimal `json:"end_balance"`
}

// NewRegisterHandedOffEvent creates a RegisterHandedOffEvent
func NewRegisterHandedOffEvent(r *CashRegister, audit *CashAudit) *RegisterHandedOffEvent {
	return &RegisterHandedOffEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRegisterHandedOff, aggregateTypeRegister, r.ID),
		AuditID:         audit.ID,
		StartBalance:    audit.StartBalance,
		EndBalance:      audit.EndBalance,
	}
}
