package cashdrawer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupervisorAuthorization is the outcome of a supervisor code check
type SupervisorAuthorization struct {
	Authorized       bool
	AuthorizedUserID uuid.UUID
}

// SupervisorAuthorizer verifies an out-of-band supervisor code against the
// authorized-user list. Audit and handoff workflows abort before any state
// change when the check fails.
type SupervisorAuthorizer interface {
	VerifyCode(ctx context.Context, code string) (SupervisorAuthorization, error)
}

// AuditReceipt is the payload handed to the receipt printer after an audit or
// handoff commits
type AuditReceipt struct {
	AuditID      uuid.UUID
	RegisterID   uuid.UUID
	RegisterName string
	Kind         AuditKind
	StartBalance decimal.Decimal
	EndBalance   decimal.Decimal
	AuditedBy    uuid.UUID
	AuthorizedBy uuid.UUID
	AuditDate    time.Time
}

// ReceiptPrinter prints a reconciliation receipt. Printing is fire-and-forget:
// a failure never rolls back the committed audit.
type ReceiptPrinter interface {
	Print(ctx context.Context, receipt AuditReceipt) error
}

// Notifier delivers post-commit notifications to external channels. Invoked
// after the ledger transition commits; never blocks or gates it.
type Notifier interface {
	NotifyAuditCompleted(ctx context.Context, receipt AuditReceipt) error
}
