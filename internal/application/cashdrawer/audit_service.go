package cashdrawer

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuditService orchestrates the two-party audit and handoff workflows: the
// cashier counts, a supervisor authorizes, and the reconciled register
// mutation commits atomically with its audit record.
type AuditService struct {
	registerRepo cashdrawer.CashRegisterRepository
	auditRepo    cashdrawer.CashAuditRepository
	scope        cashdrawer.LedgerMutationScope
	authorizer   cashdrawer.SupervisorAuthorizer
	printer      cashdrawer.ReceiptPrinter
	notifier     cashdrawer.Notifier
	idempotency  shared.IdempotencyStore
	idemConfig   shared.IdempotencyConfig
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(
	registerRepo cashdrawer.CashRegisterRepository,
	auditRepo cashdrawer.CashAuditRepository,
	scope cashdrawer.LedgerMutationScope,
	authorizer cashdrawer.SupervisorAuthorizer,
	printer cashdrawer.ReceiptPrinter,
	notifier cashdrawer.Notifier,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		registerRepo: registerRepo,
		auditRepo:    auditRepo,
		scope:        scope,
		authorizer:   authorizer,
		printer:      printer,
		notifier:     notifier,
		idempotency:  idempotency,
		idemConfig:   shared.DefaultIdempotencyConfig(),
		validate:     validator.New(),
		logger:       logger,
	}
}

// SetIdempotencyConfig overrides the replay-protection settings
func (s *AuditService) SetIdempotencyConfig(cfg shared.IdempotencyConfig) {
	s.idemConfig = cfg
}

// AuditInput is the typed input for an audit or handoff submission
type AuditInput struct {
	RegisterID     uuid.UUID `validate:"required"`
	SubmissionID   string    `validate:"required,max=100"`
	SupervisorCode string    `validate:"required"`
	Counts         map[valueobject.DenominationCode]int64
	Actor          cashdrawer.Actor
}

// AuditResult is the workflow boundary result shape. Failures are always
// converted into this shape; nothing leaks past the workflow uncaught.
type AuditResult struct {
	Success        bool                            `json:"success"`
	Code           string                          `json:"code,omitempty"`
	Message        string                          `json:"message"`
	AuditID        *uuid.UUID                      `json:"audit_id,omitempty"`
	StartBalance   decimal.Decimal                 `json:"start_balance"`
	EndBalance     decimal.Decimal                 `json:"end_balance"`
	NewBalance     decimal.Decimal                 `json:"new_balance"`
	Shortfall      *valueobject.DenominationVector `json:"shortfall,omitempty"`
	ShortfallTotal decimal.Decimal                 `json:"shortfall_total"`
}

func failure(code, message string) *AuditResult {
	return &AuditResult{Success: false, Code: code, Message: message}
}

// PerformAudit runs the manager reconciliation workflow (corte de caja)
func (s *AuditService) PerformAudit(ctx context.Context, input AuditInput) (*AuditResult, error) {
	return s.perform(ctx, input, cashdrawer.AuditKindAudit)
}

// PerformHandoff runs the driver custody-transfer workflow. Same mechanics as
// an audit; the role gate and downstream routing differ.
func (s *AuditService) PerformHandoff(ctx context.Context, input AuditInput) (*AuditResult, error) {
	return s.perform(ctx, input, cashdrawer.AuditKindHandoff)
}

func (s *AuditService) perform(ctx context.Context, input AuditInput, kind cashdrawer.AuditKind) (*AuditResult, error) {
	if err := input.Actor.Validate(); err != nil {
		return s.toResult(err), nil
	}
	if err := s.validate.Struct(input); err != nil {
		return failure(cashdrawer.ErrCodeValidation, err.Error()), nil
	}

	switch kind {
	case cashdrawer.AuditKindAudit:
		if input.Actor.Role != cashdrawer.RoleManager {
			return failure(cashdrawer.ErrCodeAuthorization, "Only managers may perform audits"), nil
		}
	case cashdrawer.AuditKindHandoff:
		if input.Actor.Role != cashdrawer.RoleDriver {
			return failure(cashdrawer.ErrCodeAuthorization, "Only drivers may perform handoffs"), nil
		}
	}

	counted, err := valueobject.NewDenominationVector(input.Counts)
	if err != nil {
		return failure(cashdrawer.ErrCodeValidation, err.Error()), nil
	}

	// Supervisor authorization comes before any state is touched; a failed or
	// cancelled prompt leaves the register exactly as it was.
	authorization, err := s.authorizer.VerifyCode(ctx, input.SupervisorCode)
	if err != nil {
		return nil, fmt.Errorf("supervisor verification failed: %w", err)
	}
	if !authorization.Authorized {
		return failure(cashdrawer.ErrCodeAuthorization, "Supervisor code not recognized"), nil
	}

	submission := submissionKey(kind, input.SubmissionID)
	marked := false
	if s.idempotency != nil && s.idemConfig.Enabled {
		fresh, err := s.idempotency.MarkProcessed(ctx, submission, s.idemConfig.TTL)
		if err != nil {
			// best effort: an unavailable store must not block reconciliation
			s.logger.Warn("idempotency store unavailable", zap.Error(err))
		} else if !fresh {
			return failure(cashdrawer.ErrCodeDuplicateSubmission, "This submission was already processed"), nil
		} else {
			marked = true
		}
	}

	register, err := s.registerRepo.FindByID(ctx, input.RegisterID)
	if err != nil {
		s.releaseSubmission(ctx, submission, marked)
		return nil, fmt.Errorf("failed to find register: %w", err)
	}
	if register == nil {
		s.releaseSubmission(ctx, submission, marked)
		return failure(cashdrawer.ErrCodeRegisterNotFound, "Register not found"), nil
	}

	audit, shortfall, err := register.ApplyAudit(counted, kind, register.ManagerID, input.Actor.ID)
	if err != nil {
		s.releaseSubmission(ctx, submission, marked)
		return s.toResult(err), nil
	}

	// The counted cash leaves the drawer, so the commit records a matching
	// withdrawal alongside the audit. An empty count has nothing to record.
	var payout *cashdrawer.CashTransaction
	if audit.GetEndBalanceMoney().IsPositive() {
		payout, err = cashdrawer.NewCashTransaction(register.ID, cashdrawer.TransactionWithdrawal, audit.GetEndBalanceMoney(), payoutDescription(kind), input.Actor.ID)
		if err != nil {
			s.releaseSubmission(ctx, submission, marked)
			return s.toResult(err), nil
		}
	}

	if err := s.scope.CommitAudit(ctx, register, audit, payout); err != nil {
		// Nothing was persisted; free the submission ID so the client can retry.
		s.releaseSubmission(ctx, submission, marked)
		if errors.Is(err, cashdrawer.ErrConcurrentModification) {
			return failure(cashdrawer.ErrCodeConcurrentModification, cashdrawer.ErrConcurrentModification.Message), nil
		}
		s.logger.Error("audit commit failed",
			zap.String("register_id", register.ID.String()),
			zap.Error(err),
		)
		return failure(cashdrawer.ErrCodePersistence, "The audit could not be saved; no changes were applied"), nil
	}

	s.logEvents(register)

	shortfallTotal := shortfall.Total().Amount()
	if !shortfall.IsZero() {
		s.logger.Warn("audit counted more than expected",
			zap.String("register_id", register.ID.String()),
			zap.String("shortfall_total", shortfallTotal.String()),
		)
	}

	receipt := cashdrawer.AuditReceipt{
		AuditID:      audit.ID,
		RegisterID:   register.ID,
		RegisterName: register.Name,
		Kind:         kind,
		StartBalance: audit.StartBalance,
		EndBalance:   audit.EndBalance,
		AuditedBy:    input.Actor.ID,
		AuthorizedBy: authorization.AuthorizedUserID,
		AuditDate:    audit.AuditDate,
	}
	s.afterCommit(ctx, receipt)

	result := &AuditResult{
		Success:        true,
		Message:        "Audit completed",
		AuditID:        &audit.ID,
		StartBalance:   audit.StartBalance,
		EndBalance:     audit.EndBalance,
		NewBalance:     register.Balance,
		ShortfallTotal: shortfallTotal,
	}
	if kind == cashdrawer.AuditKindHandoff {
		result.Message = "Handoff completed"
	}
	if !shortfall.IsZero() {
		result.Shortfall = &shortfall
	}
	return result, nil
}

// ListAudits returns a register's audit history, newest first
func (s *AuditService) ListAudits(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashAuditFilter) (*shared.Paginated[cashdrawer.CashAudit], error) {
	audits, err := s.auditRepo.FindByRegister(ctx, registerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	total, err := s.auditRepo.CountByRegister(ctx, registerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count audits: %w", err)
	}
	result := shared.NewPaginated(audits, total, filter.Page, filter.PageSize)
	return &result, nil
}

// afterCommit triggers the fire-and-forget collaborators. Failures are logged
// and never roll back the committed audit.
func (s *AuditService) afterCommit(ctx context.Context, receipt cashdrawer.AuditReceipt) {
	if s.printer != nil {
		if err := s.printer.Print(ctx, receipt); err != nil {
			s.logger.Warn("receipt print failed",
				zap.String("audit_id", receipt.AuditID.String()),
				zap.Error(err),
			)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyAuditCompleted(ctx, receipt); err != nil {
			s.logger.Warn("audit notification failed",
				zap.String("audit_id", receipt.AuditID.String()),
				zap.Error(err),
			)
		}
	}
}

// toResult converts a domain error into the workflow result shape
func (s *AuditService) toResult(err error) *AuditResult {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return failure(domainErr.Code, domainErr.Message)
	}
	return failure(cashdrawer.ErrCodeValidation, err.Error())
}

func (s *AuditService) logEvents(register *cashdrawer.CashRegister) {
	for _, event := range register.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	register.ClearDomainEvents()
}

func submissionKey(kind cashdrawer.AuditKind, submissionID string) string {
	return fmt.Sprintf("%s:%s", kind, submissionID)
}

// releaseSubmission frees a marked submission ID after a failure so the same
// submission can be retried. Best effort: when the release itself fails the
// key is left to expire with its TTL.
func (s *AuditService) releaseSubmission(ctx context.Context, submission string, marked bool) {
	if !marked {
		return
	}
	if err := s.idempotency.Release(ctx, submission); err != nil {
		s.logger.Warn("failed to release submission key",
			zap.String("submission", submission),
			zap.Error(err),
		)
	}
}

func payoutDescription(kind cashdrawer.AuditKind) string {
	if kind == cashdrawer.AuditKindHandoff {
		return "Cash handed off"
	}
	return "Cash removed at audit"
}
