package cashdrawer

import (
	"context"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RegisterService handles register lifecycle, petty-cash deposits and plain
// withdrawals
type RegisterService struct {
	registerRepo cashdrawer.CashRegisterRepository
	txRepo       cashdrawer.CashTransactionRepository
	scope        cashdrawer.LedgerMutationScope
	advisor      *ChangeAdvisor
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(
	registerRepo cashdrawer.CashRegisterRepository,
	txRepo cashdrawer.CashTransactionRepository,
	scope cashdrawer.LedgerMutationScope,
	advisor *ChangeAdvisor,
	logger *zap.Logger,
) *RegisterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterService{
		registerRepo: registerRepo,
		txRepo:       txRepo,
		scope:        scope,
		advisor:      advisor,
		validate:     validator.New(),
		logger:       logger,
	}
}

// OpenRegisterInput is the typed input for opening a register
type OpenRegisterInput struct {
	Name      string          `validate:"required,max=100"`
	Fund      decimal.Decimal `validate:"-"`
	ManagerID uuid.UUID       `validate:"required"`
	Actor     cashdrawer.Actor
}

// OpenRegister creates a register seeded with an initial fund. Only managers
// may open registers.
func (s *RegisterService) OpenRegister(ctx context.Context, input OpenRegisterInput) (*cashdrawer.CashRegister, error) {
	if err := input.Actor.Validate(); err != nil {
		return nil, err
	}
	if input.Actor.Role != cashdrawer.RoleManager {
		return nil, shared.NewDomainError("FORBIDDEN", "Only managers may open registers")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, cashdrawer.NewValidationError(err.Error())
	}

	existing, err := s.registerRepo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check register name: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Register %q already exists", input.Name))
	}

	register, err := cashdrawer.OpenRegister(input.Name, valueobject.NewMoneyMXN(input.Fund), input.ManagerID)
	if err != nil {
		return nil, err
	}

	if err := s.registerRepo.Save(ctx, register); err != nil {
		return nil, fmt.Errorf("failed to save register: %w", err)
	}

	s.logEvents(register)
	s.logger.Info("register opened",
		zap.String("register_id", register.ID.String()),
		zap.String("name", register.Name),
		zap.String("fund", register.Fund.String()),
	)

	return register, nil
}

// DepositInput is the typed input for a petty-cash deposit
type DepositInput struct {
	RegisterID  uuid.UUID `validate:"required"`
	Counts      map[valueobject.DenominationCode]int64
	Description string `validate:"max=500"`
	Actor       cashdrawer.Actor
}

// DepositResult carries the committed transaction plus the post-deposit change
// advisory
type DepositResult struct {
	Transaction *cashdrawer.CashTransaction
	NewBalance  decimal.Decimal
	Breakdown   valueobject.DenominationVector
	Advisories  []ChangeAdvisory
}

// DepositPettyCash adds a counted breakdown to a register's float. After the
// commit the common-amount battery is screened against the new breakdown so
// the operator learns immediately if the drawer lost change coverage.
func (s *RegisterService) DepositPettyCash(ctx context.Context, input DepositInput) (*DepositResult, error) {
	if err := input.Actor.Validate(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, cashdrawer.NewValidationError(err.Error())
	}

	vector, err := valueobject.NewDenominationVector(input.Counts)
	if err != nil {
		return nil, cashdrawer.NewValidationError(err.Error())
	}

	register, err := s.findActiveRegister(ctx, input.RegisterID)
	if err != nil {
		return nil, err
	}

	tx, err := register.Deposit(vector, input.Description, input.Actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.scope.CommitTransaction(ctx, register, tx); err != nil {
		return nil, err
	}

	s.logEvents(register)

	advisories, err := s.advisor.Screen(register.Name, register.Breakdown())
	if err != nil {
		// advisory only, the deposit already committed
		s.logger.Warn("change advisory failed", zap.Error(err))
		advisories = nil
	}

	return &DepositResult{
		Transaction: tx,
		NewBalance:  register.Balance,
		Breakdown:   register.Breakdown(),
		Advisories:  advisories,
	}, nil
}

// WithdrawInput is the typed input for a plain withdrawal
type WithdrawInput struct {
	RegisterID  uuid.UUID       `validate:"required"`
	Amount      decimal.Decimal `validate:"-"`
	Description string          `validate:"max=500"`
	Actor       cashdrawer.Actor
}

// Withdraw decrements a register balance without denomination tracking
func (s *RegisterService) Withdraw(ctx context.Context, input WithdrawInput) (*cashdrawer.CashTransaction, error) {
	if err := input.Actor.Validate(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, cashdrawer.NewValidationError(err.Error())
	}

	register, err := s.findActiveRegister(ctx, input.RegisterID)
	if err != nil {
		return nil, err
	}

	tx, err := register.Withdraw(valueobject.NewMoneyMXN(input.Amount), input.Description, input.Actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.scope.CommitTransaction(ctx, register, tx); err != nil {
		return nil, err
	}

	s.logEvents(register)

	return tx, nil
}

// CloseRegister deactivates a register. Supervisor-gated destructive actions
// like physical deletion are not offered; closed registers keep their history.
func (s *RegisterService) CloseRegister(ctx context.Context, registerID uuid.UUID, actor cashdrawer.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if actor.Role != cashdrawer.RoleManager {
		return shared.NewDomainError("FORBIDDEN", "Only managers may close registers")
	}

	register, err := s.findRegister(ctx, registerID)
	if err != nil {
		return err
	}
	if err := register.Close(); err != nil {
		return err
	}
	if err := s.registerRepo.SaveWithLock(ctx, register); err != nil {
		return err
	}

	s.logger.Info("register closed", zap.String("register_id", registerID.String()))
	return nil
}

// GetRegister returns a register by ID
func (s *RegisterService) GetRegister(ctx context.Context, registerID uuid.UUID) (*cashdrawer.CashRegister, error) {
	return s.findRegister(ctx, registerID)
}

// ListRegisters returns registers with pagination
func (s *RegisterService) ListRegisters(ctx context.Context, filter shared.Filter) (*shared.Paginated[cashdrawer.CashRegister], error) {
	registers, err := s.registerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list registers: %w", err)
	}
	total, err := s.registerRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count registers: %w", err)
	}
	result := shared.NewPaginated(registers, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListTransactions returns a register's transactions with filtering
func (s *RegisterService) ListTransactions(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashTransactionFilter) (*shared.Paginated[cashdrawer.CashTransaction], error) {
	if _, err := s.findRegister(ctx, registerID); err != nil {
		return nil, err
	}
	transactions, err := s.txRepo.FindByRegister(ctx, registerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.txRepo.CountByRegister(ctx, registerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	result := shared.NewPaginated(transactions, total, filter.Page, filter.PageSize)
	return &result, nil
}

// CheckChangeAvailability runs the advisory battery against a register's
// current breakdown
func (s *RegisterService) CheckChangeAvailability(ctx context.Context, registerID uuid.UUID) ([]ChangeAdvisory, error) {
	register, err := s.findRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}
	return s.advisor.Screen(register.Name, register.Breakdown())
}

func (s *RegisterService) findRegister(ctx context.Context, registerID uuid.UUID) (*cashdrawer.CashRegister, error) {
	if registerID == uuid.Nil {
		return nil, cashdrawer.NewValidationError("register ID is required")
	}
	register, err := s.registerRepo.FindByID(ctx, registerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find register: %w", err)
	}
	if register == nil {
		return nil, shared.NewDomainError(cashdrawer.ErrCodeRegisterNotFound, "Register not found")
	}
	return register, nil
}

func (s *RegisterService) findActiveRegister(ctx context.Context, registerID uuid.UUID) (*cashdrawer.CashRegister, error) {
	register, err := s.findRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register.Status != cashdrawer.RegisterStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Register is not active")
	}
	return register, nil
}

// logEvents drains and logs the aggregate's pending domain events
func (s *RegisterService) logEvents(register *cashdrawer.CashRegister) {
	for _, event := range register.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	register.ClearDomainEvents()
}
