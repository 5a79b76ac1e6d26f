package cashdrawer

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type auditServiceFixture struct {
	registerRepo *MockCashRegisterRepository
	auditRepo    *MockCashAuditRepository
	scope        *MockLedgerMutationScope
	authorizer   *MockSupervisorAuthorizer
	printer      *MockReceiptPrinter
	notifier     *MockNotifier
	idempotency  *fakeIdempotencyStore
	service      *AuditService
}

func newAuditServiceFixture() *auditServiceFixture {
	f := &auditServiceFixture{
		registerRepo: new(MockCashRegisterRepository),
		auditRepo:    new(MockCashAuditRepository),
		scope:        new(MockLedgerMutationScope),
		authorizer:   new(MockSupervisorAuthorizer),
		printer:      new(MockReceiptPrinter),
		notifier:     new(MockNotifier),
		idempotency:  newFakeIdempotencyStore(),
	}
	f.service = NewAuditService(
		f.registerRepo,
		f.auditRepo,
		f.scope,
		f.authorizer,
		f.printer,
		f.notifier,
		f.idempotency,
		zap.NewNop(),
	)
	return f
}

// createAuditedRegister builds an active register holding 1x500 + 5x100 with a
// matching balance of 1000
func createAuditedRegister(t *testing.T) *cashdrawer.CashRegister {
	t.Helper()

	register, err := cashdrawer.OpenRegister("Caja Principal", valueobject.ZeroMXN(), uuid.New())
	require.NoError(t, err)

	vector, err := valueobject.NewDenominationVector(map[valueobject.DenominationCode]int64{
		valueobject.Bill500: 1,
		valueobject.Bill100: 5,
	})
	require.NoError(t, err)

	_, err = register.Deposit(vector, "seed", uuid.New())
	require.NoError(t, err)
	register.ClearDomainEvents()

	return register
}

func managerActor() cashdrawer.Actor {
	return cashdrawer.Actor{ID: uuid.New(), Role: cashdrawer.RoleManager}
}

func countedNineHundred() map[valueobject.DenominationCode]int64 {
	return map[valueobject.DenominationCode]int64{
		valueobject.Bill500: 1,
		valueobject.Bill100: 4,
	}
}

func authorizedSupervisor() cashdrawer.SupervisorAuthorization {
	return cashdrawer.SupervisorAuthorization{Authorized: true, AuthorizedUserID: uuid.New()}
}

func TestAuditService_PerformAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("successful audit", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.AnythingOfType("*cashdrawer.CashAudit"), mock.MatchedBy(func(tx *cashdrawer.CashTransaction) bool {
			return tx != nil && tx.Type == cashdrawer.TransactionWithdrawal && tx.Amount.Equal(decimal.NewFromInt(900))
		})).Return(nil)
		f.printer.On("Print", ctx, mock.AnythingOfType("cashdrawer.AuditReceipt")).Return(nil)
		f.notifier.On("NotifyAuditCompleted", ctx, mock.AnythingOfType("cashdrawer.AuditReceipt")).Return(nil)

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-1",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Success)
		assert.NotNil(t, result.AuditID)
		assert.True(t, result.StartBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, result.EndBalance.Equal(decimal.NewFromInt(900)))
		assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(100)))
		assert.Nil(t, result.Shortfall)
		assert.True(t, result.ShortfallTotal.IsZero())

		// one bill of 100 was not counted out, it stays in the drawer
		assert.EqualValues(t, 1, register.Breakdown().Count(valueobject.Bill100))
		assert.EqualValues(t, 0, register.Breakdown().Count(valueobject.Bill500))

		f.scope.AssertExpectations(t)
		f.printer.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("supervisor code rejected aborts before any state change", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "wrong").Return(cashdrawer.SupervisorAuthorization{}, nil)

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-2",
			SupervisorCode: "wrong",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodeAuthorization, result.Code)

		f.registerRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		f.scope.AssertNotCalled(t, "CommitAudit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.True(t, register.Balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("cashier cannot audit", func(t *testing.T) {
		f := newAuditServiceFixture()

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     uuid.New(),
			SubmissionID:   "sub-3",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          cashdrawer.Actor{ID: uuid.New(), Role: cashdrawer.RoleCashier},
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodeAuthorization, result.Code)
		f.authorizer.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything)
	})

	t.Run("duplicate submission is rejected", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(nil)
		f.printer.On("Print", ctx, mock.Anything).Return(nil)
		f.notifier.On("NotifyAuditCompleted", ctx, mock.Anything).Return(nil)

		input := AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-4",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		}

		first, err := f.service.PerformAudit(ctx, input)
		require.NoError(t, err)
		assert.True(t, first.Success)

		second, err := f.service.PerformAudit(ctx, input)
		require.NoError(t, err)
		assert.False(t, second.Success)
		assert.Equal(t, cashdrawer.ErrCodeDuplicateSubmission, second.Code)

		f.scope.AssertNumberOfCalls(t, "CommitAudit", 1)
	})

	t.Run("persistence failure yields failure result without side effects", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-5",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodePersistence, result.Code)

		f.printer.AssertNotCalled(t, "Print", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "NotifyAuditCompleted", mock.Anything, mock.Anything)
	})

	t.Run("failed commit releases the submission so a retry succeeds", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)
		// a rolled-back commit leaves the stored row untouched, so the retry
		// loads a pristine register
		retryRegister := createAuditedRegister(t)
		retryRegister.ID = register.ID

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil).Once()
		f.registerRepo.On("FindByID", ctx, register.ID).Return(retryRegister, nil).Once()
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
		f.scope.On("CommitAudit", ctx, retryRegister, mock.Anything, mock.Anything).Return(nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)
		f.notifier.On("NotifyAuditCompleted", ctx, mock.Anything).Return(nil)

		input := AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-retry",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		}

		first, err := f.service.PerformAudit(ctx, input)
		require.NoError(t, err)
		assert.False(t, first.Success)
		assert.Equal(t, cashdrawer.ErrCodePersistence, first.Code)

		second, err := f.service.PerformAudit(ctx, input)
		require.NoError(t, err)
		assert.True(t, second.Success)

		f.scope.AssertNumberOfCalls(t, "CommitAudit", 2)
	})

	t.Run("concurrent modification maps to conflict code", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(cashdrawer.ErrConcurrentModification)

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-6",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodeConcurrentModification, result.Code)
	})

	t.Run("register not found", func(t *testing.T) {
		f := newAuditServiceFixture()
		registerID := uuid.New()

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, registerID).Return(nil, nil)

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     registerID,
			SubmissionID:   "sub-7",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodeRegisterNotFound, result.Code)
	})

	t.Run("printer failure does not fail the audit", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(nil)
		f.printer.On("Print", ctx, mock.Anything).Return(errors.New("printer offline"))
		f.notifier.On("NotifyAuditCompleted", ctx, mock.Anything).Return(nil)

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-8",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		f.notifier.AssertExpectations(t)
	})

	t.Run("overcounted drawer surfaces the shortfall", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(nil)
		f.printer.On("Print", ctx, mock.Anything).Return(nil)
		f.notifier.On("NotifyAuditCompleted", ctx, mock.Anything).Return(nil)

		// two 500 bills counted but only one expected
		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "sub-9",
			SupervisorCode: "1234",
			Counts: map[valueobject.DenominationCode]int64{
				valueobject.Bill500: 2,
				valueobject.Bill100: 5,
			},
			Actor: managerActor(),
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		require.NotNil(t, result.Shortfall)
		assert.EqualValues(t, 1, result.Shortfall.Count(valueobject.Bill500))
		assert.True(t, result.ShortfallTotal.Equal(decimal.NewFromInt(500)))
	})

	t.Run("missing supervisor code fails validation", func(t *testing.T) {
		f := newAuditServiceFixture()

		result, err := f.service.PerformAudit(ctx, AuditInput{
			RegisterID:   uuid.New(),
			SubmissionID: "sub-10",
			Counts:       countedNineHundred(),
			Actor:        managerActor(),
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodeValidation, result.Code)
	})
}

func TestAuditService_PerformHandoff(t *testing.T) {
	ctx := context.Background()

	t.Run("driver hands off custody", func(t *testing.T) {
		f := newAuditServiceFixture()
		register := createAuditedRegister(t)

		f.authorizer.On("VerifyCode", ctx, "1234").Return(authorizedSupervisor(), nil)
		f.registerRepo.On("FindByID", ctx, register.ID).Return(register, nil)
		f.scope.On("CommitAudit", ctx, register, mock.Anything, mock.Anything).Return(nil)
		f.printer.On("Print", ctx, mock.Anything).Return(nil)
		f.notifier.On("NotifyAuditCompleted", ctx, mock.Anything).Return(nil)

		result, err := f.service.PerformHandoff(ctx, AuditInput{
			RegisterID:     register.ID,
			SubmissionID:   "handoff-1",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          cashdrawer.Actor{ID: uuid.New(), Role: cashdrawer.RoleDriver},
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Handoff completed", result.Message)
	})

	t.Run("manager cannot hand off", func(t *testing.T) {
		f := newAuditServiceFixture()

		result, err := f.service.PerformHandoff(ctx, AuditInput{
			RegisterID:     uuid.New(),
			SubmissionID:   "handoff-2",
			SupervisorCode: "1234",
			Counts:         countedNineHundred(),
			Actor:          managerActor(),
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, cashdrawer.ErrCodeAuthorization, result.Code)
		f.authorizer.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything)
	})
}

func TestAuditService_ListAudits(t *testing.T) {
	ctx := context.Background()

	t.Run("paginated history", func(t *testing.T) {
		f := newAuditServiceFixture()
		registerID := uuid.New()
		filter := cashdrawer.CashAuditFilter{}
		filter.Page = 1
		filter.PageSize = 20

		audits := []cashdrawer.CashAudit{
			{ID: uuid.New(), RegisterID: registerID, Kind: cashdrawer.AuditKindAudit},
		}
		f.auditRepo.On("FindByRegister", ctx, registerID, filter).Return(audits, nil)
		f.auditRepo.On("CountByRegister", ctx, registerID, filter).Return(int64(1), nil)

		result, err := f.service.ListAudits(ctx, registerID, filter)

		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.EqualValues(t, 1, result.Total)
	})
}
