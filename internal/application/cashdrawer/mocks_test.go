package cashdrawer

import (
	"context"
	"sync"
	"time"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCashRegisterRepository is a mock implementation of CashRegisterRepository
type MockCashRegisterRepository struct {
	mock.Mock
}

func (m *MockCashRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.CashRegister, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.CashRegister), args.Error(1)
}

func (m *MockCashRegisterRepository) FindByName(ctx context.Context, name string) (*cashdrawer.CashRegister, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.CashRegister), args.Error(1)
}

func (m *MockCashRegisterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cashdrawer.CashRegister, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cashdrawer.CashRegister), args.Error(1)
}

func (m *MockCashRegisterRepository) FindActive(ctx context.Context, filter shared.Filter) ([]cashdrawer.CashRegister, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cashdrawer.CashRegister), args.Error(1)
}

func (m *MockCashRegisterRepository) Save(ctx context.Context, register *cashdrawer.CashRegister) error {
	args := m.Called(ctx, register)
	return args.Error(0)
}

func (m *MockCashRegisterRepository) SaveWithLock(ctx context.Context, register *cashdrawer.CashRegister) error {
	args := m.Called(ctx, register)
	return args.Error(0)
}

func (m *MockCashRegisterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCashTransactionRepository is a mock implementation of CashTransactionRepository
type MockCashTransactionRepository struct {
	mock.Mock
}

func (m *MockCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.CashTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) FindByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashTransactionFilter) ([]cashdrawer.CashTransaction, error) {
	args := m.Called(ctx, registerID, filter)
	return args.Get(0).([]cashdrawer.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) Save(ctx context.Context, transaction *cashdrawer.CashTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockCashTransactionRepository) CountByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashTransactionFilter) (int64, error) {
	args := m.Called(ctx, registerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCashAuditRepository is a mock implementation of CashAuditRepository
type MockCashAuditRepository struct {
	mock.Mock
}

func (m *MockCashAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.CashAudit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.CashAudit), args.Error(1)
}

func (m *MockCashAuditRepository) FindByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashAuditFilter) ([]cashdrawer.CashAudit, error) {
	args := m.Called(ctx, registerID, filter)
	return args.Get(0).([]cashdrawer.CashAudit), args.Error(1)
}

func (m *MockCashAuditRepository) FindLatestByRegister(ctx context.Context, registerID uuid.UUID) (*cashdrawer.CashAudit, error) {
	args := m.Called(ctx, registerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.CashAudit), args.Error(1)
}

func (m *MockCashAuditRepository) Save(ctx context.Context, audit *cashdrawer.CashAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockCashAuditRepository) CountByRegister(ctx context.Context, registerID uuid.UUID, filter cashdrawer.CashAuditFilter) (int64, error) {
	args := m.Called(ctx, registerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerMutationScope is a mock implementation of LedgerMutationScope
type MockLedgerMutationScope struct {
	mock.Mock
}

func (m *MockLedgerMutationScope) CommitAudit(ctx context.Context, register *cashdrawer.CashRegister, audit *cashdrawer.CashAudit, transaction *cashdrawer.CashTransaction) error {
	args := m.Called(ctx, register, audit, transaction)
	return args.Error(0)
}

func (m *MockLedgerMutationScope) CommitTransaction(ctx context.Context, register *cashdrawer.CashRegister, transaction *cashdrawer.CashTransaction) error {
	args := m.Called(ctx, register, transaction)
	return args.Error(0)
}

// MockSupervisorAuthorizer is a mock implementation of SupervisorAuthorizer
type MockSupervisorAuthorizer struct {
	mock.Mock
}

func (m *MockSupervisorAuthorizer) VerifyCode(ctx context.Context, code string) (cashdrawer.SupervisorAuthorization, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(cashdrawer.SupervisorAuthorization), args.Error(1)
}

// MockReceiptPrinter is a mock implementation of ReceiptPrinter
type MockReceiptPrinter struct {
	mock.Mock
}

func (m *MockReceiptPrinter) Print(ctx context.Context, receipt cashdrawer.AuditReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAuditCompleted(ctx context.Context, receipt cashdrawer.AuditReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

// fakeIdempotencyStore is a map-backed store for workflow tests
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (f *fakeIdempotencyStore) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[id] {
		return false, nil
	}
	f.seen[id] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IsProcessed(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[id], nil
}

func (f *fakeIdempotencyStore) Release(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, id)
	return nil
}

func (f *fakeIdempotencyStore) Close() error { return nil }
