package service

import (
	"context"
	"time"

	"rentflow/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, token string, order *domain.CreateOrder) (*domain.Order, error) {
	args := m.Called(ctx, token, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, token, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, token, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, token, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockProfileRepo
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetProfile(ctx context.Context, token string) (*domain.UserProfile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

// MockDraftRepo
type MockDraftRepo struct {
	mock.Mock
}

func (m *MockDraftRepo) Record(ctx context.Context, draft *domain.DraftRecord) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftRepo) UpdateStatus(ctx context.Context, orderID string, status domain.DraftStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockDraftRepo) ListSweepable(ctx context.Context, openBefore time.Time, limit int) ([]domain.DraftRecord, error) {
	args := m.Called(ctx, openBefore, limit)
	return args.Get(0).([]domain.DraftRecord), args.Error(1)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendInvoice(ctx context.Context, toEmail, toName string, inv *domain.Invoice) error {
	args := m.Called(ctx, toEmail, toName, inv)
	return args.Error(0)
}

// MockAuthSession keeps the token like the real session; only IsValid is
// scripted.
type MockAuthSession struct {
	mock.Mock
	token   string
	profile *domain.UserProfile
}

func (m *MockAuthSession) GetToken() string { return m.token }

func (m *MockAuthSession) Profile() *domain.UserProfile { return m.profile }

func (m *MockAuthSession) Clear() {
	m.token = ""
	m.profile = nil
}

func (m *MockAuthSession) IsValid(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}
