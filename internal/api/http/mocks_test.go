package http

import (
	"context"

	"rentflow/internal/domain"
	"rentflow/internal/service"
	"rentflow/internal/utils"

	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) view(args mock.Arguments) (*service.SessionView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) StartSession(ctx context.Context, productID, token string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, productID, token))
}

func (m *MockBookingService) GetSession(ctx context.Context, sessionID string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockBookingService) DeleteSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockBookingService) SetToken(ctx context.Context, sessionID, token string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID, token))
}

func (m *MockBookingService) UpdateSelection(ctx context.Context, sessionID string, update service.SelectionUpdate) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID, update))
}

func (m *MockBookingService) Quote(ctx context.Context, sessionID string) (*utils.Quote, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.Quote), args.Error(1)
}

func (m *MockBookingService) RentNow(ctx context.Context, sessionID string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockBookingService) AddToCart(ctx context.Context, sessionID string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockBookingService) SaveAndContinue(ctx context.Context, sessionID string, req service.AddressRequest) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID, req))
}

func (m *MockBookingService) ConfirmOrder(ctx context.Context, sessionID string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockBookingService) Cancel(ctx context.Context, sessionID string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockBookingService) Reset(ctx context.Context, sessionID string) (*service.SessionView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockBookingService) Cart(ctx context.Context, sessionID string) (*service.CartSummary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartSummary), args.Error(1)
}

func (m *MockBookingService) RemoveCartItem(ctx context.Context, sessionID, itemID string) (*service.CartSummary, error) {
	args := m.Called(ctx, sessionID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartSummary), args.Error(1)
}

func (m *MockBookingService) Invoice(ctx context.Context, sessionID string) (*domain.Invoice, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
