package repository

import (
	"context"
	"errors"
	"time"

	"rentflow/internal/domain"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("booking session not found")
	ErrDraftNotFound   = errors.New("draft not found")
)

// Marketplace resources. The token is the end user's bearer token; an empty
// token sends an anonymous request.

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type OrderRepository interface {
	GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error)
	Create(ctx context.Context, token string, order *domain.CreateOrder) (*domain.Order, error)
	UpdateStatus(ctx context.Context, token, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, token string) (*domain.UserProfile, error)
}

// Local state.

type SessionRepository interface {
	Create(ctx context.Context, session *domain.BookingSession) error
	Get(ctx context.Context, id string) (*domain.BookingSession, error)
	Save(ctx context.Context, session *domain.BookingSession) error
	Delete(ctx context.Context, id string) error
}

type DraftRepository interface {
	Record(ctx context.Context, draft *domain.DraftRecord) error
	UpdateStatus(ctx context.Context, orderID string, status domain.DraftStatus) error
	// ListSweepable returns ORPHANED drafts and OPEN drafts created before
	// openBefore, oldest first.
	ListSweepable(ctx context.Context, openBefore time.Time, limit int) ([]domain.DraftRecord, error)
}
