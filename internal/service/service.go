package service

import (
	"context"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/utils"
)

// AuthSession is the user's sign-in state as seen by the booking flow.
type AuthSession interface {
	GetToken() string
	// IsValid asks the marketplace whether the token is still good. It
	// clears the token when the answer is no.
	IsValid(ctx context.Context) (bool, error)
	Clear()
	// Profile is the profile fetched by the last successful IsValid.
	Profile() *domain.UserProfile
}

type InvoiceMailer interface {
	SendInvoice(ctx context.Context, toEmail, toName string, invoice *domain.Invoice) error
}

type BookingService interface {
	StartSession(ctx context.Context, productID, token string) (*SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*SessionView, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SetToken(ctx context.Context, sessionID, token string) (*SessionView, error)

	UpdateSelection(ctx context.Context, sessionID string, update SelectionUpdate) (*SessionView, error)
	Quote(ctx context.Context, sessionID string) (*utils.Quote, error)

	RentNow(ctx context.Context, sessionID string) (*SessionView, error)
	AddToCart(ctx context.Context, sessionID string) (*SessionView, error)
	SaveAndContinue(ctx context.Context, sessionID string, req AddressRequest) (*SessionView, error)
	ConfirmOrder(ctx context.Context, sessionID string) (*SessionView, error)
	Cancel(ctx context.Context, sessionID string) (*SessionView, error)
	Reset(ctx context.Context, sessionID string) (*SessionView, error)

	Cart(ctx context.Context, sessionID string) (*CartSummary, error)
	RemoveCartItem(ctx context.Context, sessionID, itemID string) (*CartSummary, error)
	Invoice(ctx context.Context, sessionID string) (*domain.Invoice, error)
}

// SelectionUpdate carries the fields of a selection change; nil fields are
// left as they are. Dates are yyyy-mm-dd and an empty string clears one.
type SelectionUpdate struct {
	Unit      *string `json:"unit,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`
}

// AddressRequest is the address step of a booking. Delivery and pickup
// dates default to the rental start and end.
type AddressRequest struct {
	PickupAddress   string `json:"pickup_address" validate:"required"`
	DeliveryAddress string `json:"delivery_address" validate:"required"`
	DeliveryDate    string `json:"delivery_date,omitempty"`
	PickupDate      string `json:"pickup_date,omitempty"`
}

// SessionView is what a client sees of a booking session.
type SessionView struct {
	ID        string                  `json:"id"`
	Product   domain.Product          `json:"product"`
	Selection domain.SelectionState   `json:"selection"`
	Quote     utils.Quote             `json:"quote"`
	Workflow  domain.WorkflowSnapshot `json:"workflow"`
	Cart      CartSummary             `json:"cart"`
	SignedIn  bool                    `json:"signed_in"`
	UpdatedAt time.Time               `json:"updated_at"`
}
