package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrLoginRequired means the booking moved to LOGIN_REQUIRED; the caller
	// should send the user to sign in.
	ErrLoginRequired     = errors.New("login required")
	ErrInvalidTransition = errors.New("action not allowed in the current booking state")
	ErrRequestInFlight   = errors.New("another request for this booking is in progress")
	ErrCartItemNotFound  = errors.New("cart item not found")
)

// ValidationError rejects user input. The state it was aimed at is left
// unchanged.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var orderFieldMessages = map[string]string{
	"RentEndDate":  "rental must end after it starts",
	"DeliveryDate": "delivery must be on or before the rental start",
	"PickupDate":   "pickup must be on or after the rental end",
	"Quantity":     "quantity must be at least 1",
	"UserID":       "user is not signed in",
}

// fromStructErrors turns the first validator failure into a ValidationError.
func fromStructErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := orderFieldMessages[fe.Field()]
	if !ok {
		msg = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
