package domain

import (
	"fmt"
	"strconv"
	"time"
)

type BookingState string

const (
	BookingStateIdle           BookingState = "IDLE"
	BookingStateSelectingDates BookingState = "SELECTING_DATES"
	BookingStateAddressCapture BookingState = "ADDRESS_CAPTURE"
	BookingStateOrderDrafted   BookingState = "ORDER_DRAFTED"
	BookingStateOrderConfirmed BookingState = "ORDER_CONFIRMED"
	BookingStateInvoiceShown   BookingState = "INVOICE_SHOWN"
	BookingStateLoginRequired  BookingState = "LOGIN_REQUIRED"
	BookingStateCancelled      BookingState = "CANCELLED"
)

func (s BookingState) Terminal() bool {
	switch s {
	case BookingStateInvoiceShown, BookingStateLoginRequired, BookingStateCancelled:
		return true
	}
	return false
}

// TimeOfDay is a wall-clock time in 24h HH:MM form.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, herr := strconv.Atoi(s[:2])
	minute, merr := strconv.Atoi(s[3:])
	if herr != nil || merr != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q out of range", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On combines a calendar date with the time of day in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = date.Location()
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SelectionState is the persisted form of a rental selection.
type SelectionState struct {
	ProductID string     `json:"product_id"`
	Unit      RentalUnit `json:"unit"`
	StartDate time.Time  `json:"start_date,omitzero"`
	EndDate   time.Time  `json:"end_date,omitzero"`
	StartTime TimeOfDay  `json:"start_time"`
	EndTime   TimeOfDay  `json:"end_time"`
	Quantity  int        `json:"quantity"`
}

// WorkflowSnapshot is the persisted form of a booking workflow.
type WorkflowSnapshot struct {
	State           BookingState `json:"state"`
	UserID          string       `json:"user_id,omitempty"`
	UserEmail       string       `json:"user_email,omitempty"`
	PickupAddress   string       `json:"pickup_address,omitempty"`
	DeliveryAddress string       `json:"delivery_address,omitempty"`
	PickupDate      time.Time    `json:"pickup_date,omitzero"`
	DeliveryDate    time.Time    `json:"delivery_date,omitzero"`
	Order           *Order       `json:"order,omitempty"`
	Invoice         *Invoice     `json:"invoice,omitempty"`
	LastError       string       `json:"last_error,omitempty"`
}

type Invoice struct {
	OrderID          string     `json:"order_id"`
	ProductID        string     `json:"product_id"`
	ProductName      string     `json:"product_name"`
	Description      string     `json:"description,omitempty"`
	Unit             RentalUnit `json:"unit"`
	UnitPrice        Cents      `json:"unit_price_cents"`
	Quantity         int        `json:"quantity"`
	Days             int        `json:"days"`
	Periods          int64      `json:"billable_periods"`
	RentStart        time.Time  `json:"rent_start"`
	RentEnd          time.Time  `json:"rent_end"`
	PickupAddress    string     `json:"pickup_address"`
	DeliveryAddress  string     `json:"delivery_address"`
	PickupLocation   Address    `json:"pickup_location"`
	DeliveryLocation Address    `json:"delivery_location"`
	BaseTotal        Cents      `json:"base_total_cents"`
	SecurityDeposit  Cents      `json:"security_deposit_cents"`
	LateReturnPerDay Cents      `json:"late_return_per_day_cents"`
	DeliveryFee      Cents      `json:"delivery_fee_cents"`
	GrandTotal       Cents      `json:"grand_total_cents"`
	UpstreamTotal    *Cents     `json:"upstream_total_cents,omitempty"`
	IssuedAt         time.Time  `json:"issued_at"`
}

// BookingSession is everything one browser session accumulates while
// booking a product.
type BookingSession struct {
	ID        string           `json:"id"`
	Token     string           `json:"token,omitempty"`
	Product   Product          `json:"product"`
	Selection SelectionState   `json:"selection"`
	Cart      []CartItem       `json:"cart"`
	Workflow  WorkflowSnapshot `json:"workflow"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
