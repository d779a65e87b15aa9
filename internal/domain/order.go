package domain

import "time"

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusPicked    OrderStatus = "PICKED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// orderTransitions mirrors the transitions the marketplace accepts on
// PATCH /orders/{id}/status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {OrderStatusPicked},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusNotApplicable PaymentStatus = "NOT APPLICABLE"
	PaymentStatusPartial       PaymentStatus = "PARTIAL"
	PaymentStatusFull          PaymentStatus = "FULL"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
)

// Amount is the marketplace's price breakdown for an order.
type Amount struct {
	ItemTotal      Cents `json:"item_total_cents"`
	PlatformCharge Cents `json:"platform_charge_cents"`
	Subtotal       Cents `json:"subtotal_cents"`
	Tax            Cents `json:"tax_cents"`
	Total          Cents `json:"total_cents"`
}

type Order struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	ProductID        string        `json:"product_id"`
	Quantity         int           `json:"quantity"`
	Rate             RentalUnit    `json:"rate,omitempty"`
	RentStartDate    time.Time     `json:"rent_start_date"`
	RentEndDate      time.Time     `json:"rent_end_date"`
	DeliveryLocation Address       `json:"delivery_location"`
	PickupLocation   Address       `json:"pickup_location"`
	DeliveryDate     time.Time     `json:"delivery_date"`
	PickupDate       time.Time     `json:"pickup_date"`
	Amount           *Amount       `json:"amount,omitempty"`
	AmountPaid       Cents         `json:"amount_paid_cents"`
	AmountDue        Cents         `json:"amount_due_cents"`
	OrderStatus      OrderStatus   `json:"order_status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CreateOrder is the payload submitted when a booking is saved as a draft.
// Delivery happens no later than the rental start and pickup no earlier than
// its end.
type CreateOrder struct {
	ProductID        string        `json:"product_id" validate:"required"`
	UserID           string        `json:"user_id" validate:"required"`
	Quantity         int           `json:"quantity" validate:"gte=1"`
	Rate             RentalUnit    `json:"rate" validate:"required,oneof=PER_HOUR PER_DAY PER_WEEK PER_MONTH PER_YEAR"`
	RentStartDate    time.Time     `json:"rent_start_date" validate:"required"`
	RentEndDate      time.Time     `json:"rent_end_date" validate:"required,gtfield=RentStartDate"`
	DeliveryLocation Address       `json:"delivery_location"`
	PickupLocation   Address       `json:"pickup_location"`
	DeliveryDate     time.Time     `json:"delivery_date" validate:"required,ltefield=RentStartDate"`
	PickupDate       time.Time     `json:"pickup_date" validate:"required,gtefield=RentEndDate"`
	OrderStatus      OrderStatus   `json:"order_status" validate:"eq=DRAFT"`
	PaymentStatus    PaymentStatus `json:"payment_status" validate:"required"`
}

// UserProfile is the subset of GET /user/profile the booking flow needs.
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email_id"`
	MobileNo string `json:"mobile_no"`
	UserType string `json:"user_type"`
}
