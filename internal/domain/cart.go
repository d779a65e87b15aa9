package domain

import "time"

type RentalDates struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`
}

type CartPricing struct {
	Unit      RentalUnit `json:"unit"`
	UnitPrice Cents      `json:"unit_price_cents"`
}

// CartItem keeps the total computed when the item was added; it is not
// repriced afterwards.
type CartItem struct {
	ID       string      `json:"id"`
	Product  Product     `json:"product"`
	Quantity int         `json:"quantity"`
	Dates    RentalDates `json:"dates"`
	Pricing  CartPricing `json:"pricing"`
	Total    Cents       `json:"total_cents"`
	AddedAt  time.Time   `json:"added_at"`
}
