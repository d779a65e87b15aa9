package service

import (
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/utils"

	"github.com/google/uuid"
)

type PricingFormula string

const (
	// PricingTiered prices cart items exactly like the product page.
	PricingTiered PricingFormula = "tiered"
	// PricingFlat is quantity * unit price * days regardless of tier.
	PricingFlat PricingFormula = "flat"
)

const DefaultTaxRateBasisPoints = 800

type CartOptions struct {
	Formula            PricingFormula
	TaxRateBasisPoints int64
}

type CartSummary struct {
	Items              []domain.CartItem `json:"items"`
	Subtotal           domain.Cents      `json:"subtotal_cents"`
	Tax                domain.Cents      `json:"tax_cents"`
	GrandTotal         domain.Cents      `json:"grand_total_cents"`
	TaxRateBasisPoints int64             `json:"tax_rate_bp"`
}

// Cart holds items priced at the moment they were added. It is not safe for
// concurrent use.
type Cart struct {
	opts  CartOptions
	items []domain.CartItem
	newID func() string
	now   func() time.Time
}

func NewCart(opts CartOptions, items []domain.CartItem) *Cart {
	if opts.Formula == "" {
		opts.Formula = PricingTiered
	}
	if opts.TaxRateBasisPoints <= 0 {
		opts.TaxRateBasisPoints = DefaultTaxRateBasisPoints
	}
	return &Cart{
		opts:  opts,
		items: append([]domain.CartItem(nil), items...),
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
		now:   time.Now,
	}
}

// AddItem prices quantity units of product for the period and appends the
// result. The item total is fixed from here on.
func (c *Cart) AddItem(product domain.Product, quantity int, start, end time.Time, unit domain.RentalUnit) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, newValidationError("quantity", "quantity must be at least 1")
	}
	days, err := utils.RentalDays(start, end)
	if err != nil {
		return nil, newValidationError("dates", "%s", err.Error())
	}

	quote := utils.CalculateQuote(product.Price, unit, start, end, quantity)
	if !quote.Computable() {
		return nil, newValidationError("unit", "no price is available for %s", unit)
	}

	total := quote.Total
	if c.opts.Formula == PricingFlat {
		total = utils.FlatTotal(quote.UnitPrice, quantity, days)
	}

	item := domain.CartItem{
		ID:       c.newID(),
		Product:  product,
		Quantity: quantity,
		Dates: domain.RentalDates{
			StartDate: utils.CalendarDate(start),
			EndDate:   utils.CalendarDate(end),
			Days:      days,
		},
		Pricing: domain.CartPricing{Unit: quote.Unit, UnitPrice: quote.UnitPrice},
		Total:   total,
		AddedAt: c.now().UTC(),
	}
	c.items = append(c.items, item)
	return &item, nil
}

func (c *Cart) RemoveItem(id string) error {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrCartItemNotFound
}

func (c *Cart) Items() []domain.CartItem {
	return append([]domain.CartItem(nil), c.items...)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Subtotal() domain.Cents {
	var sum domain.Cents
	for _, it := range c.items {
		sum += it.Total
	}
	return sum
}

// Tax is the subtotal times the tax rate, rounded half up to a whole unit.
func (c *Cart) Tax() domain.Cents {
	return utils.ApplyRate(c.Subtotal(), c.opts.TaxRateBasisPoints)
}

// GrandTotal rounds subtotal * (1 + rate) as a whole, so it can differ from
// Subtotal()+Tax() by one unit.
func (c *Cart) GrandTotal() domain.Cents {
	return utils.ApplyRate(c.Subtotal(), 10000+c.opts.TaxRateBasisPoints)
}

func (c *Cart) Summary() CartSummary {
	items := c.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartSummary{
		Items:              items,
		Subtotal:           c.Subtotal(),
		Tax:                c.Tax(),
		GrandTotal:         c.GrandTotal(),
		TaxRateBasisPoints: c.opts.TaxRateBasisPoints,
	}
}
