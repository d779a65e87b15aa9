package service

import (
	"fmt"
	"testing"

	"rentflow/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Totals(t *testing.T) {
	product := domain.Product{ID: "p-1", Price: domain.RateCard{domain.RentalUnitDay: 5000}}
	cart := NewCart(CartOptions{}, nil)

	_, err := cart.AddItem(product, 2, day("2024-01-01"), day("2024-01-01"), domain.RentalUnitDay)
	require.NoError(t, err)
	_, err = cart.AddItem(product, 1, day("2024-01-01"), day("2024-01-01"), domain.RentalUnitDay)
	require.NoError(t, err)

	assert.Equal(t, domain.Cents(15000), cart.Subtotal())
	assert.Equal(t, domain.Cents(1200), cart.Tax())
	assert.Equal(t, domain.Cents(16200), cart.GrandTotal())

	summary := cart.Summary()
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, int64(800), summary.TaxRateBasisPoints)
}

func TestCart_EmptySummary(t *testing.T) {
	summary := NewCart(CartOptions{}, nil).Summary()
	assert.NotNil(t, summary.Items)
	assert.Zero(t, summary.Subtotal)
	assert.Zero(t, summary.GrandTotal)
}

func TestCart_AddItem(t *testing.T) {
	product := domain.Product{ID: "p-1", Price: domain.RateCard{
		domain.RentalUnitDay:  1000,
		domain.RentalUnitWeek: 5000,
	}}

	t.Run("Tiered pricing matches product page", func(t *testing.T) {
		cart := NewCart(CartOptions{Formula: PricingTiered}, nil)
		item, err := cart.AddItem(product, 1, day("2024-01-01"), day("2024-01-10"), domain.RentalUnitWeek)
		require.NoError(t, err)
		assert.Equal(t, 10, item.Dates.Days)
		assert.Equal(t, domain.RentalUnitWeek, item.Pricing.Unit)
		assert.Equal(t, domain.Cents(10000), item.Total)

		_, err = uuid.Parse(item.ID)
		assert.NoError(t, err)
	})

	t.Run("Flat pricing", func(t *testing.T) {
		cart := NewCart(CartOptions{Formula: PricingFlat}, nil)
		item, err := cart.AddItem(product, 1, day("2024-01-01"), day("2024-01-10"), domain.RentalUnitWeek)
		require.NoError(t, err)
		assert.Equal(t, domain.Cents(5000*10), item.Total)
	})

	t.Run("Unpriced tier falls back to daily", func(t *testing.T) {
		cart := NewCart(CartOptions{}, nil)
		item, err := cart.AddItem(product, 2, day("2024-01-01"), day("2024-01-02"), domain.RentalUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalUnitDay, item.Pricing.Unit)
		assert.Equal(t, domain.Cents(4000), item.Total)
	})

	t.Run("Rejects bad input", func(t *testing.T) {
		cart := NewCart(CartOptions{}, nil)
		_, err := cart.AddItem(product, 0, day("2024-01-01"), day("2024-01-02"), domain.RentalUnitDay)
		assert.Error(t, err)
		_, err = cart.AddItem(product, 1, day("2024-01-03"), day("2024-01-02"), domain.RentalUnitDay)
		assert.Error(t, err)
		_, err = cart.AddItem(domain.Product{}, 1, day("2024-01-01"), day("2024-01-02"), domain.RentalUnitDay)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Zero(t, cart.Len())
	})

	t.Run("Total is fixed at add time", func(t *testing.T) {
		p := product
		p.Price = domain.RateCard{domain.RentalUnitDay: 1000}
		cart := NewCart(CartOptions{}, nil)
		_, err := cart.AddItem(p, 1, day("2024-01-01"), day("2024-01-01"), domain.RentalUnitDay)
		require.NoError(t, err)
		p.Price[domain.RentalUnitDay] = 9999
		assert.Equal(t, domain.Cents(1000), cart.Subtotal())
	})
}

func TestCart_RemoveItem(t *testing.T) {
	product := domain.Product{ID: "p-1", Price: domain.RateCard{domain.RentalUnitDay: 1000}}
	cart := NewCart(CartOptions{}, nil)
	n := 0
	cart.newID = func() string { n++; return fmt.Sprintf("item-%d", n) }

	_, _ = cart.AddItem(product, 1, day("2024-01-01"), day("2024-01-01"), domain.RentalUnitDay)
	_, _ = cart.AddItem(product, 2, day("2024-01-01"), day("2024-01-01"), domain.RentalUnitDay)

	require.NoError(t, cart.RemoveItem("item-1"))
	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, "item-2", cart.Items()[0].ID)
	assert.ErrorIs(t, cart.RemoveItem("item-1"), ErrCartItemNotFound)
}

func TestCart_RestoredItemsAreCopied(t *testing.T) {
	items := []domain.CartItem{{ID: "a", Total: 100}, {ID: "b", Total: 50}}
	cart := NewCart(CartOptions{TaxRateBasisPoints: 1000}, items)
	require.NoError(t, cart.RemoveItem("a"))
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, domain.Cents(50), cart.Subtotal())
}
