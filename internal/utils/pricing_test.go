package utils

import (
	"testing"
	"time"

	"rentflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		d, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.January, d.Month())
		assert.Equal(t, 15, d.Day())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-02-30")
		assert.Error(t, err)
	})
}

func TestRentalDays(t *testing.T) {
	t.Run("Same day counts as one", func(t *testing.T) {
		days, err := RentalDays(date("2024-01-15"), date("2024-01-15"))
		require.NoError(t, err)
		assert.Equal(t, 1, days)
	})

	t.Run("Across a leap day", func(t *testing.T) {
		days, err := RentalDays(date("2024-02-28"), date("2024-03-01"))
		require.NoError(t, err)
		assert.Equal(t, 3, days)
	})

	t.Run("Clock time is ignored", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
		end := time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC)
		days, err := RentalDays(start, end)
		require.NoError(t, err)
		assert.Equal(t, 2, days)
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := RentalDays(date("2024-01-10"), date("2024-01-01"))
		assert.Error(t, err)
	})

	t.Run("Unset date", func(t *testing.T) {
		_, err := RentalDays(time.Time{}, date("2024-01-01"))
		assert.Error(t, err)
	})
}

func TestBillablePeriods(t *testing.T) {
	tests := []struct {
		unit     domain.RentalUnit
		days     int
		expected int64
	}{
		{domain.RentalUnitHour, 1, 8},
		{domain.RentalUnitHour, 3, 24},
		{domain.RentalUnitDay, 5, 5},
		{domain.RentalUnitWeek, 7, 1},
		{domain.RentalUnitWeek, 8, 2},
		{domain.RentalUnitWeek, 10, 2},
		{domain.RentalUnitMonth, 30, 1},
		{domain.RentalUnitMonth, 31, 2},
		{domain.RentalUnitYear, 1, 1},
		{domain.RentalUnitYear, 366, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			assert.Equal(t, tt.expected, BillablePeriods(tt.unit, tt.days))
		})
	}
}

func TestCalculateQuote(t *testing.T) {
	card := domain.RateCard{
		domain.RentalUnitHour:  1500,
		domain.RentalUnitDay:   10000,
		domain.RentalUnitWeek:  70000,
		domain.RentalUnitMonth: 250000,
	}

	t.Run("Single day rental", func(t *testing.T) {
		q := CalculateQuote(domain.RateCard{domain.RentalUnitDay: 100}, domain.RentalUnitDay, date("2024-01-01"), date("2024-01-01"), 1)
		assert.Equal(t, QuoteComputed, q.Status)
		assert.Equal(t, 1, q.Days)
		assert.Equal(t, domain.Cents(100), q.Amount())
	})

	t.Run("Partial week bills a full week", func(t *testing.T) {
		q := CalculateQuote(domain.RateCard{domain.RentalUnitWeek: 700}, domain.RentalUnitWeek, date("2024-01-01"), date("2024-01-10"), 1)
		assert.Equal(t, int64(2), q.Periods)
		assert.Equal(t, domain.Cents(1400), q.Amount())
	})

	t.Run("Hourly bills eight hours per day", func(t *testing.T) {
		q := CalculateQuote(card, domain.RentalUnitHour, date("2024-01-01"), date("2024-01-02"), 2)
		assert.Equal(t, domain.Cents(2*1500*2*8), q.Total)
	})

	t.Run("Monthly rounds up", func(t *testing.T) {
		q := CalculateQuote(card, domain.RentalUnitMonth, date("2024-01-01"), date("2024-02-15"), 1)
		assert.Equal(t, int64(2), q.Periods)
		assert.Equal(t, domain.Cents(500000), q.Total)
	})

	t.Run("Missing date is incomplete", func(t *testing.T) {
		assert.NotPanics(t, func() {
			q := CalculateQuote(card, domain.RentalUnitDay, time.Time{}, date("2024-01-05"), 1)
			assert.Equal(t, QuoteIncomplete, q.Status)
			assert.Equal(t, domain.Cents(0), q.Amount())
		})
	})

	t.Run("End before start is incomplete", func(t *testing.T) {
		q := CalculateQuote(card, domain.RentalUnitDay, date("2024-01-05"), date("2024-01-01"), 1)
		assert.Equal(t, QuoteIncomplete, q.Status)
		assert.Zero(t, q.Amount())
	})

	t.Run("Zero quantity is incomplete", func(t *testing.T) {
		q := CalculateQuote(card, domain.RentalUnitDay, date("2024-01-01"), date("2024-01-02"), 0)
		assert.Equal(t, QuoteIncomplete, q.Status)
	})

	t.Run("Missing unit falls back to daily", func(t *testing.T) {
		q := CalculateQuote(card, domain.RentalUnitYear, date("2024-01-01"), date("2024-01-03"), 2)
		assert.Equal(t, QuoteComputed, q.Status)
		assert.Equal(t, domain.RentalUnitDay, q.Unit)
		assert.Equal(t, domain.Cents(2*10000*3), q.Total)
	})

	t.Run("No daily price is unavailable", func(t *testing.T) {
		q := CalculateQuote(domain.RateCard{domain.RentalUnitWeek: 700}, domain.RentalUnitMonth, date("2024-01-01"), date("2024-01-03"), 1)
		assert.Equal(t, QuoteUnavailable, q.Status)
		assert.Zero(t, q.Amount())
	})

	t.Run("Zero price counts as missing", func(t *testing.T) {
		q := CalculateQuote(domain.RateCard{domain.RentalUnitWeek: 0, domain.RentalUnitDay: 50}, domain.RentalUnitWeek, date("2024-01-01"), date("2024-01-01"), 1)
		assert.Equal(t, domain.RentalUnitDay, q.Unit)
		assert.Equal(t, domain.Cents(50), q.Total)
	})
}

func TestCalculateTotalMonotonic(t *testing.T) {
	card := domain.RateCard{
		domain.RentalUnitHour:  300,
		domain.RentalUnitDay:   2000,
		domain.RentalUnitWeek:  9000,
		domain.RentalUnitMonth: 30000,
		domain.RentalUnitYear:  300000,
	}
	start := date("2024-01-01")

	for _, unit := range domain.RentalUnits {
		t.Run(string(unit), func(t *testing.T) {
			var prevByDays domain.Cents
			for days := 1; days <= 400; days++ {
				end := start.AddDate(0, 0, days-1)
				total := CalculateTotal(card, unit, start, end, 1)
				assert.GreaterOrEqual(t, int64(total), int64(prevByDays), "days=%d", days)
				prevByDays = total

				if days%50 == 0 {
					var prevByQty domain.Cents
					for qty := 1; qty <= 5; qty++ {
						q := CalculateTotal(card, unit, start, end, qty)
						assert.GreaterOrEqual(t, int64(q), int64(prevByQty))
						prevByQty = q
					}
				}
			}
		})
	}
}

func TestFlatTotal(t *testing.T) {
	assert.Equal(t, domain.Cents(7000*3*10), FlatTotal(7000, 3, 10))
}

func TestApplyRate(t *testing.T) {
	tests := []struct {
		name     string
		amount   domain.Cents
		bp       int64
		expected domain.Cents
	}{
		{"Tax on 150", 15000, 800, 1200},
		{"Total on 150", 15000, 10800, 16200},
		{"Rounds half up", 1875, 800, 200},        // 1.50 -> 2
		{"Rounds down below half", 1800, 800, 100}, // 1.44 -> 1
		{"Zero", 0, 800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyRate(tt.amount, tt.bp))
		})
	}
}
