package utils

import (
	"fmt"
	"time"

	"rentflow/internal/domain"
)

const (
	// BillableHoursPerDay is the number of hours charged per rental day on
	// hourly pricing.
	BillableHoursPerDay = 8
	DaysPerWeek         = 7
	DaysPerMonth        = 30
	DaysPerYear         = 365
)

// QuoteStatus distinguishes a computed total from one that cannot be
// computed yet.
type QuoteStatus string

const (
	QuoteComputed    QuoteStatus = "COMPUTED"
	QuoteIncomplete  QuoteStatus = "INCOMPLETE"
	QuoteUnavailable QuoteStatus = "UNAVAILABLE"
)

// Quote is the result of pricing a rental. Unit is the tier that was
// actually priced, which differs from the requested tier after a fallback
// to daily pricing.
type Quote struct {
	Status    QuoteStatus       `json:"status"`
	Unit      domain.RentalUnit `json:"unit,omitempty"`
	UnitPrice domain.Cents      `json:"unit_price_cents"`
	Days      int               `json:"days"`
	Periods   int64             `json:"billable_periods"`
	Quantity  int               `json:"quantity"`
	Total     domain.Cents      `json:"total_cents"`
}

func (q Quote) Computable() bool {
	return q.Status == QuoteComputed
}

// Amount is the total, or zero when the quote is not computable.
func (q Quote) Amount() domain.Cents {
	if !q.Computable() {
		return 0
	}
	return q.Total
}

// ParseDate converts a yyyy-mm-dd formatted string into a calendar date in UTC
func ParseDate(dateStr string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}
	return d, nil
}

// CalendarDate strips the clock from t, keeping the calendar date t shows in
// its own location.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RentalDays counts calendar days with both ends included, so a same-day
// rental is one day.
func RentalDays(startDate, endDate time.Time) (int, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return 0, fmt.Errorf("rental dates are not set")
	}
	start := CalendarDate(startDate)
	end := CalendarDate(endDate)
	if end.Before(start) {
		return 0, fmt.Errorf("end date must be >= start date")
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// BillablePeriods converts a rental length in days into the number of
// periods charged for unit. Partial weeks, months and years bill in full.
func BillablePeriods(unit domain.RentalUnit, days int) int64 {
	d := int64(days)
	switch unit {
	case domain.RentalUnitHour:
		return d * BillableHoursPerDay
	case domain.RentalUnitWeek:
		return ceilDiv(d, DaysPerWeek)
	case domain.RentalUnitMonth:
		return ceilDiv(d, DaysPerMonth)
	case domain.RentalUnitYear:
		return ceilDiv(d, DaysPerYear)
	default:
		return d
	}
}

// CalculateQuote prices a rental of quantity items from startDate to
// endDate on the requested tier. It never fails: missing dates give an
// INCOMPLETE quote and a card without the tier or a daily price gives an
// UNAVAILABLE one.
func CalculateQuote(card domain.RateCard, unit domain.RentalUnit, startDate, endDate time.Time, quantity int) Quote {
	q := Quote{Status: QuoteIncomplete, Quantity: quantity}

	days, err := RentalDays(startDate, endDate)
	if err != nil || quantity < 1 {
		return q
	}
	q.Days = days

	price, ok := card.Price(unit)
	if !ok {
		// Fallback to daily pricing
		unit = domain.RentalUnitDay
		price, ok = card.Price(unit)
		if !ok {
			q.Status = QuoteUnavailable
			return q
		}
	}

	q.Status = QuoteComputed
	q.Unit = unit
	q.UnitPrice = price
	q.Periods = BillablePeriods(unit, days)
	q.Total = domain.Cents(int64(quantity)*q.Periods) * price
	return q
}

// CalculateTotal is CalculateQuote reduced to an amount, zero when the
// quote is not computable.
func CalculateTotal(card domain.RateCard, unit domain.RentalUnit, startDate, endDate time.Time, quantity int) domain.Cents {
	return CalculateQuote(card, unit, startDate, endDate, quantity).Amount()
}

// FlatTotal is the untiered quantity * unit price * days formula.
func FlatTotal(unitPrice domain.Cents, quantity, days int) domain.Cents {
	return unitPrice * domain.Cents(int64(quantity)*int64(days))
}

// ApplyRate multiplies amount by basisPoints/10000 and rounds half up to a
// whole currency unit, returning cents.
func ApplyRate(amount domain.Cents, basisPoints int64) domain.Cents {
	const perUnit = 100 * 10000
	scaled := int64(amount) * basisPoints
	if scaled < 0 {
		return -domain.Cents((-scaled+perUnit/2)/perUnit) * 100
	}
	return domain.Cents((scaled+perUnit/2)/perUnit) * 100
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
