package service

import (
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/utils"
)

var (
	DefaultStartTime = domain.TimeOfDay{Hour: 9}
	DefaultEndTime   = domain.TimeOfDay{Hour: 17}
)

// RentalSelection is the in-progress choice of unit, dates, times and
// quantity for one product. It is not safe for concurrent use.
type RentalSelection struct {
	product *domain.Product
	now     func() time.Time
	loc     *time.Location
	state   domain.SelectionState
}

// NewRentalSelection starts a selection on daily pricing, or on the first
// tier the product offers when it has no daily price. Calendar dates,
// including "today", are read in loc.
func NewRentalSelection(product *domain.Product, now func() time.Time, loc *time.Location) *RentalSelection {
	unit := domain.RentalUnitDay
	if _, ok := product.Price.Price(unit); !ok {
		if units := product.Price.Units(); len(units) > 0 {
			unit = units[0]
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RentalSelection{
		product: product,
		now:     now,
		loc:     loc,
		state: domain.SelectionState{
			ProductID: product.ID,
			Unit:      unit,
			StartTime: DefaultStartTime,
			EndTime:   DefaultEndTime,
			Quantity:  1,
		},
	}
}

// RestoreRentalSelection rebuilds a selection from its persisted state,
// re-clamping the quantity against the product snapshot.
func RestoreRentalSelection(product *domain.Product, state domain.SelectionState, now func() time.Time, loc *time.Location) *RentalSelection {
	if loc == nil {
		loc = time.UTC
	}
	s := &RentalSelection{product: product, now: now, loc: loc, state: state}
	s.state.ProductID = product.ID
	s.SetQuantity(state.Quantity)
	return s
}

func (s *RentalSelection) Product() *domain.Product {
	return s.product
}

func (s *RentalSelection) State() domain.SelectionState {
	return s.state
}

// SetUnit switches the pricing tier. Tiers the product does not price are
// rejected.
func (s *RentalSelection) SetUnit(unit domain.RentalUnit) error {
	if !unit.Valid() {
		return newValidationError("unit", "unknown rental unit %q", unit)
	}
	if _, ok := s.product.Price.Price(unit); !ok {
		return newValidationError("unit", "%s is not offered for this product", unit)
	}
	s.state.Unit = unit
	return nil
}

// SetDates sets the rental period. A zero date leaves that end unset. The
// start may not be before today and the end may not be before the start;
// a rejected call changes nothing.
func (s *RentalSelection) SetDates(start, end time.Time) error {
	today := utils.CalendarDate(s.now().In(s.loc))
	if !start.IsZero() {
		start = utils.CalendarDate(start)
		if start.Before(today) {
			return newValidationError("start_date", "start date cannot be in the past")
		}
	}
	if !end.IsZero() {
		end = utils.CalendarDate(end)
		if !start.IsZero() && end.Before(start) {
			return newValidationError("end_date", "end date cannot be before the start date")
		}
		if start.IsZero() && end.Before(today) {
			return newValidationError("end_date", "end date cannot be in the past")
		}
	}
	s.state.StartDate = start
	s.state.EndDate = end
	return nil
}

func (s *RentalSelection) ClearDates() {
	s.state.StartDate = time.Time{}
	s.state.EndDate = time.Time{}
}

func (s *RentalSelection) SetTimes(start, end domain.TimeOfDay) {
	s.state.StartTime = start
	s.state.EndTime = end
}

// SetQuantity clamps n into [1, available quantity] and returns the value
// applied.
func (s *RentalSelection) SetQuantity(n int) int {
	maxQty := s.product.AvailableQuantity
	if maxQty < 1 {
		maxQty = 1
	}
	switch {
	case n < 1:
		n = 1
	case n > maxQty:
		n = maxQty
	}
	s.state.Quantity = n
	return n
}

func (s *RentalSelection) HasValidDates() bool {
	_, err := utils.RentalDays(s.state.StartDate, s.state.EndDate)
	return err == nil
}

// DurationDays is the inclusive day count, 0 while the dates are incomplete.
func (s *RentalSelection) DurationDays() int {
	days, err := utils.RentalDays(s.state.StartDate, s.state.EndDate)
	if err != nil {
		return 0
	}
	return days
}

func (s *RentalSelection) Quote() utils.Quote {
	return utils.CalculateQuote(s.product.Price, s.state.Unit, s.state.StartDate, s.state.EndDate, s.state.Quantity)
}

func (s *RentalSelection) CurrentTotal() domain.Cents {
	return s.Quote().Amount()
}

// RentStart and RentEnd place the rental period on the wall clock in loc.
func (s *RentalSelection) RentStart(loc *time.Location) time.Time {
	return s.state.StartTime.On(s.state.StartDate, loc)
}

func (s *RentalSelection) RentEnd(loc *time.Location) time.Time {
	return s.state.EndTime.On(s.state.EndDate, loc)
}
