package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type RentalUnit string

const (
	RentalUnitHour  RentalUnit = "PER_HOUR"
	RentalUnitDay   RentalUnit = "PER_DAY"
	RentalUnitWeek  RentalUnit = "PER_WEEK"
	RentalUnitMonth RentalUnit = "PER_MONTH"
	RentalUnitYear  RentalUnit = "PER_YEAR"
)

// RentalUnits lists every billing granularity in display order.
var RentalUnits = []RentalUnit{
	RentalUnitHour,
	RentalUnitDay,
	RentalUnitWeek,
	RentalUnitMonth,
	RentalUnitYear,
}

var rentalUnitAliases = map[string]RentalUnit{
	"hourly":  RentalUnitHour,
	"daily":   RentalUnitDay,
	"weekly":  RentalUnitWeek,
	"monthly": RentalUnitMonth,
	"yearly":  RentalUnitYear,
}

// ParseRentalUnit accepts the wire names (PER_DAY) and the storefront
// aliases (daily).
func ParseRentalUnit(s string) (RentalUnit, error) {
	v := strings.TrimSpace(s)
	if u := RentalUnit(strings.ToUpper(v)); u.Valid() {
		return u, nil
	}
	if u, ok := rentalUnitAliases[strings.ToLower(v)]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown rental unit %q", s)
}

func (u RentalUnit) Valid() bool {
	switch u {
	case RentalUnitHour, RentalUnitDay, RentalUnitWeek, RentalUnitMonth, RentalUnitYear:
		return true
	}
	return false
}

// Cents is an amount of money in minor currency units.
type Cents int64

// CentsFromDecimal converts a major-unit amount (12.5) into cents, rounding
// half up to the nearest cent.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// RateCard is a product's price list. A unit that is missing or priced at
// zero is not available for booking.
type RateCard map[RentalUnit]Cents

func (r RateCard) Price(u RentalUnit) (Cents, bool) {
	p, ok := r[u]
	return p, ok && p > 0
}

// Units returns the bookable units in display order.
func (r RateCard) Units() []RentalUnit {
	var units []RentalUnit
	for _, u := range RentalUnits {
		if _, ok := r.Price(u); ok {
			units = append(units, u)
		}
	}
	return units
}

type Product struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	CategoryID        string       `json:"category_id"`
	OwnerID           string       `json:"owner_id"`
	RentalUnits       []RentalUnit `json:"rental_units"`
	Price             RateCard     `json:"price"`
	SecurityDeposit   Cents        `json:"security_deposit_cents"`
	DefectCharges     Cents        `json:"defect_charges_cents"`
	LateReturnPerDay  Cents        `json:"late_return_per_day_cents"`
	CareInstruction   string       `json:"care_instruction,omitempty"`
	TotalQuantity     int          `json:"total_quantity"`
	AvailableQuantity int          `json:"available_quantity"`
	ReservedQuantity  int          `json:"reserved_quantity"`
	RentedQuantity    int          `json:"rented_quantity"`
	ImageIDs          []string     `json:"images_id"`
}
