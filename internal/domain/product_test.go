package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCentsFromDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"100", 10000},
		{"100.5", 10050},
		{"1.005", 101},
		{"0.285", 29},
		{"10.075", 1008},
		{"0.004", 0},
		{"5000.00", 500000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CentsFromDecimal(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestCents_String(t *testing.T) {
	assert.Equal(t, "12.05", Cents(1205).String())
	assert.Equal(t, "-0.50", Cents(-50).String())
}

func TestParseRentalUnit(t *testing.T) {
	u, err := ParseRentalUnit("weekly")
	assert.NoError(t, err)
	assert.Equal(t, RentalUnitWeek, u)

	u, err = ParseRentalUnit(" per_day ")
	assert.NoError(t, err)
	assert.Equal(t, RentalUnitDay, u)

	_, err = ParseRentalUnit("PER_FORTNIGHT")
	assert.Error(t, err)
}
