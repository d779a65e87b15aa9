package rest

import (
	"encoding/json"
	"testing"

	"rentflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Cents
	}{
		{"Number rounds half up", `1.005`, 101},
		{"String rounds half up", `"0.285"`, 29},
		{"Number with three decimals", `10.075`, 1008},
		{"Decimal string", `"5000.00"`, 500000},
		{"Null", `null`, 0},
		{"Empty string", `""`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m money
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.want, m.cents())
		})
	}

	t.Run("Garbage", func(t *testing.T) {
		var m money
		assert.Error(t, json.Unmarshal([]byte(`"12,50"`), &m))
	})
}

func TestAmountDTO_Decode(t *testing.T) {
	var dto orderDTO
	require.NoError(t, json.Unmarshal([]byte(`{"id": "o-1", "amount": {"item_total": "0.285", "total": 1.005}}`), &dto))
	order := dto.toDomain()
	require.NotNil(t, order.Amount)
	assert.Equal(t, domain.Cents(29), order.Amount.ItemTotal)
	assert.Equal(t, domain.Cents(101), order.Amount.Total)
}
