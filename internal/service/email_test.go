package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice() *domain.Invoice {
	return &domain.Invoice{
		OrderID:          "o-1",
		ProductName:      "Canon EOS R5",
		Unit:             domain.RentalUnitDay,
		UnitPrice:        10000,
		Quantity:         1,
		Days:             3,
		Periods:          3,
		RentStart:        time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		RentEnd:          time.Date(2024, 1, 4, 17, 0, 0, 0, time.UTC),
		BaseTotal:        30000,
		SecurityDeposit:  500000,
		LateReturnPerDay: 2000,
		GrandTotal:       530000,
	}
}

func TestSendGridMailer_SendInvoice(t *testing.T) {
	t.Run("Posts to the mail send endpoint", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v3/mail/send", r.URL.Path)
			assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		mailer := NewSendGridMailer("sg-key", "bookings@rentflow.test", "Rentflow", srv.URL)
		err := mailer.SendInvoice(context.Background(), "asha@example.com", "Asha", testInvoice())
		require.NoError(t, err)
		assert.Equal(t, "Your rental of Canon EOS R5 is confirmed", got["subject"])
	})

	t.Run("Error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
		}))
		defer srv.Close()

		mailer := NewSendGridMailer("bad", "bookings@rentflow.test", "Rentflow", srv.URL)
		err := mailer.SendInvoice(context.Background(), "asha@example.com", "", testInvoice())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestInvoiceText(t *testing.T) {
	text := invoiceText(testInvoice())
	assert.Contains(t, text, "Base price (1 x 100.00 x 3): 300.00")
	assert.Contains(t, text, "Security deposit: 5000.00")
	assert.Contains(t, text, "Late return charge: 20.00 per day")
	assert.Contains(t, text, "Total: 5300.00")
}
