package domain

import "time"

type DraftStatus string

const (
	DraftStatusOpen      DraftStatus = "OPEN"
	DraftStatusConfirmed DraftStatus = "CONFIRMED"
	DraftStatusOrphaned  DraftStatus = "ORPHANED"
	DraftStatusCancelled DraftStatus = "CANCELLED"
)

// DraftRecord tracks a DRAFT order created upstream by a booking session so
// abandoned drafts can be cancelled later.
type DraftRecord struct {
	OrderID   string      `json:"order_id"`
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	ProductID string      `json:"product_id"`
	Status    DraftStatus `json:"status"`
	CreatedOn time.Time   `json:"created_on"`
	UpdatedOn time.Time   `json:"updated_on"`
}

// DraftStatusFor maps an upstream order status onto the journal. DRAFT
// orders stay OPEN.
func DraftStatusFor(status OrderStatus) DraftStatus {
	switch status {
	case OrderStatusDraft:
		return DraftStatusOpen
	case OrderStatusCancelled:
		return DraftStatusCancelled
	default:
		return DraftStatusConfirmed
	}
}
