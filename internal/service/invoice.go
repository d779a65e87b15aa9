package service

import (
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/utils"
)

// BuildInvoice summarises a confirmed booking. The grand total is the rental
// charge plus the refundable security deposit; delivery is free.
func BuildInvoice(sel *RentalSelection, wf domain.WorkflowSnapshot, loc *time.Location, issuedAt time.Time) *domain.Invoice {
	product := sel.Product()
	quote := sel.Quote()

	inv := &domain.Invoice{
		ProductID:        product.ID,
		ProductName:      product.Name,
		Description:      product.Description,
		Unit:             quote.Unit,
		UnitPrice:        quote.UnitPrice,
		Quantity:         quote.Quantity,
		Days:             quote.Days,
		Periods:          quote.Periods,
		RentStart:        sel.RentStart(loc),
		RentEnd:          sel.RentEnd(loc),
		PickupAddress:    wf.PickupAddress,
		DeliveryAddress:  wf.DeliveryAddress,
		BaseTotal:        quote.Amount(),
		SecurityDeposit:  product.SecurityDeposit,
		LateReturnPerDay: product.LateReturnPerDay,
		GrandTotal:       quote.Amount() + product.SecurityDeposit,
		IssuedAt:         issuedAt,
	}
	if wf.Order != nil {
		inv.OrderID = wf.Order.ID
		inv.PickupLocation = wf.Order.PickupLocation
		inv.DeliveryLocation = wf.Order.DeliveryLocation
		if wf.Order.Amount != nil {
			total := wf.Order.Amount.Total
			inv.UpstreamTotal = &total
		}
	} else {
		inv.PickupLocation = utils.ParseAddress(wf.PickupAddress)
		inv.DeliveryLocation = utils.ParseAddress(wf.DeliveryAddress)
	}
	return inv
}
