package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
	"rentflow/internal/utils"

	"github.com/go-playground/validator/v10"
)

var orderValidator = validator.New()

type WorkflowOptions struct {
	// Location is where rental dates and times are interpreted.
	Location *time.Location
	// Country is assigned to parsed addresses.
	Country string
	// RequireCompleteAddress refuses addresses missing a street, city,
	// state or postal code.
	RequireCompleteAddress bool
	Now                    func() time.Time
}

func (o WorkflowOptions) withDefaults() WorkflowOptions {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Country == "" {
		o.Country = utils.DefaultCountry
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Workflow drives one booking from date selection to invoice. Calls are
// serialized: a call made while another is running fails with
// ErrRequestInFlight.
type Workflow struct {
	mu     sync.Mutex
	busy   bool
	sel    *RentalSelection
	cart   *Cart
	auth   AuthSession
	orders repository.OrderRepository
	opts   WorkflowOptions
	s      domain.WorkflowSnapshot
}

func NewWorkflow(sel *RentalSelection, cart *Cart, auth AuthSession, orders repository.OrderRepository, opts WorkflowOptions) *Workflow {
	return RestoreWorkflow(domain.WorkflowSnapshot{State: domain.BookingStateIdle}, sel, cart, auth, orders, opts)
}

func RestoreWorkflow(snap domain.WorkflowSnapshot, sel *RentalSelection, cart *Cart, auth AuthSession, orders repository.OrderRepository, opts WorkflowOptions) *Workflow {
	if snap.State == "" {
		snap.State = domain.BookingStateIdle
	}
	w := &Workflow{
		sel:    sel,
		cart:   cart,
		auth:   auth,
		orders: orders,
		opts:   opts.withDefaults(),
		s:      snap,
	}
	w.syncSelection()
	return w
}

func (w *Workflow) begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrRequestInFlight
	}
	w.busy = true
	return nil
}

func (w *Workflow) end() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

func (w *Workflow) State() domain.BookingState { return w.s.State }
func (w *Workflow) LastError() string { return w.s.LastError }
func (w *Workflow) Invoice() *domain.Invoice { return w.s.Invoice }
func (w *Workflow) Selection() *RentalSelection { return w.sel }
func (w *Workflow) Cart() *Cart { return w.cart }

func (w *Workflow) Snapshot() domain.WorkflowSnapshot {
	return w.s
}

// SyncSelection moves between IDLE and SELECTING_DATES as the selection
// gains or loses a complete date range.
func (w *Workflow) SyncSelection() error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()
	w.syncSelection()
	return nil
}

func (w *Workflow) syncSelection() {
	switch w.s.State {
	case domain.BookingStateIdle:
		if w.sel.HasValidDates() {
			w.s.State = domain.BookingStateSelectingDates
		}
	case domain.BookingStateSelectingDates:
		if !w.sel.HasValidDates() {
			w.s.State = domain.BookingStateIdle
		}
	}
}

func (w *Workflow) fail(err error) error {
	w.s.LastError = err.Error()
	return err
}

// requireSignIn re-checks the session with the marketplace. A dead session
// moves the booking to LOGIN_REQUIRED.
func (w *Workflow) requireSignIn(ctx context.Context) error {
	ok, err := w.auth.IsValid(ctx)
	if err != nil {
		return w.fail(err)
	}
	if !ok {
		w.s.State = domain.BookingStateLoginRequired
		w.s.UserID = ""
		w.s.UserEmail = ""
		return w.fail(ErrLoginRequired)
	}
	if p := w.auth.Profile(); p != nil {
		w.s.UserID = p.ID
		w.s.UserEmail = p.Email
	}
	return nil
}

func (w *Workflow) startCheckout() error {
	w.syncSelection()
	if w.s.State != domain.BookingStateIdle && w.s.State != domain.BookingStateSelectingDates {
		return ErrInvalidTransition
	}
	if !w.sel.HasValidDates() {
		return w.fail(newValidationError("dates", "please select rental dates"))
	}
	return nil
}

// RentNow starts checkout for the current selection.
func (w *Workflow) RentNow(ctx context.Context) error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()

	if err := w.startCheckout(); err != nil {
		return err
	}
	if err := w.requireSignIn(ctx); err != nil {
		return err
	}

	st := w.sel.State()
	w.s.State = domain.BookingStateAddressCapture
	w.s.DeliveryDate = st.StartDate
	w.s.PickupDate = st.EndDate
	w.s.PickupAddress = ""
	w.s.DeliveryAddress = ""
	w.s.Order = nil
	w.s.Invoice = nil
	w.s.LastError = ""
	return nil
}

// AddToCart prices the current selection into the cart. The booking stays
// on date selection.
func (w *Workflow) AddToCart(ctx context.Context) (*domain.CartItem, error) {
	if err := w.begin(); err != nil {
		return nil, err
	}
	defer w.end()

	if err := w.startCheckout(); err != nil {
		return nil, err
	}
	if err := w.requireSignIn(ctx); err != nil {
		return nil, err
	}

	st := w.sel.State()
	item, err := w.cart.AddItem(*w.sel.Product(), st.Quantity, st.StartDate, st.EndDate, st.Unit)
	if err != nil {
		return nil, w.fail(err)
	}
	w.s.LastError = ""
	return item, nil
}

// SetSchedule moves delivery and pickup. Delivery must fall on or before
// the rental start and pickup on or after the rental end.
func (w *Workflow) SetSchedule(delivery, pickup time.Time) error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()
	return w.setSchedule(delivery, pickup)
}

func (w *Workflow) setSchedule(delivery, pickup time.Time) error {
	if w.s.State != domain.BookingStateAddressCapture {
		return ErrInvalidTransition
	}
	st := w.sel.State()
	if !delivery.IsZero() {
		delivery = utils.CalendarDate(delivery)
		if delivery.After(st.StartDate) {
			return w.fail(newValidationError("delivery_date", "delivery must be on or before the rental start"))
		}
	}
	if !pickup.IsZero() {
		pickup = utils.CalendarDate(pickup)
		if pickup.Before(st.EndDate) {
			return w.fail(newValidationError("pickup_date", "pickup must be on or after the rental end"))
		}
	}
	if !delivery.IsZero() {
		w.s.DeliveryDate = delivery
	}
	if !pickup.IsZero() {
		w.s.PickupDate = pickup
	}
	return nil
}

// SaveAndContinue parses the addresses and submits the booking as a DRAFT
// order. On failure the booking stays on address capture with the error
// recorded; nothing is retried.
func (w *Workflow) SaveAndContinue(ctx context.Context, pickupText, deliveryText string) error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()
	return w.saveAndContinue(ctx, pickupText, deliveryText)
}

// SaveAndContinueWithSchedule applies a delivery/pickup schedule and then
// saves, as one call.
func (w *Workflow) SaveAndContinueWithSchedule(ctx context.Context, pickupText, deliveryText string, delivery, pickup time.Time) error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()
	if err := w.setSchedule(delivery, pickup); err != nil {
		return err
	}
	return w.saveAndContinue(ctx, pickupText, deliveryText)
}

func (w *Workflow) saveAndContinue(ctx context.Context, pickupText, deliveryText string) error {
	if w.s.State != domain.BookingStateAddressCapture {
		return ErrInvalidTransition
	}

	quote := w.sel.Quote()
	if !quote.Computable() {
		return w.fail(newValidationError("pricing", "the rental total cannot be calculated for this selection"))
	}

	pickup := utils.ParseAddressWithCountry(pickupText, w.opts.Country)
	delivery := utils.ParseAddressWithCountry(deliveryText, w.opts.Country)
	if w.opts.RequireCompleteAddress {
		if !pickup.IsComplete() {
			return w.fail(newValidationError("pickup_address", "address needs street, city, state and postal code"))
		}
		if !delivery.IsComplete() {
			return w.fail(newValidationError("delivery_address", "address needs street, city, state and postal code"))
		}
	}
	w.s.PickupAddress = pickupText
	w.s.DeliveryAddress = deliveryText

	st := w.sel.State()
	loc := w.opts.Location
	payload := &domain.CreateOrder{
		ProductID:        st.ProductID,
		UserID:           w.s.UserID,
		Quantity:         st.Quantity,
		Rate:             quote.Unit,
		RentStartDate:    w.sel.RentStart(loc),
		RentEndDate:      w.sel.RentEnd(loc),
		DeliveryLocation: delivery,
		PickupLocation:   pickup,
		DeliveryDate:     st.StartTime.On(w.s.DeliveryDate, loc),
		PickupDate:       st.EndTime.On(w.s.PickupDate, loc),
		OrderStatus:      domain.OrderStatusDraft,
		PaymentStatus:    domain.PaymentStatusNotApplicable,
	}
	if err := orderValidator.Struct(payload); err != nil {
		return w.fail(fromStructErrors(err))
	}

	order, err := w.orders.Create(ctx, w.auth.GetToken(), payload)
	if err != nil {
		w.dropTokenOn(err)
		logger.Warn("Order draft failed", "product_id", st.ProductID, "error", err)
		return w.fail(err)
	}

	w.s.Order = order
	w.s.State = domain.BookingStateOrderDrafted
	w.s.LastError = ""
	return nil
}

// ConfirmOrder confirms the draft and, on success, issues the invoice.
func (w *Workflow) ConfirmOrder(ctx context.Context) error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()

	if w.s.State != domain.BookingStateOrderDrafted || w.s.Order == nil {
		return ErrInvalidTransition
	}
	if !w.s.Order.OrderStatus.CanTransitionTo(domain.OrderStatusConfirmed) {
		return w.fail(ErrInvalidTransition)
	}

	updated, err := w.orders.UpdateStatus(ctx, w.auth.GetToken(), w.s.Order.ID, domain.OrderStatusConfirmed)
	if err != nil {
		w.dropTokenOn(err)
		logger.Warn("Order confirmation failed", "order_id", w.s.Order.ID, "error", err)
		return w.fail(err)
	}
	if updated == nil || updated.ID == "" {
		confirmed := *w.s.Order
		confirmed.OrderStatus = domain.OrderStatusConfirmed
		updated = &confirmed
	}

	w.s.Order = updated
	w.s.State = domain.BookingStateOrderConfirmed
	w.s.Invoice = BuildInvoice(w.sel, w.s, w.opts.Location, w.opts.Now().UTC())
	w.s.State = domain.BookingStateInvoiceShown
	w.s.LastError = ""
	return nil
}

// Cancel abandons the booking from any non-terminal state. A draft already
// created upstream is left as is.
func (w *Workflow) Cancel() error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()

	if w.s.State.Terminal() {
		return ErrInvalidTransition
	}
	w.sel.ClearDates()
	w.s = domain.WorkflowSnapshot{
		State:     domain.BookingStateCancelled,
		UserID:    w.s.UserID,
		UserEmail: w.s.UserEmail,
	}
	return nil
}

// Reset starts over after a terminal state. Coming back from
// LOGIN_REQUIRED keeps the chosen dates so the user can retry after signing
// in.
func (w *Workflow) Reset() error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()

	if !w.s.State.Terminal() {
		return ErrInvalidTransition
	}
	if w.s.State != domain.BookingStateLoginRequired {
		w.sel.ClearDates()
	}
	w.s = domain.WorkflowSnapshot{State: domain.BookingStateIdle}
	w.syncSelection()
	return nil
}

func (w *Workflow) dropTokenOn(err error) {
	if errors.Is(err, repository.ErrUnauthorized) {
		w.auth.Clear()
	}
}
