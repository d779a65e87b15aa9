package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
	"rentflow/internal/security"
	"rentflow/internal/utils"

	"github.com/google/uuid"
)

type BookingOptions struct {
	Workflow WorkflowOptions
	Cart     CartOptions
}

type bookingService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	profiles  repository.ProfileRepository
	sessions  repository.SessionRepository
	drafts    repository.DraftRepository
	inspector security.TokenInspector
	mailer    InvoiceMailer
	opts      BookingOptions
	now       func() time.Time

	inflight sync.Map
}

func NewBookingService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	profiles repository.ProfileRepository,
	sessions repository.SessionRepository,
	drafts repository.DraftRepository,
	inspector security.TokenInspector,
	mailer InvoiceMailer,
	opts BookingOptions,
) BookingService {
	opts.Workflow = opts.Workflow.withDefaults()
	return &bookingService{
		products:  products,
		orders:    orders,
		profiles:  profiles,
		sessions:  sessions,
		drafts:    drafts,
		inspector: inspector,
		mailer:    mailer,
		opts:      opts,
		now:       opts.Workflow.Now,
	}
}

// booking is a session rehydrated for one call.
type booking struct {
	session  *domain.BookingSession
	auth     AuthSession
	workflow *Workflow
}

func (s *bookingService) load(sess *domain.BookingSession) *booking {
	sel := RestoreRentalSelection(&sess.Product, sess.Selection, s.now, s.opts.Workflow.Location)
	cart := NewCart(s.opts.Cart, sess.Cart)
	auth := NewAuthSession(sess.Token, s.inspector, s.profiles)
	wf := RestoreWorkflow(sess.Workflow, sel, cart, auth, s.orders, s.opts.Workflow)
	return &booking{session: sess, auth: auth, workflow: wf}
}

func (s *bookingService) view(b *booking) *SessionView {
	sel := b.workflow.Selection()
	return &SessionView{
		ID:        b.session.ID,
		Product:   b.session.Product,
		Selection: sel.State(),
		Quote:     sel.Quote(),
		Workflow:  b.workflow.Snapshot(),
		Cart:      b.workflow.Cart().Summary(),
		SignedIn:  b.auth.GetToken() != "",
		UpdatedAt: b.session.UpdatedAt,
	}
}

// withBooking loads the session, runs fn and saves whatever fn changed,
// including after a failed call. Only one call per session runs at a time.
func (s *bookingService) withBooking(ctx context.Context, sessionID string, fn func(b *booking) error) (*SessionView, error) {
	if _, busy := s.inflight.LoadOrStore(sessionID, struct{}{}); busy {
		return nil, ErrRequestInFlight
	}
	defer s.inflight.Delete(sessionID)

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	b := s.load(sess)
	before := b.workflow.State()

	opErr := fn(b)
	logger.StateTransition(sessionID, string(before), string(b.workflow.State()))

	sess.Selection = b.workflow.Selection().State()
	sess.Cart = b.workflow.Cart().Items()
	sess.Workflow = b.workflow.Snapshot()
	sess.Token = b.auth.GetToken()
	sess.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		// The upstream side effects already happened; keep a trace of them.
		args := []any{"error", err, "state", sess.Workflow.State}
		if sess.Workflow.Order != nil {
			args = append(args, "order_id", sess.Workflow.Order.ID)
		}
		if opErr != nil {
			args = append(args, "operation_error", opErr)
		}
		logger.WithSession(sessionID).Error("Failed to save booking session", args...)
		return nil, errors.Join(fmt.Errorf("failed to save booking session: %w", err), opErr)
	}
	return s.view(b), opErr
}

func (s *bookingService) StartSession(ctx context.Context, productID, token string) (*SessionView, error) {
	logger.EnterMethod("BookingService.StartSession", "product_id", productID)

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		logger.ExitMethodWithError("BookingService.StartSession", err)
		return nil, err
	}

	now := s.now().UTC()
	sel := NewRentalSelection(product, s.now, s.opts.Workflow.Location)
	sess := &domain.BookingSession{
		ID:        uuid.NewString(),
		Token:     token,
		Product:   *product,
		Selection: sel.State(),
		Cart:      []domain.CartItem{},
		Workflow:  domain.WorkflowSnapshot{State: domain.BookingStateIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		logger.ExitMethodWithError("BookingService.StartSession", err)
		return nil, fmt.Errorf("failed to create booking session: %w", err)
	}

	logger.Info("Booking session started", "session_id", sess.ID, "product_id", product.ID)
	logger.ExitMethod("BookingService.StartSession", "session_id", sess.ID)
	return s.view(s.load(sess)), nil
}

func (s *bookingService) GetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(s.load(sess)), nil
}

func (s *bookingService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *bookingService) SetToken(ctx context.Context, sessionID, token string) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		b.auth = NewAuthSession(token, s.inspector, s.profiles)
		b.workflow.auth = b.auth
		logger.Debug("Session token replaced", "session_id", sessionID, "token", logger.TokenHint(token))
		return nil
	})
}

func (s *bookingService) UpdateSelection(ctx context.Context, sessionID string, update SelectionUpdate) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		wf := b.workflow
		switch wf.State() {
		case domain.BookingStateIdle, domain.BookingStateSelectingDates:
		default:
			return ErrInvalidTransition
		}
		if err := applySelectionUpdate(wf.Selection(), update); err != nil {
			return err
		}
		return wf.SyncSelection()
	})
}

// applySelectionUpdate validates every field before touching the selection
// so a rejected update changes nothing.
func applySelectionUpdate(sel *RentalSelection, u SelectionUpdate) error {
	st := sel.State()

	unit := st.Unit
	if u.Unit != nil {
		parsed, err := domain.ParseRentalUnit(*u.Unit)
		if err != nil {
			return newValidationError("unit", "%s", err.Error())
		}
		unit = parsed
	}

	start, end := st.StartDate, st.EndDate
	var err error
	if u.StartDate != nil {
		if start, err = parseOptionalDate(*u.StartDate); err != nil {
			return newValidationError("start_date", "%s", err.Error())
		}
	}
	if u.EndDate != nil {
		if end, err = parseOptionalDate(*u.EndDate); err != nil {
			return newValidationError("end_date", "%s", err.Error())
		}
	}

	startTime, endTime := st.StartTime, st.EndTime
	if u.StartTime != nil {
		if startTime, err = domain.ParseTimeOfDay(*u.StartTime); err != nil {
			return newValidationError("start_time", "%s", err.Error())
		}
	}
	if u.EndTime != nil {
		if endTime, err = domain.ParseTimeOfDay(*u.EndTime); err != nil {
			return newValidationError("end_time", "%s", err.Error())
		}
	}

	datesChanged := u.StartDate != nil || u.EndDate != nil
	candidate := RestoreRentalSelection(sel.Product(), st, sel.now, sel.loc)
	if u.Unit != nil {
		if err := candidate.SetUnit(unit); err != nil {
			return err
		}
	}
	if datesChanged {
		if err := candidate.SetDates(start, end); err != nil {
			return err
		}
	}

	if u.Unit != nil {
		_ = sel.SetUnit(unit)
	}
	if datesChanged {
		_ = sel.SetDates(start, end)
	}
	sel.SetTimes(startTime, endTime)
	if u.Quantity != nil {
		sel.SetQuantity(*u.Quantity)
	}
	return nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return utils.ParseDate(s)
}

func (s *bookingService) Quote(ctx context.Context, sessionID string) (*utils.Quote, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	q := s.load(sess).workflow.Selection().Quote()
	return &q, nil
}

func (s *bookingService) RentNow(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		return b.workflow.RentNow(ctx)
	})
}

func (s *bookingService) AddToCart(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		item, err := b.workflow.AddToCart(ctx)
		if err != nil {
			return err
		}
		logger.Info("Item added to cart", "session_id", sessionID, "item_id", item.ID, "total", item.Total)
		return nil
	})
}

func (s *bookingService) SaveAndContinue(ctx context.Context, sessionID string, req AddressRequest) (*SessionView, error) {
	var delivery, pickup time.Time
	var err error
	if delivery, err = parseOptionalDate(req.DeliveryDate); err != nil {
		return nil, newValidationError("delivery_date", "%s", err.Error())
	}
	if pickup, err = parseOptionalDate(req.PickupDate); err != nil {
		return nil, newValidationError("pickup_date", "%s", err.Error())
	}

	return s.withBooking(ctx, sessionID, func(b *booking) error {
		if err := b.workflow.SaveAndContinueWithSchedule(ctx, req.PickupAddress, req.DeliveryAddress, delivery, pickup); err != nil {
			return err
		}
		order := b.workflow.Snapshot().Order
		s.journal(ctx, &domain.DraftRecord{
			OrderID:   order.ID,
			SessionID: sessionID,
			UserID:    b.workflow.Snapshot().UserID,
			ProductID: b.session.Product.ID,
			Status:    domain.DraftStatusOpen,
		})
		logger.Info("Order drafted", "session_id", sessionID, "order_id", order.ID)
		return nil
	})
}

func (s *bookingService) ConfirmOrder(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		if err := b.workflow.ConfirmOrder(ctx); err != nil {
			return err
		}
		snap := b.workflow.Snapshot()
		s.markDraft(ctx, snap.Order.ID, domain.DraftStatusConfirmed)
		logger.Info("Order confirmed", "session_id", sessionID, "order_id", snap.Order.ID)

		if snap.UserEmail != "" && snap.Invoice != nil {
			if err := s.mailer.SendInvoice(ctx, snap.UserEmail, "", snap.Invoice); err != nil {
				logger.WithSession(sessionID).Warn("Invoice email failed", "order_id", snap.Order.ID, "error", err)
			}
		}
		return nil
	})
}

func (s *bookingService) Cancel(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		order := b.workflow.Snapshot().Order
		if err := b.workflow.Cancel(); err != nil {
			return err
		}
		if order != nil && order.OrderStatus == domain.OrderStatusDraft {
			s.markDraft(ctx, order.ID, domain.DraftStatusOrphaned)
			logger.Info("Draft order orphaned", "session_id", sessionID, "order_id", order.ID)
		}
		return nil
	})
}

func (s *bookingService) Reset(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.withBooking(ctx, sessionID, func(b *booking) error {
		return b.workflow.Reset()
	})
}

func (s *bookingService) Cart(ctx context.Context, sessionID string) (*CartSummary, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := NewCart(s.opts.Cart, sess.Cart).Summary()
	return &summary, nil
}

func (s *bookingService) RemoveCartItem(ctx context.Context, sessionID, itemID string) (*CartSummary, error) {
	view, err := s.withBooking(ctx, sessionID, func(b *booking) error {
		return b.workflow.Cart().RemoveItem(itemID)
	})
	if view == nil {
		return nil, err
	}
	return &view.Cart, err
}

func (s *bookingService) Invoice(ctx context.Context, sessionID string) (*domain.Invoice, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Workflow.Invoice == nil {
		return nil, repository.ErrNotFound
	}
	return sess.Workflow.Invoice, nil
}

// Journal writes never fail the booking; the sweep tolerates gaps.
func (s *bookingService) journal(ctx context.Context, draft *domain.DraftRecord) {
	if s.drafts == nil {
		return
	}
	now := s.now().UTC()
	draft.CreatedOn, draft.UpdatedOn = now, now
	if err := s.drafts.Record(ctx, draft); err != nil {
		logger.Error("Failed to journal draft", "order_id", draft.OrderID, "error", err)
	}
}

func (s *bookingService) markDraft(ctx context.Context, orderID string, status domain.DraftStatus) {
	if s.drafts == nil {
		return
	}
	err := s.drafts.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, repository.ErrDraftNotFound) {
		now := s.now().UTC()
		err = s.drafts.Record(ctx, &domain.DraftRecord{OrderID: orderID, Status: status, CreatedOn: now, UpdatedOn: now})
	}
	if err != nil {
		logger.Error("Failed to update draft journal", "order_id", orderID, "status", status, "error", err)
	}
}
