package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"rentflow/internal/logger"
	"rentflow/internal/repository"
	"rentflow/internal/repository/rest"
	"rentflow/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// BookingHandler exposes booking sessions over JSON/HTTP.
type BookingHandler struct {
	bookings service.BookingService
	validate *validator.Validate
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		validate: validator.New(),
	}
}

// RegisterBookingRoutes registers the booking session endpoints
func RegisterBookingRoutes(router *mux.Router, bookings service.BookingService) {
	h := NewBookingHandler(bookings)
	api := router.PathPrefix("/api/v1/sessions").Subrouter()
	api.HandleFunc("", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/token", h.SetToken).Methods(http.MethodPut)
	api.HandleFunc("/{id}/selection", h.UpdateSelection).Methods(http.MethodPut)
	api.HandleFunc("/{id}/quote", h.GetQuote).Methods(http.MethodGet)
	api.HandleFunc("/{id}/rent-now", h.sessionAction(h.bookings.RentNow)).Methods(http.MethodPost)
	api.HandleFunc("/{id}/add-to-cart", h.sessionAction(h.bookings.AddToCart)).Methods(http.MethodPost)
	api.HandleFunc("/{id}/save-and-continue", h.SaveAndContinue).Methods(http.MethodPost)
	api.HandleFunc("/{id}/confirm", h.sessionAction(h.bookings.ConfirmOrder)).Methods(http.MethodPost)
	api.HandleFunc("/{id}/cancel", h.sessionAction(h.bookings.Cancel)).Methods(http.MethodPost)
	api.HandleFunc("/{id}/reset", h.sessionAction(h.bookings.Reset)).Methods(http.MethodPost)
	api.HandleFunc("/{id}/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/{id}/cart/{itemId}", h.RemoveCartItem).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/invoice", h.GetInvoice).Methods(http.MethodGet)
}

// RegisterHealthRoutes registers the liveness endpoint
func RegisterHealthRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

type createSessionRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Token     string `json:"token"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type selectionRequest struct {
	Unit      *string `json:"unit" validate:"omitempty,oneof=PER_HOUR PER_DAY PER_WEEK PER_MONTH PER_YEAR hourly daily weekly monthly yearly"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time" validate:"omitempty,len=5"`
	EndTime   *string `json:"end_time" validate:"omitempty,len=5"`
	Quantity  *int    `json:"quantity"`
}

func (h *BookingHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		req.Token = bearerToken(r)
	}
	view, err := h.bookings.StartSession(r.Context(), req.ProductID, req.Token)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.bookings.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *BookingHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		req.Token = bearerToken(r)
	}
	view, err := h.bookings.SetToken(r.Context(), mux.Vars(r)["id"], req.Token)
	writeView(w, view, err)
}

func (h *BookingHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.bookings.UpdateSelection(r.Context(), mux.Vars(r)["id"], service.SelectionUpdate{
		Unit:      req.Unit,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Quantity:  req.Quantity,
	})
	writeView(w, view, err)
}

func (h *BookingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.bookings.Quote(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *BookingHandler) SaveAndContinue(w http.ResponseWriter, r *http.Request) {
	var req service.AddressRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.bookings.SaveAndContinue(r.Context(), mux.Vars(r)["id"], req)
	writeView(w, view, err)
}

func (h *BookingHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.bookings.Cart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *BookingHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	summary, err := h.bookings.RemoveCartItem(r.Context(), vars["id"], vars["itemId"])
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *BookingHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.bookings.Invoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// sessionAction adapts a body-less workflow step to a handler.
func (h *BookingHandler) sessionAction(step func(ctx context.Context, sessionID string) (*service.SessionView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := step(r.Context(), mux.Vars(r)["id"])
		writeView(w, view, err)
	}
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", nil)
			return false
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "request validation failed", validationDetails(dst, err))
		return false
	}
	return true
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// writeView answers a workflow step. A step that failed after loading the
// session still reports the session so the client can render LastError.
func writeView(w http.ResponseWriter, view *service.SessionView, err error) {
	if err != nil {
		writeServiceError(w, err, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeServiceError(w http.ResponseWriter, err error, view *service.SessionView) {
	status, code := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Booking request failed", "status", status, "error", err)
	}

	payload := map[string]any{
		"error": errorBody(code, err.Error(), errorDetails(err)),
	}
	if view != nil {
		payload["session"] = view
	}
	writeJSON(w, status, payload)
}

func mapErrorToStatus(err error) (int, string) {
	var verr *service.ValidationError
	var urlErr *url.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED"
	case errors.Is(err, service.ErrLoginRequired), errors.Is(err, repository.ErrUnauthorized):
		return http.StatusUnauthorized, "LOGIN_REQUIRED"
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, service.ErrCartItemNotFound):
		return http.StatusNotFound, "CART_ITEM_NOT_FOUND"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrRequestInFlight):
		return http.StatusConflict, "REQUEST_IN_FLIGHT"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case rest.IsUpstream(err), errors.As(err, &urlErr):
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func errorDetails(err error) map[string]any {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return map[string]any{"field": verr.Field}
	}
	return nil
}

func errorBody(code, message string, details map[string]any) map[string]any {
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	return body
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, map[string]any{"error": errorBody(code, message, details)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// validationDetails keys field errors by their JSON names.
func validationDetails(req any, err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	requestType := reflect.TypeOf(req)
	if requestType.Kind() == reflect.Pointer {
		requestType = requestType.Elem()
	}
	fields := map[string]string{}
	for _, fe := range validationErrors {
		name := fe.Field()
		if field, ok := requestType.FieldByName(fe.StructField()); ok {
			if tag := field.Tag.Get("json"); tag != "" {
				name = strings.Split(tag, ",")[0]
			}
		}
		fields[name] = validationMessage(fe)
	}
	return map[string]any{"fields": fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters long"
	default:
		return "is invalid"
	}
}
