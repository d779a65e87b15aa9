package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
)

const serviceName = "marketplace"

// errEmptyResponse is a 2xx answer without a body where one was expected.
var errEmptyResponse = errors.New("marketplace returned an empty response")

var (
	ErrUnauthorized = repository.ErrUnauthorized
	ErrNotFound     = repository.ErrNotFound
)

// UpstreamError is a non-2xx response from the marketplace backend.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("marketplace returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("marketplace returned status %d: %s", e.StatusCode, e.Detail)
}

// Is lets callers match auth and lookup failures with errors.Is.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client talks to the marketplace backend. It implements the product, order
// and profile repositories.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var (
	_ repository.ProductRepository = (*Client)(nil)
	_ repository.OrderRepository   = (*Client)(nil)
	_ repository.ProfileRepository = (*Client)(nil)
)

func (c *Client) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var dto productDTO
	if err := c.do(ctx, "get_product", http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

func (c *Client) GetProfile(ctx context.Context, token string) (*domain.UserProfile, error) {
	var dto profileDTO
	if err := c.do(ctx, "get_profile", http.MethodGet, "/user/profile", token, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error) {
	var dto orderDTO
	if err := c.do(ctx, "get_order", http.MethodGet, "/orders/"+url.PathEscape(orderID), token, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

func (c *Client) Create(ctx context.Context, token string, order *domain.CreateOrder) (*domain.Order, error) {
	var dto orderDTO
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders/", token, newCreateOrderDTO(order), &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// UpdateStatus returns a nil order when the marketplace acknowledges the
// change without a body.
func (c *Client) UpdateStatus(ctx context.Context, token, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	var dto orderDTO
	err := c.do(ctx, "update_order_status", http.MethodPatch, path, token, statusUpdateDTO{OrderStatus: string(status)}, &dto)
	switch {
	case errors.Is(err, errEmptyResponse):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return dto.toDomain(), nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) (err error) {
	logger.ExternalServiceCall(serviceName, op, "method", method, "path", path)
	defer func() { logger.ExternalServiceResult(serviceName, op, err) }()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newUpstreamError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errEmptyResponse
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func newUpstreamError(status int, body []byte) *UpstreamError {
	ue := &UpstreamError{StatusCode: status}
	var e errorDTO
	if err := json.Unmarshal(body, &e); err == nil {
		ue.Detail = e.message()
	}
	if ue.Detail == "" {
		ue.Detail = strings.TrimSpace(http.StatusText(status))
	}
	return ue
}

// IsUpstream reports whether err came back from the marketplace rather than
// failing in transport.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
