package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rentflow/internal/domain"

	"github.com/shopspring/decimal"
)

// wireTimeLayout matches what the storefront sent: UTC with milliseconds.
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// money decodes an upstream amount that may be a JSON number or a decimal
// string (the marketplace serializes Decimal fields as strings). The value is
// kept exact until it is rounded to cents.
type money decimal.Decimal

func (m *money) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "" || s == "null" {
		*m = money(decimal.Zero)
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			*m = money(decimal.Zero)
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*m = money(d)
	return nil
}

func (m money) cents() domain.Cents {
	return domain.CentsFromDecimal(decimal.Decimal(m))
}

// timestamp accepts RFC 3339 as well as the naive ISO form Python emits for
// datetimes without a zone. Naive values are read as UTC.
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		if string(bytes.TrimSpace(b)) == "null" {
			*t = timestamp{}
			return nil
		}
		return err
	}
	if s == "" {
		*t = timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = timestamp(v)
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t timestamp) time() time.Time {
	return time.Time(t)
}

type productDTO struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	CategoryID        string           `json:"category_id"`
	OwnerID           string           `json:"owner_id"`
	RentalUnits       []string         `json:"rental_units"`
	Price             map[string]money `json:"price"`
	SecurityDeposit   money            `json:"security_deposit"`
	DefectCharges     money            `json:"defect_charges"`
	LateReturnCharges money            `json:"late_return_charges"`
	CareInstruction   string           `json:"care_instruction"`
	TotalQuantity     int              `json:"total_quantity"`
	AvailableQuantity *int             `json:"available_quantity"`
	ReservedQuantity  int              `json:"reserved_quantity"`
	RentedQuantity    int              `json:"rented_quantity"`
	ImagesID          []string         `json:"images_id"`
}

// toDomain resolves optional upstream fields to explicit defaults. Unknown
// rate keys are dropped rather than failing the whole product.
func (p *productDTO) toDomain() *domain.Product {
	available := 1
	if p.AvailableQuantity != nil {
		available = *p.AvailableQuantity
	}

	card := make(domain.RateCard, len(p.Price))
	for k, v := range p.Price {
		u, err := domain.ParseRentalUnit(k)
		if err != nil {
			continue
		}
		card[u] = v.cents()
	}

	var units []domain.RentalUnit
	for _, s := range p.RentalUnits {
		if u, err := domain.ParseRentalUnit(s); err == nil {
			units = append(units, u)
		}
	}

	return &domain.Product{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		OwnerID:           p.OwnerID,
		RentalUnits:       units,
		Price:             card,
		SecurityDeposit:   p.SecurityDeposit.cents(),
		DefectCharges:     p.DefectCharges.cents(),
		LateReturnPerDay:  p.LateReturnCharges.cents(),
		CareInstruction:   p.CareInstruction,
		TotalQuantity:     p.TotalQuantity,
		AvailableQuantity: available,
		ReservedQuantity:  p.ReservedQuantity,
		RentedQuantity:    p.RentedQuantity,
		ImageIDs:          p.ImagesID,
	}
}

type amountDTO struct {
	ItemTotal      money `json:"item_total"`
	PlatformCharge money `json:"platform_charge"`
	Subtotal       money `json:"subtotal"`
	Tax            money `json:"tax"`
	Total          money `json:"total"`
}

type orderDTO struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	ProductID        string         `json:"product_id"`
	Quantity         int            `json:"quantity"`
	Rate             string         `json:"rate"`
	RentStartDate    timestamp      `json:"rent_start_date"`
	RentEndDate      timestamp      `json:"rent_end_date"`
	DeliveryDate     timestamp      `json:"delivery_date"`
	PickupDate       timestamp      `json:"pickup_date"`
	DeliveryLocation domain.Address `json:"delivery_location"`
	PickupLocation   domain.Address `json:"pickup_location"`
	Amount           *amountDTO     `json:"amount"`
	AmountPaid       money          `json:"amount_paid"`
	AmountDue        money          `json:"amount_due"`
	OrderStatus      string         `json:"order_status"`
	PaymentStatus    string         `json:"payment_status"`
	CreatedAt        timestamp      `json:"created_at"`
	UpdatedAt        timestamp      `json:"updated_at"`
}

func (o *orderDTO) toDomain() *domain.Order {
	order := &domain.Order{
		ID:               o.ID,
		UserID:           o.UserID,
		ProductID:        o.ProductID,
		Quantity:         o.Quantity,
		Rate:             domain.RentalUnit(o.Rate),
		RentStartDate:    o.RentStartDate.time(),
		RentEndDate:      o.RentEndDate.time(),
		DeliveryLocation: o.DeliveryLocation,
		PickupLocation:   o.PickupLocation,
		DeliveryDate:     o.DeliveryDate.time(),
		PickupDate:       o.PickupDate.time(),
		AmountPaid:       o.AmountPaid.cents(),
		AmountDue:        o.AmountDue.cents(),
		OrderStatus:      domain.OrderStatus(o.OrderStatus),
		PaymentStatus:    domain.PaymentStatus(o.PaymentStatus),
		CreatedAt:        o.CreatedAt.time(),
		UpdatedAt:        o.UpdatedAt.time(),
	}
	if o.Amount != nil {
		order.Amount = &domain.Amount{
			ItemTotal:      o.Amount.ItemTotal.cents(),
			PlatformCharge: o.Amount.PlatformCharge.cents(),
			Subtotal:       o.Amount.Subtotal.cents(),
			Tax:            o.Amount.Tax.cents(),
			Total:          o.Amount.Total.cents(),
		}
	}
	return order
}

// createOrderDTO is the POST /orders/ body. Times go out in UTC, the way the
// storefront's toISOString did.
type createOrderDTO struct {
	UserID           string         `json:"user_id"`
	ProductID        string         `json:"product_id"`
	Quantity         int            `json:"quantity"`
	Rate             string         `json:"rate"`
	RentStartDate    string         `json:"rent_start_date"`
	RentEndDate      string         `json:"rent_end_date"`
	DeliveryDate     string         `json:"delivery_date"`
	PickupDate       string         `json:"pickup_date"`
	DeliveryLocation domain.Address `json:"delivery_location"`
	PickupLocation   domain.Address `json:"pickup_location"`
	OrderStatus      string         `json:"order_status"`
	PaymentStatus    string         `json:"payment_status"`
}

func newCreateOrderDTO(o *domain.CreateOrder) createOrderDTO {
	return createOrderDTO{
		UserID:           o.UserID,
		ProductID:        o.ProductID,
		Quantity:         o.Quantity,
		Rate:             string(o.Rate),
		RentStartDate:    wireTime(o.RentStartDate),
		RentEndDate:      wireTime(o.RentEndDate),
		DeliveryDate:     wireTime(o.DeliveryDate),
		PickupDate:       wireTime(o.PickupDate),
		DeliveryLocation: o.DeliveryLocation,
		PickupLocation:   o.PickupLocation,
		OrderStatus:      string(o.OrderStatus),
		PaymentStatus:    string(o.PaymentStatus),
	}
}

func wireTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

type statusUpdateDTO struct {
	OrderStatus string `json:"order_status"`
}

type profileDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email_id"`
	MobileNo string `json:"mobile_no"`
	UserType string `json:"user_type"`
}

func (p *profileDTO) toDomain() *domain.UserProfile {
	return &domain.UserProfile{
		ID:       p.ID,
		Email:    p.Email,
		MobileNo: p.MobileNo,
		UserType: p.UserType,
	}
}

// errorDTO covers both the marketplace's HTTPExceptionResponse and plain
// FastAPI {"detail": "..."} bodies.
type errorDTO struct {
	Title  string          `json:"title"`
	Detail json.RawMessage `json:"detail"`
}

func (e *errorDTO) message() string {
	if len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(e.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}
	return e.Title
}
