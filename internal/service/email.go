package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"rentflow/internal/domain"
	"rentflow/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridMailer struct {
	apiKey    string
	fromEmail string
	fromName  string
	host      string
}

// NewSendGridMailer sends invoices through the SendGrid v3 API. host may be
// empty for the public endpoint.
func NewSendGridMailer(apiKey, fromEmail, fromName, host string) InvoiceMailer {
	return &sendGridMailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		host:      host,
	}
}

func (s *sendGridMailer) SendInvoice(ctx context.Context, toEmail, toName string, inv *domain.Invoice) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("Your rental of %s is confirmed", inv.ProductName)
	plain := invoiceText(inv)
	message := mail.NewSingleEmail(from, subject, to, plain, "<pre>"+html.EscapeString(plain)+"</pre>")

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	logger.ExternalServiceCall("sendgrid", "SendInvoice", "order_id", inv.OrderID)
	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		err = fmt.Errorf("failed to send invoice email: %w", err)
		logger.ExternalServiceResult("sendgrid", "SendInvoice", err)
		return err
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "SendInvoice", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "SendInvoice", nil, "status", response.StatusCode)
	return nil
}

func invoiceText(inv *domain.Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s\n", inv.OrderID)
	fmt.Fprintf(&b, "Product: %s\n", inv.ProductName)
	fmt.Fprintf(&b, "Rental: %s to %s (%d days)\n",
		inv.RentStart.Format("02 Jan 2006 15:04"), inv.RentEnd.Format("02 Jan 2006 15:04"), inv.Days)
	fmt.Fprintf(&b, "Delivery address: %s\n", inv.DeliveryAddress)
	fmt.Fprintf(&b, "Pickup address: %s\n\n", inv.PickupAddress)
	fmt.Fprintf(&b, "Base price (%d x %s x %d): %s\n", inv.Quantity, inv.UnitPrice, inv.Periods, inv.BaseTotal)
	fmt.Fprintf(&b, "Security deposit: %s\n", inv.SecurityDeposit)
	fmt.Fprintf(&b, "Delivery: free\n")
	if inv.LateReturnPerDay > 0 {
		fmt.Fprintf(&b, "Late return charge: %s per day\n", inv.LateReturnPerDay)
	}
	fmt.Fprintf(&b, "Total: %s\n", inv.GrandTotal)
	return b.String()
}

type noopMailer struct{}

// NewNoopMailer is used when no mail provider is configured.
func NewNoopMailer() InvoiceMailer {
	return noopMailer{}
}

func (noopMailer) SendInvoice(ctx context.Context, toEmail, toName string, inv *domain.Invoice) error {
	logger.Debug("Invoice email skipped, no mailer configured", "order_id", inv.OrderID)
	return nil
}
