package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// Notifier tells a tenant about new site submissions.
type Notifier interface {
	NotifyOrder(ctx context.Context, tenant *models.Tenant, order *models.Order, customer *models.Customer) error
	NotifyInquiry(ctx context.Context, tenant *models.Tenant, inquiry *models.Inquiry) error
}

// TenantNotifier fans a notification out to email and SMS. Either sender may
// be nil, and a tenant without a notification address or phone is skipped on
// that channel.
type TenantNotifier struct {
	email  EmailSender
	sms    SMSSender
	logger zerolog.Logger
}

func NewTenantNotifier(email EmailSender, sms SMSSender) *TenantNotifier {
	return &TenantNotifier{
		email:  email,
		sms:    sms,
		logger: log.With().Str("service", "notifier").Logger(),
	}
}

func (n *TenantNotifier) NotifyOrder(ctx context.Context, tenant *models.Tenant, order *models.Order, customer *models.Customer) error {
	total := "n/a"
	if order.Total.Valid {
		total = order.Total.Decimal.StringFixed(2)
	}
	subject := fmt.Sprintf("New order %s", order.Reference())
	body := fmt.Sprintf(
		"<p>New order <strong>%s</strong> on %s.</p><p>Customer: %s &lt;%s&gt;<br>Quantity: %d<br>Total: %s</p>",
		order.Reference(), html.EscapeString(tenant.Name),
		html.EscapeString(customer.Name), html.EscapeString(customer.Email),
		order.Quantity, total,
	)
	sms := fmt.Sprintf("%s: new order %s from %s, total %s", tenant.Name, order.Reference(), customer.Email, total)
	return n.fanOut(ctx, tenant, subject, body, sms)
}

func (n *TenantNotifier) NotifyInquiry(ctx context.Context, tenant *models.Tenant, inquiry *models.Inquiry) error {
	subject := fmt.Sprintf("New inquiry from %s", inquiry.Name)
	body := fmt.Sprintf(
		"<p>New inquiry on %s.</p><p>From: %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(tenant.Name), html.EscapeString(inquiry.Name),
		html.EscapeString(inquiry.Email), html.EscapeString(inquiry.Message),
	)
	sms := fmt.Sprintf("%s: new inquiry from %s", tenant.Name, inquiry.Name)
	return n.fanOut(ctx, tenant, subject, body, sms)
}

func (n *TenantNotifier) fanOut(ctx context.Context, tenant *models.Tenant, subject, body, sms string) error {
	g, ctx := errgroup.WithContext(ctx)
	failed := make([]string, 2)

	if n.email != nil && tenant.NotificationEmail != nil && *tenant.NotificationEmail != "" {
		g.Go(func() error {
			if err := n.email.SendEmail(ctx, subject, body, []string{*tenant.NotificationEmail}); err != nil {
				n.logger.Error().Err(err).Str("tenant", tenant.Slug).Msg("Failed to send email notification")
				failed[0] = "email"
			}
			return nil
		})
	}
	if n.sms != nil && tenant.NotificationPhone != nil && *tenant.NotificationPhone != "" {
		g.Go(func() error {
			if err := n.sms.SendSMS(ctx, *tenant.NotificationPhone, sms); err != nil {
				n.logger.Error().Err(err).Str("tenant", tenant.Slug).Msg("Failed to send SMS notification")
				failed[1] = "sms"
			}
			return nil
		})
	}
	_ = g.Wait()

	var steps []string
	for _, f := range failed {
		if f != "" {
			steps = append(steps, f)
		}
	}
	if len(steps) > 0 {
		return errs.NewPartialFailureError("notify "+strings.ToLower(subject), steps)
	}
	return nil
}
