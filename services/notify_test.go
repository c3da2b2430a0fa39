package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

func notifiableTenant() *models.Tenant {
	tenant := newTestTenant()
	tenant.NotificationEmail = ptr("owner@acme.test")
	tenant.NotificationPhone = ptr("+15550001111")
	return tenant
}

func TestTenantNotifier_NotifyOrder(t *testing.T) {
	email, sms := &fakeEmail{}, &fakeSMS{}
	n := NewTenantNotifier(email, sms)
	order := &models.Order{OrderNumber: 42, Quantity: 2, Total: decimal.NewNullDecimal(decimal.RequireFromString("19.9"))}
	customer := &models.Customer{Name: "Jane <3", Email: "jane@example.com"}

	require.NoError(t, n.NotifyOrder(context.Background(), notifiableTenant(), order, customer))

	assert.Equal(t, []string{"New order ORD-000042"}, email.subjects)
	assert.Equal(t, [][]string{{"owner@acme.test"}}, email.recipients)
	assert.Equal(t, []string{"+15550001111"}, sms.to)
	require.Len(t, sms.bodies, 1)
	assert.Contains(t, sms.bodies[0], "ORD-000042")
	assert.Contains(t, sms.bodies[0], "19.90")
}

func TestTenantNotifier_SkipsUnconfiguredChannels(t *testing.T) {
	email, sms := &fakeEmail{}, &fakeSMS{}
	n := NewTenantNotifier(email, sms)
	tenant := newTestTenant()
	tenant.NotificationEmail = ptr("owner@acme.test")

	require.NoError(t, n.NotifyInquiry(context.Background(), tenant, &models.Inquiry{Name: "Bob", Email: "bob@example.com"}))

	assert.Len(t, email.subjects, 1)
	assert.Empty(t, sms.to)
}

func TestTenantNotifier_NilSenders(t *testing.T) {
	n := NewTenantNotifier(nil, nil)
	assert.NoError(t, n.NotifyInquiry(context.Background(), notifiableTenant(), &models.Inquiry{Name: "Bob"}))
}

func TestTenantNotifier_PartialFailure(t *testing.T) {
	email, sms := &fakeEmail{}, &fakeSMS{err: errBoom}
	n := NewTenantNotifier(email, sms)

	err := n.NotifyInquiry(context.Background(), notifiableTenant(), &models.Inquiry{Name: "Bob", Email: "bob@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPartialFailure)
	assert.Contains(t, err.Error(), "sms")
	assert.NotContains(t, err.Error(), "email,")
	assert.Len(t, email.subjects, 1)
}
