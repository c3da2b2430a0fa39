package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFulfilled = "fulfilled"
	OrderStatusCancelled = "cancelled"
)

// Order snapshots the unit price at creation. Total stays null when it could
// not be computed.
type Order struct {
	Base
	TenantID    uuid.UUID           `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_number,priority:1"`
	OrderNumber int                 `json:"orderNumber" db:"order_number" gorm:"not null;uniqueIndex:idx_orders_tenant_number,priority:2"`
	CustomerID  uuid.UUID           `json:"customerId" db:"customer_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID           `json:"productId" db:"product_id" gorm:"type:uuid;not null;index"`
	VariantID   *uuid.UUID          `json:"variantId,omitempty" db:"variant_id" gorm:"type:uuid"`
	Quantity    int                 `json:"quantity" db:"quantity" gorm:"not null;default:1"`
	UnitPrice   decimal.NullDecimal `json:"unitPrice" db:"unit_price" gorm:"type:numeric(12,2)"`
	Total       decimal.NullDecimal `json:"total" db:"total" gorm:"type:numeric(12,2)"`
	Status      string              `json:"status" db:"status" gorm:"type:text;not null;default:'pending'"`
	Notes       string              `json:"notes" db:"notes" gorm:"type:text;not null;default:''"`

	// CustomerData is only read while the order is created.
	CustomerData *CustomerData `json:"customerData,omitempty" gorm:"-"`
	Customer     *Customer     `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:ID"`
}

// CustomerData is the transient buyer payload submitted with a new order.
type CustomerData struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
}

// Reference renders the order number the way it is shown to customers.
func (o *Order) Reference() string {
	return fmt.Sprintf("ORD-%06d", o.OrderNumber)
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}
