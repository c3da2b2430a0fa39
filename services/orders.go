package services

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

const orderNumberMaxTries = 5

// OrderService creates orders from site submissions and links them to a
// customer record deduplicated by email.
type OrderService struct {
	products  ProductStore
	variants  VariantStore
	customers CustomerStore
	orders    OrderStore
	notifier  Notifier
	logger    zerolog.Logger

	// newBackOff paces retries after an order number collision.
	newBackOff func() backoff.BackOff
}

func NewOrderService(products ProductStore, variants VariantStore, customers CustomerStore, orders OrderStore, notifier Notifier) *OrderService {
	return &OrderService{
		products:  products,
		variants:  variants,
		customers: customers,
		orders:    orders,
		notifier:  notifier,
		logger:    log.With().Str("service", "orders").Logger(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 25 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			return b
		},
	}
}

// Create validates the order, resolves its customer, snapshots the price and
// stores it under the next order number of the tenant.
func (s *OrderService) Create(ctx context.Context, tenant *models.Tenant, order *models.Order) (*models.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	product, err := s.orderableProduct(ctx, tenant.ID, order.ProductID)
	if err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, tenant.ID, order.CustomerData)
	if err != nil {
		return nil, err
	}

	order.ID = uuid.Nil
	order.TenantID = tenant.ID
	order.CustomerID = customer.ID
	order.CustomerData = nil
	order.Status = models.OrderStatusPending

	unit, ok := s.unitPrice(ctx, tenant.ID, product, order)
	if ok {
		order.UnitPrice = decimal.NewNullDecimal(unit)
		order.Total = decimal.NewNullDecimal(unit.Mul(decimal.NewFromInt(int64(order.Quantity))))
	} else {
		order.UnitPrice = decimal.NullDecimal{}
		order.Total = decimal.NullDecimal{}
	}

	if err := s.insertWithNextNumber(ctx, order); err != nil {
		return nil, err
	}

	if err := s.customers.IncrementOrderCount(ctx, tenant.ID, customer.ID); err != nil {
		s.logger.Warn().Err(err).Str("customerId", customer.ID.String()).Msg("Failed to increment customer order count")
	} else {
		customer.OrderCount++
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyOrder(ctx, tenant, order, customer); err != nil {
			s.logger.Warn().Err(err).Str("order", order.Reference()).Msg("Order notification incomplete")
		}
	}

	order.Customer = customer
	s.logger.Info().
		Str("tenant", tenant.Slug).
		Str("order", order.Reference()).
		Str("customerId", customer.ID.String()).
		Msg("Order created")
	return order, nil
}

func validateOrder(order *models.Order) error {
	if order.ProductID == uuid.Nil {
		return errs.NewMissingRequiredFieldError("productId")
	}
	if order.Quantity == 0 {
		order.Quantity = 1
	}
	if order.Quantity < 1 {
		return errs.NewInvalidQuantityError(order.Quantity)
	}
	if order.CustomerData == nil || strings.TrimSpace(order.CustomerData.Email) == "" {
		return errs.NewMissingRequiredFieldError("customerData.email")
	}
	if !validEmail(strings.TrimSpace(order.CustomerData.Email)) {
		return errs.NewInvalidFieldError("customerData.email", "not a valid email address")
	}
	return nil
}

// resolveCustomer returns the tenant's customer for the email, creating it when
// absent. A concurrent insert of the same email is resolved by reading the winner.
func (s *OrderService) resolveCustomer(ctx context.Context, tenantID uuid.UUID, data *models.CustomerData) (*models.Customer, error) {
	email := normalizeEmail(data.Email)

	existing, err := s.customers.FindByEmail(ctx, tenantID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	customer := &models.Customer{
		TenantID: tenantID,
		Email:    email,
		Name:     name,
		Phone:    data.Phone,
	}
	if err := s.customers.Add(ctx, customer); err != nil {
		if errs.IsAlreadyExists(err) {
			winner, findErr := s.customers.FindByEmail(ctx, tenantID, email)
			if findErr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, errs.NewCustomerCreateError(email, err)
	}
	return customer, nil
}

// orderableProduct loads the ordered product, which must belong to the tenant
// and be active.
func (s *OrderService) orderableProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewProductUnavailableError(productID.String())
		}
		return nil, err
	}
	if product.Status != models.ProductStatusActive {
		return nil, errs.NewProductUnavailableError(productID.String())
	}
	return product, nil
}

// unitPrice prefers the variant's price override and falls back to the
// product price. It reports false when no price is available. A variant that
// is not one of the product's variants in this tenant is dropped from the order.
func (s *OrderService) unitPrice(ctx context.Context, tenantID uuid.UUID, product *models.Product, order *models.Order) (decimal.Decimal, bool) {
	if order.VariantID != nil && *order.VariantID != uuid.Nil {
		variant, err := s.variants.FindByID(ctx, tenantID, *order.VariantID)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("variantId", order.VariantID.String()).Msg("Could not load variant, ignoring it")
			order.VariantID = nil
		case variant.ProductID != product.ID:
			s.logger.Warn().Str("variantId", order.VariantID.String()).Msg("Variant belongs to another product, ignoring it")
			order.VariantID = nil
		case variant.Price.Valid:
			return variant.Price.Decimal, true
		}
	} else {
		order.VariantID = nil
	}

	if !product.Price.Valid {
		s.logger.Warn().Str("productId", product.ID.String()).Msg("Product has no price, order total left empty")
		return decimal.Decimal{}, false
	}
	return product.Price.Decimal, true
}

// insertWithNextNumber assigns latest+1 and inserts, retrying when another
// request took the same number first.
func (s *OrderService) insertWithNextNumber(ctx context.Context, order *models.Order) error {
	_, err := backoff.Retry(ctx, func() (int, error) {
		latest, err := s.orders.LatestNumber(ctx, order.TenantID)
		if err != nil {
			return 0, backoff.Permanent(err)
		}
		order.OrderNumber = latest + 1
		if err := s.orders.Add(ctx, order); err != nil {
			if errs.IsAlreadyExists(err) {
				s.logger.Debug().Int("orderNumber", order.OrderNumber).Msg("Order number taken, retrying")
				order.ID = uuid.Nil
				return 0, err
			}
			return 0, backoff.Permanent(err)
		}
		return order.OrderNumber, nil
	}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(orderNumberMaxTries))
	return err
}
