package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/utils"
)

// AdjustStock changes a product's stock by delta and records the movement.
// Stock never goes below zero. Run it inside the caller's transaction.
func AdjustStock(tx *gorm.DB, product *models.Product, delta int, reason string, orderID, actor *uuid.UUID) (*models.StockMovement, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrInvalidInput)
	}
	next := product.CurrentStock + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: %s has %d in stock", ErrInsufficientStock, product.SKU, product.CurrentStock)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND current_stock = ?", product.ID, product.CurrentStock).
		Update("current_stock", next)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: stock for %s changed concurrently", ErrInsufficientStock, product.SKU)
	}
	product.CurrentStock = next
	product.Derive()

	mv := &models.StockMovement{
		TenantID:        product.TenantID,
		ProductID:       product.ID,
		Delta:           delta,
		StockAfter:      next,
		Reason:          reason,
		OrderID:         orderID,
		CreatedByUserID: actor,
	}
	if err := tx.Create(mv).Error; err != nil {
		return nil, err
	}
	return mv, nil
}

type OrderService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{db: db, notifier: notifier, now: time.Now}
}

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	CustomerID     uuid.UUID
	Items          []OrderItemInput
	ShippingMethod string
	Address        string
	PaymentMethod  string
	DiscountCents  int64
	Notes          string
}

// Create prices the order from current product prices and decrements stock
// in the same transaction.
func (s *OrderService) Create(ctx context.Context, actor utils.Session, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	switch in.ShippingMethod {
	case "":
		in.ShippingMethod = models.ShippingPickup
	case models.ShippingPickup, models.ShippingStandard, models.ShippingExpress:
	default:
		return nil, fmt.Errorf("%w: unknown shipping method %q", ErrInvalidInput, in.ShippingMethod)
	}
	if in.ShippingMethod != models.ShippingPickup && in.Address == "" {
		return nil, fmt.Errorf("%w: shipping address is required", ErrInvalidInput)
	}

	db := s.db.WithContext(ctx)
	customer, err := s.customerFor(db, actor, in.CustomerID)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(db, actor.TenantID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		TenantID:        actor.TenantID,
		OrderNumber:     models.NewOrderNumber(s.now()),
		CustomerID:      customer.ID,
		Status:          models.OrderPending,
		Payment:         models.PaymentInfo{Method: in.PaymentMethod, Status: models.PaymentPending},
		Shipping:        models.ShippingInfo{Method: in.ShippingMethod, Address: in.Address},
		Notes:           in.Notes,
		CreatedByUserID: &actor.UserID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		lines := make([]OrderLine, 0, len(in.Items))
		products := make([]*models.Product, 0, len(in.Items))
		// lines naming the same product share one copy so stock guards stay current
		loaded := make(map[uuid.UUID]*models.Product, len(in.Items))
		for _, item := range in.Items {
			if item.Quantity < 1 {
				return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
			}
			p, ok := loaded[item.ProductID]
			if !ok {
				p = &models.Product{}
				if err := tx.Where("tenant_id = ? AND id = ?", actor.TenantID, item.ProductID).First(p).Error; err != nil {
					return notFound(err, "product")
				}
				if !p.IsActive {
					return fmt.Errorf("%w: product %s", ErrInactiveReference, p.SKU)
				}
				loaded[item.ProductID] = p
			}
			lines = append(lines, OrderLine{UnitPriceCents: p.PriceCents, Quantity: item.Quantity})
			products = append(products, p)
		}

		totals := ComputeOrderTotals(lines, settings.TaxRate, in.ShippingMethod, ShippingRates{
			FlatCents:          settings.ShippingFlatCents,
			FreeThresholdCents: settings.FreeShippingThresholdCents,
		}, in.DiscountCents)
		order.SubtotalCents = totals.Subtotal
		order.TaxCents = totals.Tax
		order.ShippingCents = totals.Shipping
		order.DiscountCents = totals.Discount
		order.TotalCents = totals.Total

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i, p := range products {
			item := models.OrderItem{
				OrderID:        order.ID,
				ProductID:      p.ID,
				ProductName:    p.Name,
				SKU:            p.SKU,
				Quantity:       lines[i].Quantity,
				UnitPriceCents: lines[i].UnitPriceCents,
				TotalCents:     lines[i].UnitPriceCents * int64(lines[i].Quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, item)
			if _, err := AdjustStock(tx, p, -lines[i].Quantity, "order "+order.OrderNumber, &order.ID, &actor.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Customer = customer
	if settings.Notifications.Email {
		notifyEmail(ctx, s.notifier, customer.Email, "Order "+order.OrderNumber+" received",
			fmt.Sprintf("Hi %s,\n\nThanks for your order %s. Total: %s\n", customer.Name, order.OrderNumber, FormatCents(order.TotalCents)))
	}
	return order, nil
}

func (s *OrderService) customerFor(db *gorm.DB, actor utils.Session, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if actor.Role == utils.RoleCustomer {
		if err := db.Where("tenant_id = ? AND user_id = ?", actor.TenantID, actor.UserID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: no customer profile for this account", ErrForbidden)
			}
			return nil, err
		}
		if customerID != uuid.Nil && customerID != customer.ID {
			return nil, fmt.Errorf("%w: customers can only order for themselves", ErrForbidden)
		}
		return &customer, nil
	}
	if err := db.Where("tenant_id = ? AND id = ?", actor.TenantID, customerID).First(&customer).Error; err != nil {
		return nil, notFound(err, "customer")
	}
	return &customer, nil
}

// Get returns the order, hiding other customers' orders from customers.
func (s *OrderService) Get(ctx context.Context, actor utils.Session, id uuid.UUID) (*models.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items").Preload("Customer").
		Where("orders.tenant_id = ? AND orders.id = ?", actor.TenantID, id)
	if actor.Role == utils.RoleCustomer {
		q = q.Where("orders.customer_id IN (?)",
			s.db.Model(&models.Customer{}).Select("id").Where("user_id = ?", actor.UserID))
	}
	var order models.Order
	if err := q.First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

// ChangeStatus follows the order lifecycle; cancelling restocks every item.
func (s *OrderService) ChangeStatus(ctx context.Context, actor utils.Session, id uuid.UUID, to, tracking string) (*models.Order, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionOrder(order.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}
	from := order.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to}
		if tracking != "" {
			updates["shipping_tracking_number"] = tracking
		}
		if to == models.OrderRefunded {
			updates["payment_status"] = models.PaymentRefunded
		}
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		if to != models.OrderCancelled {
			return nil
		}
		for _, item := range order.Items {
			var p models.Product
			if err := tx.First(&p, "id = ?", item.ProductID).Error; err != nil {
				return err
			}
			if _, err := AdjustStock(tx, &p, item.Quantity, "order "+order.OrderNumber+" cancelled", &order.ID, &actor.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Status = to
	if tracking != "" {
		order.Shipping.TrackingNumber = tracking
	}
	if to == models.OrderRefunded {
		order.Payment.Status = models.PaymentRefunded
	}
	return order, nil
}

func (s *OrderService) UpdatePayment(ctx context.Context, actor utils.Session, id uuid.UUID, status, transactionID string) (*models.Order, error) {
	switch status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentRefunded:
	default:
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"payment_status": status}
	if transactionID != "" {
		updates["payment_transaction_id"] = transactionID
		order.Payment.TransactionID = transactionID
	}
	if status == models.PaymentPaid {
		now := s.now().UTC()
		updates["payment_paid_at"] = now
		order.Payment.PaidAt = &now
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	order.Payment.Status = status
	return order, nil
}

// FormatCents renders minor units as a plain amount, e.g. 1234 -> "12.34".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
