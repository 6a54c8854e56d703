package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

const (
	ShippingPickup   = "pickup"
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

var orderTransitions = map[string][]string{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {OrderRefunded},
}

func CanTransitionOrder(from, to string) bool {
	return slices.Contains(orderTransitions[from], to)
}

type PaymentInfo struct {
	Method        string     `json:"method"`
	Status        string     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type ShippingInfo struct {
	Method         string `gorm:"type:varchar(20)" json:"method"`
	Address        string `json:"address"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type Order struct {
	Base
	TenantID    uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	OrderNumber string    `gorm:"index;not null" json:"orderNumber"`
	CustomerID  uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer    *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	SubtotalCents int64 `gorm:"not null" json:"subtotal"`
	TaxCents      int64 `gorm:"default:0" json:"tax"`
	ShippingCents int64 `gorm:"default:0" json:"shipping"`
	DiscountCents int64 `gorm:"default:0" json:"discount"`
	TotalCents    int64 `gorm:"not null" json:"total"`

	Status   string       `gorm:"type:varchar(20);index;not null" json:"status"`
	Payment  PaymentInfo  `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Shipping ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Notes    string       `json:"notes"`

	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"createdByUserId,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// NewOrderNumber formats ORD-YYYYMMDD-XXXX.
func NewOrderNumber(at time.Time) string {
	return "ORD-" + at.UTC().Format("20060102") + "-" + shortCode()
}

type OrderItem struct {
	Base
	OrderID        uuid.UUID `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID      uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	ProductName    string    `gorm:"not null" json:"productName"`
	SKU            string    `json:"sku"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null" json:"unitPrice"`
	TotalCents     int64     `gorm:"not null" json:"total"`
}
