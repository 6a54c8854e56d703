package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockIn  = "in_stock"
)

type Product struct {
	Base
	TenantID     uuid.UUID `gorm:"type:uuid;index:idx_product_tenant_sku,priority:1;not null" json:"tenantId"`
	SKU          string    `gorm:"index:idx_product_tenant_sku,priority:2;not null" json:"sku"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand"`
	PriceCents   int64     `gorm:"not null" json:"price"`
	CostCents    int64     `gorm:"default:0" json:"cost"`
	CurrentStock int       `gorm:"default:0" json:"currentStock"`
	MinStock     int       `gorm:"default:0" json:"minStock"`
	MaxStock     int       `gorm:"default:0" json:"maxStock"`
	Supplier     string    `json:"supplier"`
	Location     string    `json:"location"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`

	Low    bool   `gorm:"-" json:"lowStock"`
	Out    bool   `gorm:"-" json:"outOfStock"`
	Status string `gorm:"-" json:"stockStatus"`
}

func (p *Product) LowStock() bool {
	return p.CurrentStock <= p.MinStock
}

func (p *Product) OutOfStock() bool {
	return p.CurrentStock == 0
}

// StockStatus gives out_of_stock precedence over low_stock.
func (p *Product) StockStatus() string {
	switch {
	case p.OutOfStock():
		return StockOut
	case p.LowStock():
		return StockLow
	}
	return StockIn
}

// Derive fills the computed stock fields.
func (p *Product) Derive() {
	p.Low = p.LowStock()
	p.Out = p.OutOfStock()
	p.Status = p.StockStatus()
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Derive()
	return nil
}

func (p *Product) AfterSave(tx *gorm.DB) error {
	p.Derive()
	return nil
}

// StockMovement records one stock adjustment.
type StockMovement struct {
	Base
	TenantID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	ProductID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"productId"`
	Delta           int        `gorm:"not null" json:"delta"`
	StockAfter      int        `json:"stockAfter"`
	Reason          string     `json:"reason"`
	OrderID         *uuid.UUID `gorm:"type:uuid" json:"orderId,omitempty"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"createdByUserId,omitempty"`
}
