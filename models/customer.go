package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Base
	TenantID        uuid.UUID  `gorm:"type:uuid;index:idx_customer_tenant_phone,priority:1;not null" json:"tenantId"`
	UserID          *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"createdByUserId,omitempty"`

	Name        string     `gorm:"not null" json:"name"`
	Phone       string     `gorm:"not null;index:idx_customer_tenant_phone,priority:2" json:"phone"`
	Email       string     `gorm:"index" json:"email"`
	Birthday    *time.Time `json:"birthday"`
	Anniversary *time.Time `json:"anniversary"`
	Notes       string     `json:"notes"`

	TotalVisits     int        `gorm:"default:0" json:"totalVisits"`
	TotalSpentCents int64      `gorm:"default:0" json:"totalSpent"`
	LastVisit       *time.Time `json:"lastVisit"`

	LoyaltyPoints int    `gorm:"default:0" json:"loyaltyPoints"`
	LoyaltyTier   string `gorm:"type:varchar(20);default:'Bronze'" json:"loyaltyTier"`

	IsActive bool `gorm:"default:true" json:"isActive"`
}

const (
	LoyaltyEarned   = "earned"
	LoyaltyAdjusted = "adjusted"
)

// LoyaltyTransaction is one change to a customer's points balance.
type LoyaltyTransaction struct {
	Base
	TenantID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	AppointmentID *uuid.UUID `gorm:"type:uuid" json:"appointmentId,omitempty"`
	Points        int        `gorm:"not null" json:"points"`
	Type          string     `gorm:"type:varchar(20);not null" json:"type"`
	Reason        string     `json:"reason"`
	BalanceAfter  int        `json:"balanceAfter"`
}
