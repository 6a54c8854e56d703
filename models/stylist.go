package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stylist is the staff profile linked to a stylist or manager user.
type Stylist struct {
	Base
	TenantID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenantId"`
	UserID          uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bio             string          `json:"bio"`
	Specializations StringList      `json:"specializations"`
	WorkingHours    WorkingHours    `json:"workingHours"`
	HourlyRateCents int64           `gorm:"default:0" json:"hourlyRate"`
	CommissionRate  decimal.Decimal `gorm:"type:numeric(5,4);default:0" json:"commissionRate"`
	IsActive        bool            `gorm:"default:true" json:"isActive"`

	DeactivatedAt      *time.Time `json:"deactivatedAt,omitempty"`
	DeactivationReason string     `json:"deactivationReason,omitempty"`
}
