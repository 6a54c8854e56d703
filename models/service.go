package models

import (
	"github.com/google/uuid"
)

type Service struct {
	Base
	TenantID    uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `gorm:"not null" json:"price"`
	Duration    int       `gorm:"not null" json:"duration"` // in minutes
	Category    string    `gorm:"default:'General'" json:"category"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
}
