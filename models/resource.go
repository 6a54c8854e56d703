package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ResourceStaff     = "staff"
	ResourceRoom      = "room"
	ResourceEquipment = "equipment"
)

// Resource is a bookable room or piece of equipment.
type Resource struct {
	Base
	TenantID    uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	DeactivatedAt      *time.Time `json:"deactivatedAt,omitempty"`
	DeactivationReason string     `json:"deactivationReason,omitempty"`
}

const (
	ResourceActionDeactivated = "deactivated"
	ResourceActionReactivated = "reactivated"
)

// ResourceLog audits a deactivation or reactivation sweep.
type ResourceLog struct {
	Base
	TenantID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	ResourceType  string     `gorm:"type:varchar(20);not null" json:"resourceType"`
	ResourceID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"resourceId"`
	Action        string     `gorm:"type:varchar(20);not null" json:"action"`
	Reason        string     `json:"reason"`
	AffectedCount int        `json:"affectedCount"`
	FailedCount   int        `json:"failedCount"`
	PerformedBy   *uuid.UUID `gorm:"type:uuid" json:"performedBy,omitempty"`
}
