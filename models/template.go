package models

import (
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// EditorTemplate is a saved page-builder layout.
type EditorTemplate struct {
	Base
	TenantID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	Name        string     `gorm:"not null" json:"name"`
	Category    string     `gorm:"index" json:"category"`
	Description string     `json:"description"`
	Tags        StringList `json:"tags"`
	Layout      RawJSON    `json:"layout"`
	IsPublic    bool       `json:"isPublic"`
	UsageCount  int        `gorm:"default:0" json:"usageCount"`
	Rating      float64    `gorm:"default:0" json:"rating"`
	RatingCount int        `gorm:"default:0" json:"ratingCount"`

	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"createdByUserId,omitempty"`

	ComponentCount int64 `gorm:"-" json:"componentCount"`
}

func (t *EditorTemplate) AfterFind(tx *gorm.DB) error {
	t.ComponentCount = gjson.GetBytes(t.Layout, "components.#").Int()
	return nil
}

func (t *EditorTemplate) AfterSave(tx *gorm.DB) error {
	return t.AfterFind(tx)
}
