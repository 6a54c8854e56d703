package models

import "github.com/google/uuid"

type Media struct {
	Base
	TenantID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	FileName   string     `gorm:"not null" json:"fileName"`
	StoredName string     `gorm:"not null" json:"-"`
	MimeType   string     `gorm:"not null" json:"mimeType"`
	Size       int64      `json:"size"`
	Alt        string     `json:"alt"`
	URL        string     `json:"url"`
	UploadedBy *uuid.UUID `gorm:"type:uuid" json:"uploadedBy,omitempty"`
}
