// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"

	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

type ReminderLog struct {
	Base
	TenantID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	TemplateID    *uuid.UUID `gorm:"type:uuid;index" json:"templateId,omitempty"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointmentId,omitempty"`
	Type          string     `gorm:"type:varchar(30)" json:"type"`
	Message       string     `gorm:"type:text" json:"message"`
	Status        string     `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage  string     `gorm:"type:text" json:"errorMessage,omitempty"`
	Channel       string     `gorm:"type:varchar(20)" json:"channel"` // sms, email
	SentAt        time.Time  `json:"sentAt"`
}
