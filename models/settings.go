package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type LoyaltyTier struct {
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
}

type LoyaltyConfig struct {
	PointsPerBooking      int           `json:"pointsPerBooking"`
	PointsPerCurrencyUnit int           `json:"pointsPerCurrencyUnit"`
	Tiers                 []LoyaltyTier `json:"tiers"`
}

func (l LoyaltyConfig) Value() (driver.Value, error) {
	return jsonValue(l)
}

func (l *LoyaltyConfig) Scan(value interface{}) error {
	return jsonScan(value, l)
}

func (LoyaltyConfig) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// TierFor returns the highest tier whose threshold the balance reaches.
func (l LoyaltyConfig) TierFor(points int) string {
	tier := ""
	best := -1
	for _, t := range l.Tiers {
		if points >= t.MinPoints && t.MinPoints > best {
			tier, best = t.Name, t.MinPoints
		}
	}
	return tier
}

func DefaultLoyaltyTiers() []LoyaltyTier {
	return []LoyaltyTier{
		{Name: "Bronze", MinPoints: 0},
		{Name: "Silver", MinPoints: 500},
		{Name: "Gold", MinPoints: 1500},
		{Name: "Platinum", MinPoints: 3000},
	}
}

type NotificationSettings struct {
	Email          bool `gorm:"default:true" json:"email"`
	SMS            bool `gorm:"default:false" json:"sms"`
	Reminders      bool `gorm:"default:true" json:"reminders"`
	LowStockAlerts bool `gorm:"default:true" json:"lowStockAlerts"`
}

// Settings holds one tenant's business configuration.
type Settings struct {
	Base
	TenantID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tenantId"`
	BusinessName string    `gorm:"not null" json:"businessName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Timezone     string    `gorm:"default:'UTC'" json:"timezone"`
	Currency     string    `gorm:"type:varchar(3);default:'USD'" json:"currency"`

	BusinessHours           WorkingHours `json:"businessHours"`
	AutoConfirmAppointments bool         `json:"autoConfirmAppointments"`
	BookingLeadMinutes      int          `json:"bookingLeadMinutes"`

	TaxRate                    decimal.Decimal `gorm:"type:numeric(6,4)" json:"taxRate"`
	ShippingFlatCents          int64           `json:"shippingFlatRate"`
	FreeShippingThresholdCents int64           `json:"freeShippingThreshold"`

	Loyalty       LoyaltyConfig        `json:"loyalty"`
	Notifications NotificationSettings `gorm:"embedded;embeddedPrefix:notify_" json:"notifications"`
	Features      JSONB                `json:"features"`
	Integrations  JSONB                `json:"integrations"`
}

// DefaultSettings is what a newly registered business starts with.
func DefaultSettings(tenantID uuid.UUID, businessName string) Settings {
	return Settings{
		TenantID:                   tenantID,
		BusinessName:               businessName,
		Timezone:                   "UTC",
		Currency:                   "USD",
		BusinessHours:              DefaultBusinessHours(),
		BookingLeadMinutes:         0,
		TaxRate:                    decimal.RequireFromString("0.08"),
		ShippingFlatCents:          999,
		FreeShippingThresholdCents: 5000,
		Loyalty: LoyaltyConfig{
			PointsPerBooking:      100,
			PointsPerCurrencyUnit: 1,
			Tiers:                 DefaultLoyaltyTiers(),
		},
		Notifications: NotificationSettings{Email: true, Reminders: true, LowStockAlerts: true},
		Features:      JSONB{"onlineBooking": true, "shop": true, "loyalty": true},
		Integrations:  JSONB{},
	}
}

// PublicSettings is the unauthenticated view of Settings.
type PublicSettings struct {
	BusinessName  string       `json:"businessName"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	Timezone      string       `json:"timezone"`
	Currency      string       `json:"currency"`
	BusinessHours WorkingHours `json:"businessHours"`
	Features      JSONB        `json:"features"`
}

func (s *Settings) Public() PublicSettings {
	return PublicSettings{
		BusinessName:  s.BusinessName,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		Timezone:      s.Timezone,
		Currency:      s.Currency,
		BusinessHours: s.BusinessHours,
		Features:      s.Features,
	}
}
