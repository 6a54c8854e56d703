package models

// Tenant is one business (salon) using the platform.
type Tenant struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	Users    []User    `gorm:"foreignKey:TenantID" json:"-"`
	Services []Service `gorm:"foreignKey:TenantID" json:"-"`
	Stylists []Stylist `gorm:"foreignKey:TenantID" json:"-"`
}
