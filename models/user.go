package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/utils"
)

type User struct {
	Base
	TenantID uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null" json:"name"`
	Phone    string    `gorm:"index" json:"phone"`

	// customer, stylist, manager or admin
	Role string `gorm:"type:varchar(20);not null" json:"role"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`

	LastLogin *time.Time `json:"lastLogin"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
}

// Hashes the password before the first insert.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if err = u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

func (u *User) IsStaff() bool {
	return u.Role == utils.RoleStylist || u.Role == utils.RoleManager || u.Role == utils.RoleAdmin
}
