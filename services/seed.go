package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/utils"
)

// SeedFile is the fixtures format read by the seed command.
type SeedFile struct {
	Tenant struct {
		Name  string `yaml:"name"`
		Slug  string `yaml:"slug"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
	} `yaml:"tenant"`
	Admin struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	AutoConfirm bool `yaml:"autoConfirm"`
	Services    []struct {
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Price    int64  `yaml:"price"`
		Duration int    `yaml:"duration"`
	} `yaml:"services"`
	Stylists []struct {
		Name            string              `yaml:"name"`
		Email           string              `yaml:"email"`
		Password        string              `yaml:"password"`
		Role            string              `yaml:"role"`
		Specializations []string            `yaml:"specializations"`
		HourlyRate      int64               `yaml:"hourlyRate"`
		CommissionRate  string              `yaml:"commissionRate"`
		WorkingHours    models.WorkingHours `yaml:"workingHours"`
	} `yaml:"stylists"`
	Products []struct {
		SKU      string `yaml:"sku"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Price    int64  `yaml:"price"`
		Stock    int    `yaml:"stock"`
		MinStock int    `yaml:"minStock"`
	} `yaml:"products"`
}

func LoadSeed(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if f.Tenant.Name == "" || f.Admin.Email == "" || f.Admin.Password == "" {
		return nil, fmt.Errorf("%w: tenant.name, admin.email and admin.password are required", ErrInvalidInput)
	}
	if f.Tenant.Slug == "" {
		f.Tenant.Slug = Slugify(f.Tenant.Name)
	}
	return &f, nil
}

// ApplySeed creates the tenant and everything under it in one transaction.
func ApplySeed(db *gorm.DB, f *SeedFile) (*models.Tenant, error) {
	tenant := &models.Tenant{Name: f.Tenant.Name, Slug: f.Tenant.Slug, Email: f.Tenant.Email, Phone: f.Tenant.Phone, IsActive: true}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		settings := models.DefaultSettings(tenant.ID, tenant.Name)
		settings.Email, settings.Phone = f.Tenant.Email, f.Tenant.Phone
		settings.AutoConfirmAppointments = f.AutoConfirm
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		admin := models.User{TenantID: tenant.ID, Name: f.Admin.Name, Email: strings.ToLower(f.Admin.Email), Password: f.Admin.Password, Role: utils.RoleAdmin, IsActive: true}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		for _, sv := range f.Services {
			svc := models.Service{TenantID: tenant.ID, Name: sv.Name, Category: sv.Category, PriceCents: sv.Price, Duration: sv.Duration, IsActive: true}
			if err := tx.Create(&svc).Error; err != nil {
				return fmt.Errorf("create service %s: %w", sv.Name, err)
			}
		}

		for _, st := range f.Stylists {
			role := st.Role
			if role == "" {
				role = utils.RoleStylist
			}
			user := models.User{TenantID: tenant.ID, Name: st.Name, Email: strings.ToLower(st.Email), Password: st.Password, Role: role, IsActive: true}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create stylist user %s: %w", st.Email, err)
			}
			rate := decimal.Zero
			if st.CommissionRate != "" {
				var err error
				if rate, err = decimal.NewFromString(st.CommissionRate); err != nil {
					return fmt.Errorf("stylist %s commissionRate: %w", st.Email, err)
				}
			}
			stylist := models.Stylist{
				TenantID:        tenant.ID,
				UserID:          user.ID,
				Specializations: st.Specializations,
				WorkingHours:    st.WorkingHours,
				HourlyRateCents: st.HourlyRate,
				CommissionRate:  rate,
				IsActive:        true,
			}
			if err := tx.Create(&stylist).Error; err != nil {
				return fmt.Errorf("create stylist %s: %w", st.Email, err)
			}
		}

		for _, pr := range f.Products {
			sku, ok := utils.NormalizeSKU(pr.SKU)
			if !ok {
				return fmt.Errorf("%w: bad sku %q", ErrInvalidInput, pr.SKU)
			}
			p := models.Product{TenantID: tenant.ID, SKU: sku, Name: pr.Name, Category: pr.Category, PriceCents: pr.Price, CurrentStock: pr.Stock, MinStock: pr.MinStock, IsActive: true}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create product %s: %w", sku, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// Slugify lowercases and joins words with dashes, adding a short suffix so
// two businesses with the same name still get distinct slugs.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "business"
	}
	return slug + "-" + uuid.NewString()[:6]
}
