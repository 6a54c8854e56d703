package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/models"
)

// LoadSettings returns the tenant's settings, or the defaults when the tenant
// has none stored.
func LoadSettings(db *gorm.DB, tenantID uuid.UUID) (models.Settings, error) {
	var s models.Settings
	err := db.Where("tenant_id = ?", tenantID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(tenantID, ""), nil
	}
	return s, err
}

// AddLoyaltyPoints credits points, records the transaction and recomputes the
// tier. Run it inside the caller's transaction.
func AddLoyaltyPoints(tx *gorm.DB, customer *models.Customer, cfg models.LoyaltyConfig, points int, kind, reason string, appointmentID *uuid.UUID) (*models.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrInvalidInput)
	}

	tiers := cfg
	if len(tiers.Tiers) == 0 {
		tiers.Tiers = models.DefaultLoyaltyTiers()
	}

	customer.LoyaltyPoints += points
	customer.LoyaltyTier = tiers.TierFor(customer.LoyaltyPoints)

	if err := tx.Model(customer).Updates(map[string]interface{}{
		"loyalty_points": customer.LoyaltyPoints,
		"loyalty_tier":   customer.LoyaltyTier,
	}).Error; err != nil {
		return nil, fmt.Errorf("update customer points: %w", err)
	}

	entry := &models.LoyaltyTransaction{
		TenantID:      customer.TenantID,
		CustomerID:    customer.ID,
		AppointmentID: appointmentID,
		Points:        points,
		Type:          kind,
		Reason:        reason,
		BalanceAfter:  customer.LoyaltyPoints,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("record loyalty transaction: %w", err)
	}
	return entry, nil
}
