package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

// Every field is optional; only the ones sent are changed.
type UpdateSettingsInput struct {
	BusinessName            *string                      `json:"businessName" binding:"omitempty,min=1"`
	Email                   *string                      `json:"email" binding:"omitempty,email"`
	Phone                   *string                      `json:"phone"`
	Address                 *string                      `json:"address"`
	Timezone                *string                      `json:"timezone"`
	Currency                *string                      `json:"currency" binding:"omitempty,len=3"`
	BusinessHours           *models.WorkingHours         `json:"businessHours"`
	AutoConfirmAppointments *bool                        `json:"autoConfirmAppointments"`
	BookingLeadMinutes      *int                         `json:"bookingLeadMinutes" binding:"omitempty,min=0,max=10080"`
	TaxRate                 *decimal.Decimal             `json:"taxRate"`
	ShippingFlatRate        *int64                       `json:"shippingFlatRate" binding:"omitempty,min=0"`
	FreeShippingThreshold   *int64                       `json:"freeShippingThreshold" binding:"omitempty,min=0"`
	Loyalty                 *models.LoyaltyConfig        `json:"loyalty"`
	Notifications           *models.NotificationSettings `json:"notifications"`
	Features                models.JSONB                 `json:"features"`
	Integrations            models.JSONB                 `json:"integrations"`
}

func validateLoyalty(l models.LoyaltyConfig) *utils.FieldError {
	if l.PointsPerBooking < 0 || l.PointsPerCurrencyUnit < 0 {
		return &utils.FieldError{Field: "loyalty", Message: "points cannot be negative"}
	}
	if len(l.Tiers) == 0 {
		return &utils.FieldError{Field: "loyalty.tiers", Message: "at least one tier is required"}
	}
	seen := map[string]bool{}
	hasBase := false
	for _, t := range l.Tiers {
		if t.Name == "" || seen[t.Name] {
			return &utils.FieldError{Field: "loyalty.tiers", Message: "tier names must be unique and non-empty"}
		}
		seen[t.Name] = true
		if t.MinPoints < 0 {
			return &utils.FieldError{Field: "loyalty.tiers", Message: "minPoints cannot be negative"}
		}
		if t.MinPoints == 0 {
			hasBase = true
		}
	}
	if !hasBase {
		return &utils.FieldError{Field: "loyalty.tiers", Message: "one tier must start at 0 points"}
	}
	return nil
}

func GetSettings(c *gin.Context) {
	session := utils.MustSession(c)
	settings, err := services.LoadSettings(config.DB, session.TenantID)
	if err != nil {
		utils.RespondInternal(c, "Failed to load settings", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Settings retrieved", settings)
}

func UpdateSettings(c *gin.Context) {
	session := utils.MustSession(c)

	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	settings, err := services.LoadSettings(config.DB, session.TenantID)
	if err != nil {
		utils.RespondInternal(c, "Failed to load settings", err)
		return
	}

	var problems []utils.FieldError
	if input.BusinessName != nil {
		settings.BusinessName = *input.BusinessName
	}
	if input.Email != nil {
		settings.Email = *input.Email
	}
	if input.Phone != nil {
		phone := utils.NormalizePhone(*input.Phone)
		if phone != "" && !utils.ValidatePhone(phone) {
			problems = append(problems, utils.FieldError{Field: "phone", Message: "invalid phone number"})
		}
		settings.Phone = phone
	}
	if input.Address != nil {
		settings.Address = *input.Address
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			problems = append(problems, utils.FieldError{Field: "timezone", Message: "unknown time zone"})
		}
		settings.Timezone = *input.Timezone
	}
	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if input.BusinessHours != nil {
		if err := input.BusinessHours.Validate(); err != nil {
			problems = append(problems, utils.FieldError{Field: "businessHours", Message: err.Error()})
		}
		settings.BusinessHours = *input.BusinessHours
	}
	if input.AutoConfirmAppointments != nil {
		settings.AutoConfirmAppointments = *input.AutoConfirmAppointments
	}
	if input.BookingLeadMinutes != nil {
		settings.BookingLeadMinutes = *input.BookingLeadMinutes
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
			problems = append(problems, utils.FieldError{Field: "taxRate", Message: "must be between 0 and 1"})
		}
		settings.TaxRate = *input.TaxRate
	}
	if input.ShippingFlatRate != nil {
		settings.ShippingFlatCents = *input.ShippingFlatRate
	}
	if input.FreeShippingThreshold != nil {
		settings.FreeShippingThresholdCents = *input.FreeShippingThreshold
	}
	if input.Loyalty != nil {
		if fe := validateLoyalty(*input.Loyalty); fe != nil {
			problems = append(problems, *fe)
		}
		settings.Loyalty = *input.Loyalty
	}
	if input.Notifications != nil {
		settings.Notifications = *input.Notifications
	}
	if input.Features != nil {
		if settings.Features == nil {
			settings.Features = models.JSONB{}
		}
		for k, v := range input.Features {
			settings.Features[k] = v
		}
	}
	if input.Integrations != nil {
		if session.Role != utils.RoleAdmin {
			utils.RespondWithCode(c, utils.CodeForbidden, "Only admins can change integrations", nil)
			return
		}
		settings.Integrations = input.Integrations
	}
	if len(problems) > 0 {
		utils.RespondValidation(c, problems...)
		return
	}

	if err := config.DB.Save(&settings).Error; err != nil {
		utils.RespondInternal(c, "Failed to update settings", err)
		return
	}
	utils.LoggerFor(c).Info("settings updated")
	utils.RespondSuccess(c, http.StatusOK, "Settings updated", settings)
}

// GetPublicSettings needs no session; it only exposes the public view.
func GetPublicSettings(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenantId"))
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "tenantId", Message: "must be a valid UUID"})
		return
	}

	var tenant models.Tenant
	if err := config.DB.Where("id = ? AND is_active = ?", tenantID, true).First(&tenant).Error; err != nil {
		respondDBError(c, err, "Business")
		return
	}
	settings, err := services.LoadSettings(config.DB, tenant.ID)
	if err != nil {
		utils.RespondInternal(c, "Failed to load settings", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Settings retrieved", settings.Public())
}
