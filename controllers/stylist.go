package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateStylistInput struct {
	Name            string              `json:"name" binding:"required"`
	Email           string              `json:"email" binding:"required,email"`
	Phone           string              `json:"phone"`
	Password        string              `json:"password" binding:"required,min=8"`
	Role            string              `json:"role" binding:"omitempty,oneof=stylist manager"`
	Bio             string              `json:"bio"`
	Specializations []string            `json:"specializations"`
	WorkingHours    models.WorkingHours `json:"workingHours"`
	HourlyRate      int64               `json:"hourlyRate" binding:"min=0"`
	CommissionRate  *decimal.Decimal    `json:"commissionRate"`
}

type UpdateStylistInput struct {
	Name            *string              `json:"name"`
	Phone           *string              `json:"phone"`
	Bio             *string              `json:"bio"`
	Specializations *[]string            `json:"specializations"`
	WorkingHours    *models.WorkingHours `json:"workingHours"`
	HourlyRate      *int64               `json:"hourlyRate" binding:"omitempty,min=0"`
	CommissionRate  *decimal.Decimal     `json:"commissionRate"`
}

type DeactivateInput struct {
	Reason string `json:"reason"`
}

func validCommission(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}

// StylistController manages staff profiles. Deactivation goes through the
// resource sweep so booked customers are told to reschedule.
type StylistController struct {
	resources *services.ResourceService
}

func NewStylistController(resources *services.ResourceService) *StylistController {
	return &StylistController{resources: resources}
}

func (sc *StylistController) Create(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateStylistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if input.Role == utils.RoleManager && session.Role != utils.RoleAdmin {
		utils.RespondWithCode(c, utils.CodeForbidden, "Only admins can create managers", nil)
		return
	}
	if err := input.WorkingHours.Validate(); err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "workingHours", Message: err.Error()})
		return
	}
	rate := decimal.Zero
	if input.CommissionRate != nil {
		if !validCommission(*input.CommissionRate) {
			utils.RespondValidation(c, utils.FieldError{Field: "commissionRate", Message: "must be between 0 and 1"})
			return
		}
		rate = *input.CommissionRate
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	taken, err := emailTaken(email)
	if err != nil {
		utils.RespondInternal(c, "Database error", err)
		return
	}
	if taken {
		utils.RespondWithCode(c, utils.CodeAlreadyExists, "Email already registered", nil)
		return
	}

	role := input.Role
	if role == "" {
		role = utils.RoleStylist
	}
	user := models.User{
		TenantID: session.TenantID,
		Email:    email,
		Phone:    utils.NormalizePhone(input.Phone),
		Name:     input.Name,
		Password: input.Password,
		Role:     role,
		IsActive: true,
	}
	stylist := models.Stylist{
		TenantID:        session.TenantID,
		Bio:             input.Bio,
		Specializations: input.Specializations,
		WorkingHours:    input.WorkingHours,
		HourlyRateCents: input.HourlyRate,
		CommissionRate:  rate,
		IsActive:        true,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		stylist.UserID = user.ID
		return tx.Create(&stylist).Error
	})
	if err != nil {
		utils.RespondInternal(c, "Failed to create stylist", err)
		return
	}
	stylist.User = &user
	respondCreated(c, "Stylist created", stylist)
}

// List is open to every role so customers can pick a stylist; inactive
// stylists are only listed for staff.
func (sc *StylistController) List(c *gin.Context) {
	session := utils.MustSession(c)

	q := config.DB.Preload("User").Where("tenant_id = ?", session.TenantID)
	if !session.IsStaff() || c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}

	var stylists []models.Stylist
	if err := q.Order("created_at ASC").Find(&stylists).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve stylists", err)
		return
	}

	// text[] on postgres and a JSON string on sqlite, so filter here
	if want := strings.ToLower(strings.TrimSpace(c.Query("specialization"))); want != "" {
		filtered := stylists[:0]
		for _, st := range stylists {
			for _, s := range st.Specializations {
				if strings.ToLower(s) == want {
					filtered = append(filtered, st)
					break
				}
			}
		}
		stylists = filtered
	}
	utils.RespondSuccess(c, http.StatusOK, "Stylists retrieved", stylists)
}

func (sc *StylistController) Get(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "stylist")
	if !ok {
		return
	}

	var stylist models.Stylist
	if err := config.DB.Preload("User").Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&stylist).Error; err != nil {
		respondDBError(c, err, "Stylist")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Stylist retrieved", stylist)
}

// Update lets managers edit any profile and a stylist edit their own,
// except for pay rates.
func (sc *StylistController) Update(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "stylist")
	if !ok {
		return
	}

	var input UpdateStylistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var stylist models.Stylist
	if err := config.DB.Preload("User").Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&stylist).Error; err != nil {
		respondDBError(c, err, "Stylist")
		return
	}
	if !session.IsManager() {
		if stylist.UserID != session.UserID {
			utils.RespondWithCode(c, utils.CodeForbidden, "You can only edit your own profile", nil)
			return
		}
		if input.HourlyRate != nil || input.CommissionRate != nil {
			utils.RespondWithCode(c, utils.CodeForbidden, "Only managers can change pay rates", nil)
			return
		}
	}

	if input.WorkingHours != nil {
		if err := input.WorkingHours.Validate(); err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "workingHours", Message: err.Error()})
			return
		}
		stylist.WorkingHours = *input.WorkingHours
	}
	if input.CommissionRate != nil {
		if !validCommission(*input.CommissionRate) {
			utils.RespondValidation(c, utils.FieldError{Field: "commissionRate", Message: "must be between 0 and 1"})
			return
		}
		stylist.CommissionRate = *input.CommissionRate
	}
	if input.Bio != nil {
		stylist.Bio = *input.Bio
	}
	if input.Specializations != nil {
		stylist.Specializations = *input.Specializations
	}
	if input.HourlyRate != nil {
		stylist.HourlyRateCents = *input.HourlyRate
	}

	userUpdates := map[string]any{}
	if input.Name != nil {
		userUpdates["name"] = *input.Name
	}
	if input.Phone != nil {
		userUpdates["phone"] = utils.NormalizePhone(*input.Phone)
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Save(&stylist).Error; err != nil {
			return err
		}
		if len(userUpdates) > 0 {
			return tx.Model(&models.User{}).Where("id = ?", stylist.UserID).Updates(userUpdates).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondInternal(c, "Failed to update stylist", err)
		return
	}
	if err := config.DB.Preload("User").First(&stylist, "id = ?", stylist.ID).Error; err != nil {
		utils.RespondInternal(c, "Failed to reload stylist", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Stylist updated", stylist)
}

// Delete soft deletes the profile and disables the login. Future bookings
// are flagged first, the same way a deactivation does.
func (sc *StylistController) Delete(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "stylist")
	if !ok {
		return
	}

	var stylist models.Stylist
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&stylist).Error; err != nil {
		respondDBError(c, err, "Stylist")
		return
	}

	var sweep *services.SweepResult
	if stylist.IsActive {
		var err error
		sweep, err = sc.resources.Deactivate(c.Request.Context(), session.TenantID, models.ResourceStaff, id, "Stylist no longer available", ptrUUID(session.UserID))
		if err != nil {
			respondServiceError(c, err, "Failed to deactivate stylist")
			return
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&stylist).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", stylist.UserID).Update("is_active", false).Error
	})
	if err != nil {
		utils.RespondInternal(c, "Failed to delete stylist", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Stylist deleted successfully", gin.H{"sweep": sweep})
}

func (sc *StylistController) Deactivate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "stylist")
	if !ok {
		return
	}
	var input DeactivateInput
	_ = c.ShouldBindJSON(&input)

	result, err := sc.resources.Deactivate(c.Request.Context(), session.TenantID, models.ResourceStaff, id, input.Reason, ptrUUID(session.UserID))
	if err != nil {
		respondServiceError(c, err, "Failed to deactivate stylist")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Stylist deactivated", result)
}

func (sc *StylistController) Reactivate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "stylist")
	if !ok {
		return
	}

	result, err := sc.resources.Reactivate(c.Request.Context(), session.TenantID, models.ResourceStaff, id, ptrUUID(session.UserID))
	if err != nil {
		respondServiceError(c, err, "Failed to reactivate stylist")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Stylist reactivated", result)
}
