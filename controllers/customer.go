package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateCustomerInput struct {
	Name        string     `json:"name" binding:"required"`
	Phone       string     `json:"phone" binding:"required"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Birthday    *time.Time `json:"birthday"`
	Anniversary *time.Time `json:"anniversary"`
	Notes       string     `json:"notes"`
}

type UpdateCustomerInput struct {
	Name        *string    `json:"name"`
	Phone       *string    `json:"phone"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Birthday    *time.Time `json:"birthday"`
	Anniversary *time.Time `json:"anniversary"`
	Notes       *string    `json:"notes"`
	IsActive    *bool      `json:"isActive"`
}

type AddPointsInput struct {
	CustomerID string `json:"customerId" binding:"required,uuid"`
	Points     int    `json:"points" binding:"required,gt=0"`
	Reason     string `json:"reason" binding:"required"`
}

// phoneInUse reports whether another live customer of the tenant has phone.
func phoneInUse(tenantID uuid.UUID, phone string, exclude *uuid.UUID) (bool, error) {
	q := config.DB.Model(&models.Customer{}).Where("tenant_id = ? AND phone = ?", tenantID, phone)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func CreateCustomer(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	phone := utils.NormalizePhone(input.Phone)
	if !utils.ValidatePhone(phone) {
		utils.RespondValidation(c, utils.FieldError{Field: "phone", Message: "invalid phone number"})
		return
	}
	exists, err := phoneInUse(session.TenantID, phone, nil)
	if err != nil {
		utils.RespondInternal(c, "Database error", err)
		return
	}
	if exists {
		utils.RespondWithCode(c, utils.CodeAlreadyExists, "Customer with this phone number already exists", nil)
		return
	}

	customer := models.Customer{
		TenantID:        session.TenantID,
		CreatedByUserID: ptrUUID(session.UserID),
		Name:            input.Name,
		Phone:           phone,
		Birthday:        input.Birthday,
		Anniversary:     input.Anniversary,
		Notes:           input.Notes,
		IsActive:        true,
	}
	if input.Email != nil {
		customer.Email = strings.ToLower(*input.Email)
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondInternal(c, "Failed to create customer", err)
		return
	}
	respondCreated(c, "Customer created", customer)
}

// GetCustomers lists the tenant's customers, optionally filtered by a
// search term matched against name, phone and email.
func GetCustomers(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.Customer{}).Where("tenant_id = ?", session.TenantID)
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if active := c.Query("active"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve customers", err)
		return
	}
	var customers []models.Customer
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve customers", err)
		return
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Customers retrieved", customers, utils.NewPaginationMeta(page, limit, total))
}

// loadCustomer enforces that customers only ever see their own record.
func loadCustomer(c *gin.Context, session utils.Session, id uuid.UUID) (*models.Customer, bool) {
	q := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id)
	if session.Role == utils.RoleCustomer {
		q = q.Where("user_id = ?", session.UserID)
	}
	var customer models.Customer
	if err := q.First(&customer).Error; err != nil {
		respondDBError(c, err, "Customer")
		return nil, false
	}
	return &customer, true
}

func GetCustomer(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	customer, ok := loadCustomer(c, session, id)
	if !ok {
		return
	}

	var upcoming int64
	err := config.DB.Model(&models.Appointment{}).
		Where("customer_id = ? AND start_time > ? AND status IN ?", customer.ID, time.Now().UTC(), models.ActiveAppointmentStatuses).
		Count(&upcoming).Error
	if err != nil {
		utils.RespondInternal(c, "Failed to count upcoming appointments", err)
		return
	}

	respondOK(c, "Customer retrieved", gin.H{
		"customer":             customer,
		"upcomingAppointments": upcoming,
	})
}

func UpdateCustomer(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	customer, ok := loadCustomer(c, session, id)
	if !ok {
		return
	}

	updates := map[string]any{}
	if input.Phone != nil {
		phone := utils.NormalizePhone(*input.Phone)
		if !utils.ValidatePhone(phone) {
			utils.RespondValidation(c, utils.FieldError{Field: "phone", Message: "invalid phone number"})
			return
		}
		if phone != customer.Phone {
			exists, err := phoneInUse(session.TenantID, phone, &customer.ID)
			if err != nil {
				utils.RespondInternal(c, "Database error", err)
				return
			}
			if exists {
				utils.RespondWithCode(c, utils.CodeAlreadyExists, "Phone number already in use by another customer", nil)
				return
			}
			updates["phone"] = phone
		}
	}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(*input.Email)
	}
	if input.Birthday != nil {
		updates["birthday"] = input.Birthday
	}
	if input.Anniversary != nil {
		updates["anniversary"] = input.Anniversary
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.IsActive != nil && session.IsStaff() {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(customer).Updates(updates).Error; err != nil {
			utils.RespondInternal(c, "Failed to update customer", err)
			return
		}
	}
	if err := config.DB.First(customer, "id = ?", customer.ID).Error; err != nil {
		utils.RespondInternal(c, "Failed to reload customer", err)
		return
	}
	respondOK(c, "Customer updated", customer)
}

func DeleteCustomer(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	result := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).Delete(&models.Customer{})
	if result.Error != nil {
		utils.RespondInternal(c, "Failed to delete customer", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithCode(c, utils.CodeNotFound, "Customer not found", nil)
		return
	}
	respondOK(c, "Customer deleted successfully", nil)
}

// AddLoyaltyPoints grants a manual points adjustment.
func AddLoyaltyPoints(c *gin.Context) {
	session := utils.MustSession(c)

	var input AddPointsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	customerID := uuid.MustParse(input.CustomerID)

	settings, err := services.LoadSettings(config.DB, session.TenantID)
	if err != nil {
		utils.RespondInternal(c, "Failed to load settings", err)
		return
	}

	var customer models.Customer
	var entry *models.LoyaltyTransaction
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND id = ?", session.TenantID, customerID).First(&customer).Error; err != nil {
			return err
		}
		var err error
		entry, err = services.AddLoyaltyPoints(tx, &customer, settings.Loyalty, input.Points, models.LoyaltyAdjusted, input.Reason, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithCode(c, utils.CodeNotFound, "Customer not found", nil)
			return
		}
		respondServiceError(c, err, "Failed to add loyalty points")
		return
	}

	respondOK(c, "Loyalty points added", gin.H{
		"customerId":    customer.ID,
		"loyaltyPoints": customer.LoyaltyPoints,
		"loyaltyTier":   customer.LoyaltyTier,
		"transaction":   entry,
	})
}

// GetCustomerLoyalty returns balance, tier and the most recent history.
func GetCustomerLoyalty(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	customer, ok := loadCustomer(c, session, id)
	if !ok {
		return
	}

	var history []models.LoyaltyTransaction
	if err := config.DB.Where("customer_id = ?", customer.ID).Order("created_at DESC").Limit(100).Find(&history).Error; err != nil {
		utils.RespondInternal(c, "Failed to load loyalty history", err)
		return
	}

	settings, err := services.LoadSettings(config.DB, session.TenantID)
	if err != nil {
		utils.RespondInternal(c, "Failed to load settings", err)
		return
	}
	var next *models.LoyaltyTier
	for _, t := range settings.Loyalty.Tiers {
		if t.MinPoints > customer.LoyaltyPoints && (next == nil || t.MinPoints < next.MinPoints) {
			tier := t
			next = &tier
		}
	}

	respondOK(c, "Loyalty retrieved", gin.H{
		"customerId": customer.ID,
		"points":     customer.LoyaltyPoints,
		"tier":       customer.LoyaltyTier,
		"nextTier":   next,
		"history":    history,
	})
}
