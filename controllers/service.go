package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/utils"
)

// Prices are in cents, durations in minutes.
type CreateServiceInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"min=0"`
	Duration    int    `json:"duration" binding:"required,min=5,max=480"`
	Category    string `json:"category"`
}

type UpdateServiceInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Duration    *int    `json:"duration" binding:"omitempty,min=5,max=480"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

func CreateService(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	service := models.Service{
		TenantID:    session.TenantID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceCents:  input.Price,
		Duration:    input.Duration,
		Category:    input.Category,
		IsActive:    true,
	}
	if service.Category == "" {
		service.Category = "General"
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondInternal(c, "Failed to create service", err)
		return
	}
	respondCreated(c, "Service created", service)
}

// GetServices lists the catalogue. Customers only see active services.
func GetServices(c *gin.Context) {
	session := utils.MustSession(c)

	q := config.DB.Where("tenant_id = ?", session.TenantID)
	if !session.IsStaff() {
		q = q.Where("is_active = ?", true)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var services []models.Service
	if err := q.Order("category, name").Find(&services).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve services", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Services retrieved", services)
}

func GetService(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	var service models.Service
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&service).Error; err != nil {
		respondDBError(c, err, "Service")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Service retrieved", service)
}

func UpdateService(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var service models.Service
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&service).Error; err != nil {
		respondDBError(c, err, "Service")
		return
	}

	if input.Name != nil {
		service.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		service.PriceCents = *input.Price
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondInternal(c, "Failed to update service", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Service updated", service)
}

// DeleteService soft deletes a service. Existing appointments keep their
// price snapshot.
func DeleteService(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	result := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).Delete(&models.Service{})
	if result.Error != nil {
		utils.RespondInternal(c, "Failed to delete service", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithCode(c, utils.CodeNotFound, "Service not found", nil)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Service deleted successfully", nil)
}
