package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateResourceInput struct {
	Type        string `json:"type" binding:"required,oneof=room equipment"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateResourceInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
}

// ResourceController handles rooms and equipment.
type ResourceController struct {
	resources *services.ResourceService
}

func NewResourceController(resources *services.ResourceService) *ResourceController {
	return &ResourceController{resources: resources}
}

func (rc *ResourceController) Create(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	resource := models.Resource{
		TenantID:    session.TenantID,
		Type:        input.Type,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}
	if err := config.DB.Create(&resource).Error; err != nil {
		utils.RespondInternal(c, "Failed to create resource", err)
		return
	}
	respondCreated(c, "Resource created", resource)
}

func (rc *ResourceController) List(c *gin.Context) {
	session := utils.MustSession(c)

	q := config.DB.Where("tenant_id = ?", session.TenantID)
	if kind := c.Query("type"); kind != "" {
		q = q.Where("type = ?", kind)
	}
	if active := c.Query("active"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var resources []models.Resource
	if err := q.Order("type, name").Find(&resources).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve resources", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Resources retrieved", resources)
}

func (rc *ResourceController) Get(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "resource")
	if !ok {
		return
	}

	var resource models.Resource
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&resource).Error; err != nil {
		respondDBError(c, err, "Resource")
		return
	}

	var logs []models.ResourceLog
	config.DB.Where("resource_id = ?", resource.ID).Order("created_at DESC").Limit(20).Find(&logs)
	utils.RespondSuccess(c, http.StatusOK, "Resource retrieved", gin.H{"resource": resource, "history": logs})
}

func (rc *ResourceController) Update(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "resource")
	if !ok {
		return
	}

	var input UpdateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var resource models.Resource
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&resource).Error; err != nil {
		respondDBError(c, err, "Resource")
		return
	}
	if input.Name != nil {
		resource.Name = *input.Name
	}
	if input.Description != nil {
		resource.Description = *input.Description
	}
	if err := config.DB.Save(&resource).Error; err != nil {
		utils.RespondInternal(c, "Failed to update resource", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Resource updated", resource)
}

func (rc *ResourceController) Delete(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "resource")
	if !ok {
		return
	}

	var resource models.Resource
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&resource).Error; err != nil {
		respondDBError(c, err, "Resource")
		return
	}

	var sweep *services.SweepResult
	if resource.IsActive {
		var err error
		sweep, err = rc.resources.Deactivate(c.Request.Context(), session.TenantID, resource.Type, id, "Resource removed", ptrUUID(session.UserID))
		if err != nil {
			respondServiceError(c, err, "Failed to deactivate resource")
			return
		}
	}
	if err := config.DB.Delete(&resource).Error; err != nil {
		utils.RespondInternal(c, "Failed to delete resource", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Resource deleted successfully", gin.H{"sweep": sweep})
}

func (rc *ResourceController) Deactivate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "resource")
	if !ok {
		return
	}
	var input DeactivateInput
	_ = c.ShouldBindJSON(&input)

	var resource models.Resource
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&resource).Error; err != nil {
		respondDBError(c, err, "Resource")
		return
	}

	result, err := rc.resources.Deactivate(c.Request.Context(), session.TenantID, resource.Type, id, input.Reason, ptrUUID(session.UserID))
	if err != nil {
		respondServiceError(c, err, "Failed to deactivate resource")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Resource deactivated", result)
}

func (rc *ResourceController) Reactivate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "resource")
	if !ok {
		return
	}

	var resource models.Resource
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&resource).Error; err != nil {
		respondDBError(c, err, "Resource")
		return
	}

	result, err := rc.resources.Reactivate(c.Request.Context(), session.TenantID, resource.Type, id, ptrUUID(session.UserID))
	if err != nil {
		respondServiceError(c, err, "Failed to reactivate resource")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Resource reactivated", result)
}
