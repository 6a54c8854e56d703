package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateReminderTemplateInput struct {
	Type    string `json:"type" binding:"required,oneof=birthday anniversary appointment_reminder"`
	Message string `json:"message" binding:"required,max=640"`
}

type UpdateReminderTemplateInput struct {
	Type     *string `json:"type" binding:"omitempty,oneof=birthday anniversary appointment_reminder"`
	Message  *string `json:"message" binding:"omitempty,min=1,max=640"`
	IsActive *bool   `json:"isActive"`
}

func reminderTypeTaken(tenantID uuid.UUID, kind string) (bool, error) {
	var count int64
	err := config.DB.Model(&models.ReminderTemplate{}).Where("tenant_id = ? AND type = ?", tenantID, kind).Count(&count).Error
	return count > 0, err
}

func CreateReminderTemplate(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateReminderTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	// one template per type
	taken, err := reminderTypeTaken(session.TenantID, input.Type)
	if err != nil {
		utils.RespondInternal(c, "Database error", err)
		return
	}
	if taken {
		utils.RespondWithCode(c, utils.CodeAlreadyExists, "Template for this type already exists", nil)
		return
	}

	template := models.ReminderTemplate{
		TenantID: session.TenantID,
		Type:     input.Type,
		Message:  input.Message,
		IsActive: true,
	}
	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondInternal(c, "Failed to create template", err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Template created", template)
}

func GetReminderTemplates(c *gin.Context) {
	session := utils.MustSession(c)

	var templates []models.ReminderTemplate
	if err := config.DB.Where("tenant_id = ?", session.TenantID).Order("type").Find(&templates).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve templates", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Templates retrieved", templates)
}

func GetReminderTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var template models.ReminderTemplate
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&template).Error; err != nil {
		respondDBError(c, err, "Template")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Template retrieved", template)
}

func UpdateReminderTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var input UpdateReminderTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var template models.ReminderTemplate
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&template).Error; err != nil {
		respondDBError(c, err, "Template")
		return
	}

	if input.Type != nil && *input.Type != template.Type {
		taken, err := reminderTypeTaken(session.TenantID, *input.Type)
		if err != nil {
			utils.RespondInternal(c, "Database error", err)
			return
		}
		if taken {
			utils.RespondWithCode(c, utils.CodeAlreadyExists, "Template for this type already exists", nil)
			return
		}
		template.Type = *input.Type
	}
	if input.Message != nil {
		template.Message = *input.Message
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&template).Error; err != nil {
		utils.RespondInternal(c, "Failed to update template", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Template updated", template)
}

func DeleteReminderTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	result := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).Delete(&models.ReminderTemplate{})
	if result.Error != nil {
		utils.RespondInternal(c, "Failed to delete template", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithCode(c, utils.CodeNotFound, "Template not found", nil)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Template deleted successfully", nil)
}

// ReminderController exposes the delivery log and a manual run.
type ReminderController struct {
	reminders *services.ReminderService
}

func NewReminderController(reminders *services.ReminderService) *ReminderController {
	return &ReminderController{reminders: reminders}
}

func (rc *ReminderController) Logs(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.ReminderLog{}).Where("tenant_id = ?", session.TenantID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if kind := c.Query("type"); kind != "" {
		q = q.Where("type = ?", kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve reminder logs", err)
		return
	}
	var logs []models.ReminderLog
	if err := q.Order("sent_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve reminder logs", err)
		return
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Reminder logs retrieved", logs, utils.NewPaginationMeta(page, limit, total))
}

// Run processes today's reminders for the caller's business immediately.
func (rc *ReminderController) Run(c *gin.Context) {
	session := utils.MustSession(c)
	sent := rc.reminders.ProcessTenantReminders(c.Request.Context(), session.TenantID)
	utils.RespondSuccess(c, http.StatusOK, "Reminders processed", gin.H{"sent": sent})
}
