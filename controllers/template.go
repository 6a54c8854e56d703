package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateTemplateInput struct {
	Name        string         `json:"name" binding:"required,max=120"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Layout      models.RawJSON `json:"layout" binding:"required"`
	IsPublic    bool           `json:"isPublic"`
}

type UpdateTemplateInput struct {
	Name        *string        `json:"name" binding:"omitempty,min=1,max=120"`
	Category    *string        `json:"category"`
	Description *string        `json:"description"`
	Tags        *[]string      `json:"tags"`
	Layout      models.RawJSON `json:"layout"`
	IsPublic    *bool          `json:"isPublic"`
}

type RateTemplateInput struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// visibleTemplates is the tenant's own templates plus every public one.
func visibleTemplates(db *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return db.Where("tenant_id = ? OR is_public = ?", tenantID, true)
}

func CreateTemplate(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if err := services.ValidateLayout(input.Layout); err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "layout", Message: err.Error()})
		return
	}

	template := models.EditorTemplate{
		TenantID:        session.TenantID,
		Name:            input.Name,
		Category:        input.Category,
		Description:     input.Description,
		Tags:            input.Tags,
		Layout:          input.Layout,
		IsPublic:        input.IsPublic,
		CreatedByUserID: ptrUUID(session.UserID),
	}
	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondInternal(c, "Failed to create template", err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Template created", template)
}

// GetTemplates omits layouts; the summary carries componentCount instead.
func GetTemplates(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := visibleTemplates(config.DB.Model(&models.EditorTemplate{}), session.TenantID)
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	order := "created_at DESC"
	switch c.Query("sort") {
	case "popular":
		order = "usage_count DESC"
	case "rating":
		order = "rating DESC"
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve templates", err)
		return
	}
	var templates []models.EditorTemplate
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&templates).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve templates", err)
		return
	}
	for i := range templates {
		templates[i].Layout = nil
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Templates retrieved", templates, utils.NewPaginationMeta(page, limit, total))
}

func GetTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var template models.EditorTemplate
	if err := visibleTemplates(config.DB, session.TenantID).Where("id = ?", id).First(&template).Error; err != nil {
		respondDBError(c, err, "Template")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Template retrieved", template)
}

func UpdateTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var template models.EditorTemplate
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&template).Error; err != nil {
		respondDBError(c, err, "Template")
		return
	}
	if input.Layout != nil {
		if err := services.ValidateLayout(input.Layout); err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "layout", Message: err.Error()})
			return
		}
		template.Layout = input.Layout
	}
	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Category != nil {
		template.Category = *input.Category
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if input.Tags != nil {
		template.Tags = *input.Tags
	}
	if input.IsPublic != nil {
		template.IsPublic = *input.IsPublic
	}

	if err := config.DB.Save(&template).Error; err != nil {
		utils.RespondInternal(c, "Failed to update template", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Template updated", template)
}

func DeleteTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	result := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).Delete(&models.EditorTemplate{})
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

// UseTemplate bumps usageCount and hands back the layout to copy.
func UseTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var template models.EditorTemplate
	if err := visibleTemplates(config.DB, session.TenantID).Where("id = ?", id).First(&template).Error; err != nil {
		respondDBError(c, err, "Template")
		return
	}
	if err := config.DB.Model(&models.EditorTemplate{}).Where("id = ?", template.ID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
		utils.RespondInternal(c, "Failed to record template use", err)
		return
	}
	template.UsageCount++
	utils.RespondSuccess(c, http.StatusOK, "Template applied", gin.H{
		"id":         template.ID,
		"name":       template.Name,
		"layout":     template.Layout,
		"usageCount": template.UsageCount,
	})
}

func RateTemplate(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var input RateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var template models.EditorTemplate
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := visibleTemplates(tx, session.TenantID).Where("id = ?", id).First(&template).Error; err != nil {
			return err
		}
		if err := services.ApplyRating(&template, input.Rating); err != nil {
			return err
		}
		return tx.Model(&models.EditorTemplate{}).Where("id = ?", template.ID).
			Updates(map[string]any{"rating": template.Rating, "rating_count": template.RatingCount}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithCode(c, utils.CodeNotFound, "Template not found", nil)
			return
		}
		respondServiceError(c, err, "Failed to rate template")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Template rated", gin.H{
		"id":          template.ID,
		"rating":      template.Rating,
		"ratingCount": template.RatingCount,
	})
}
