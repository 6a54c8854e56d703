package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type MediaController struct {
	store *services.MediaStore
}

func NewMediaController(store *services.MediaStore) *MediaController {
	return &MediaController{store: store}
}

func mediaURL(m *models.Media) string {
	return "/api/media/" + m.ID.String() + "/file"
}

// Upload takes a multipart "file" plus optional "alt" text.
func (mc *MediaController) Upload(c *gin.Context) {
	session := utils.MustSession(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxMediaBytes+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "file", Message: "a file is required"})
		return
	}
	if header.Size > services.MaxMediaBytes {
		utils.RespondValidation(c, utils.FieldError{Field: "file", Message: "file exceeds 10MB"})
		return
	}
	f, err := header.Open()
	if err != nil {
		utils.RespondInternal(c, "Failed to read upload", err)
		return
	}
	defer f.Close()

	stored, err := mc.store.Save(session.TenantID, f)
	if err != nil {
		respondServiceError(c, err, "Failed to store upload")
		return
	}

	media := models.Media{
		TenantID:   session.TenantID,
		FileName:   header.Filename,
		StoredName: stored.StoredName,
		MimeType:   stored.MimeType,
		Size:       stored.Size,
		Alt:        c.PostForm("alt"),
		UploadedBy: ptrUUID(session.UserID),
	}
	if err := config.DB.Create(&media).Error; err != nil {
		_ = mc.store.Remove(session.TenantID, stored.StoredName)
		utils.RespondInternal(c, "Failed to save media", err)
		return
	}
	media.URL = mediaURL(&media)
	config.DB.Model(&media).Update("url", media.URL)

	utils.RespondSuccess(c, http.StatusCreated, "File uploaded", media)
}

func (mc *MediaController) List(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.Media{}).Where("tenant_id = ?", session.TenantID)
	if kind := c.Query("type"); kind == "image" {
		q = q.Where("mime_type LIKE ?", "image/%")
	} else if kind == "document" {
		q = q.Where("mime_type NOT LIKE ?", "image/%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve media", err)
		return
	}
	var items []models.Media
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve media", err)
		return
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Media retrieved", items, utils.NewPaginationMeta(page, limit, total))
}

func (mc *MediaController) File(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "media")
	if !ok {
		return
	}

	var media models.Media
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&media).Error; err != nil {
		respondDBError(c, err, "Media")
		return
	}
	c.Header("Content-Type", media.MimeType)
	c.File(mc.store.Path(session.TenantID, media.StoredName))
}

func (mc *MediaController) Delete(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "media")
	if !ok {
		return
	}

	var media models.Media
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&media).Error; err != nil {
		respondDBError(c, err, "Media")
		return
	}
	if err := config.DB.Delete(&media).Error; err != nil {
		utils.RespondInternal(c, "Failed to delete media", err)
		return
	}
	if err := mc.store.Remove(session.TenantID, media.StoredName); err != nil {
		utils.LoggerFor(c).WithError(err).Warn("failed to remove media file")
	}
	utils.RespondSuccess(c, http.StatusOK, "Media deleted successfully", nil)
}
