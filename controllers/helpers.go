package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/services"
	"modernmen-backend/utils"
)

// parseID reads a uuid path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithCode(c, utils.CodeBadRequest, "Invalid "+what+" ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID parses a query or body value that may be empty.
func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// respondDBError maps a lookup error to 404 or a logged 500.
func respondDBError(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithCode(c, utils.CodeNotFound, what+" not found", nil)
		return
	}
	utils.RespondInternal(c, "Database error", err)
}

// respondServiceError translates service sentinel errors at the boundary.
func respondServiceError(c *gin.Context, err error, fallback string) {
	msg := err.Error()
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithCode(c, utils.CodeNotFound, capitalize(msg), nil)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithCode(c, utils.CodeForbidden, capitalize(msg), nil)
	case errors.Is(err, services.ErrSlotUnavailable),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrAlreadyClockedIn):
		utils.RespondWithCode(c, utils.CodeConflict, capitalize(msg), nil)
	case errors.Is(err, services.ErrAlreadyExists):
		utils.RespondWithCode(c, utils.CodeAlreadyExists, capitalize(msg), nil)
	case errors.Is(err, services.ErrNotClockedIn):
		utils.RespondWithCode(c, utils.CodeNotFound, capitalize(msg), nil)
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrOutsideHours),
		errors.Is(err, services.ErrInactiveReference):
		utils.RespondWithCode(c, utils.CodeValidation, capitalize(msg), nil)
	default:
		utils.RespondInternal(c, fallback, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseDate accepts RFC3339 or YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}

func respondOK(c *gin.Context, message string, data any) {
	utils.RespondSuccess(c, http.StatusOK, message, data)
}

func respondCreated(c *gin.Context, message string, data any) {
	utils.RespondSuccess(c, http.StatusCreated, message, data)
}
