// utils/response.go
package utils

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorCode is the machine-readable error taxonomy returned to clients.
type ErrorCode string

const (
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeNotFound           ErrorCode = "RESOURCE_NOT_FOUND"
	CodeAlreadyExists      ErrorCode = "RESOURCE_ALREADY_EXISTS"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeInternal           ErrorCode = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var codeStatus = map[ErrorCode]int{
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeBadRequest:         http.StatusBadRequest,
	CodeRateLimitExceeded:  http.StatusTooManyRequests,
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeConflict:           http.StatusConflict,
	CodeInternal:           http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus maps the code to its HTTP status.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// CodeForStatus picks the default code for a bare HTTP status.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimitExceeded
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	}
	return CodeInternal
}

// SuccessResponse is the envelope for every successful API call.
type SuccessResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
	Meta      any    `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for every failed API call.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Details   any       `json:"details,omitempty"`
	Timestamp string    `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

// FieldError describes one failed input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PaginationMeta is attached as meta on paginated listings.
type PaginationMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

const RequestIDKey = "requestId"

// RequestID returns the ID assigned by the request ID middleware, creating one
// when the middleware did not run.
func RequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := NewRequestID()
	c.Set(RequestIDKey, id)
	return id
}

func NewRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RespondWithError aborts with the envelope for a bare HTTP status.
func RespondWithError(c *gin.Context, status int, message string) {
	respond(c, status, CodeForStatus(status), message, nil)
}

// RespondWithCode aborts with the envelope for a taxonomy code.
func RespondWithCode(c *gin.Context, code ErrorCode, message string, details any) {
	respond(c, code.HTTPStatus(), code, message, details)
}

func respond(c *gin.Context, status int, code ErrorCode, message string, details any) {
	if status >= http.StatusInternalServerError {
		LoggerFor(c).WithField("code", code).Error(message)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		Timestamp: timestamp(),
		RequestID: RequestID(c),
	})
}

// RespondInternal logs err and answers with a generic 500.
func RespondInternal(c *gin.Context, message string, err error) {
	LoggerFor(c).WithError(err).Error(message)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:     message,
		Code:      CodeInternal,
		Timestamp: timestamp(),
		RequestID: RequestID(c),
	})
}

// RespondBindingError renders gin binding failures as VALIDATION_ERROR with
// per-field details.
func RespondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   lowerFirst(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		RespondWithCode(c, CodeValidation, "Validation failed", details)
		return
	}
	RespondWithCode(c, CodeValidation, "Invalid input: "+err.Error(), nil)
}

// RespondValidation reports hand-written field checks.
func RespondValidation(c *gin.Context, details ...FieldError) {
	msg := "Validation failed"
	if len(details) == 1 {
		msg = details[0].Message
	}
	RespondWithCode(c, CodeValidation, msg, details)
}

func fieldMessage(fe validator.FieldError) string {
	name := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email"
	case "min":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param()
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "gte":
		return name + " must be greater than or equal to " + fe.Param()
	}
	return name + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// RespondSuccess writes the success envelope.
func RespondSuccess(c *gin.Context, status int, message string, data any) {
	RespondSuccessWithMeta(c, status, message, data, nil)
}

func RespondSuccessWithMeta(c *gin.Context, status int, message string, data any, meta any) {
	c.JSON(status, SuccessResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
		RequestID: RequestID(c),
		Meta:      meta,
	})
}

// ParsePagination reads page/limit query params (limit defaults to 25, capped
// at 100) and returns the offset to use.
func ParsePagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return PaginationMeta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  pages,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
