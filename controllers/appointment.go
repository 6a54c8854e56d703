package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"modernmen-backend/config"
	"modernmen-backend/middleware"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateAppointmentRequest struct {
	CustomerID  string    `json:"customerId" binding:"omitempty,uuid"`
	ServiceID   string    `json:"serviceId" binding:"required,uuid"`
	StylistID   string    `json:"stylistId" binding:"required,uuid"`
	RoomID      string    `json:"roomId" binding:"omitempty,uuid"`
	EquipmentID string    `json:"equipmentId" binding:"omitempty,uuid"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	Duration    int       `json:"duration" binding:"omitempty,min=15,max=480"`
	Notes       string    `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"startTime"`
	Duration  *int       `json:"duration" binding:"omitempty,min=15,max=480"`
	StylistID *string    `json:"stylistId" binding:"omitempty,uuid"`
	Notes     *string    `json:"notes" binding:"omitempty,max=1000"`
}

type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type AppointmentController struct {
	appointments *services.AppointmentService
}

func NewAppointmentController(appointments *services.AppointmentService) *AppointmentController {
	return &AppointmentController{appointments: appointments}
}

func (ac *AppointmentController) Create(c *gin.Context) {
	session := utils.MustSession(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if session.Role != utils.RoleCustomer && req.CustomerID == "" {
		utils.RespondValidation(c, utils.FieldError{Field: "customerId", Message: "customerId is required"})
		return
	}

	in := services.CreateAppointmentInput{
		ServiceID: uuid.MustParse(req.ServiceID),
		StylistID: uuid.MustParse(req.StylistID),
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Notes:     req.Notes,
	}
	if req.CustomerID != "" {
		in.CustomerID = uuid.MustParse(req.CustomerID)
	}
	in.RoomID, _ = parseOptionalUUID(req.RoomID)
	in.EquipmentID, _ = parseOptionalUUID(req.EquipmentID)

	appt, err := ac.appointments.Create(c.Request.Context(), session, in)
	if err != nil {
		if errors.Is(err, services.ErrSlotUnavailable) {
			middleware.BookingConflicts.Inc()
		}
		respondServiceError(c, err, "Failed to create appointment")
		return
	}
	middleware.AppointmentsBooked.WithLabelValues(appt.Status).Inc()
	utils.RespondSuccess(c, http.StatusCreated, "Appointment booked", appt)
}

// List scopes by role: customers and stylists only see their own, staff
// with a manager role see the whole business.
func (ac *AppointmentController) List(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.Appointment{}).Where("appointments.tenant_id = ?", session.TenantID)
	switch session.Role {
	case utils.RoleCustomer:
		q = q.Where("customer_id IN (?)", config.DB.Model(&models.Customer{}).Select("id").Where("user_id = ?", session.UserID))
	case utils.RoleStylist:
		q = q.Where("stylist_id IN (?)", config.DB.Model(&models.Stylist{}).Select("id").Where("user_id = ?", session.UserID))
	}

	if status := c.Query("status"); status != "" {
		if !models.IsAppointmentStatus(status) {
			utils.RespondValidation(c, utils.FieldError{Field: "status", Message: "unknown status"})
			return
		}
		q = q.Where("status = ?", status)
	}
	if stylist := c.Query("stylistId"); stylist != "" {
		id, err := uuid.Parse(stylist)
		if err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "stylistId", Message: "must be a valid UUID"})
			return
		}
		q = q.Where("stylist_id = ?", id)
	}
	if from := c.Query("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "from", Message: "must be a date"})
			return
		}
		q = q.Where("start_time >= ?", t.UTC())
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "to", Message: "must be a date"})
			return
		}
		if len(to) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		q = q.Where("start_time < ?", t.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve appointments", err)
		return
	}
	var appointments []models.Appointment
	err := q.Preload("Customer").Preload("Service").Preload("Stylist.User").
		Order("start_time ASC").Limit(limit).Offset(offset).
		Find(&appointments).Error
	if err != nil {
		utils.RespondInternal(c, "Failed to retrieve appointments", err)
		return
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Appointments retrieved", appointments, utils.NewPaginationMeta(page, limit, total))
}

func (ac *AppointmentController) Get(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}
	appt, err := ac.appointments.Get(c.Request.Context(), session, id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve appointment")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Appointment retrieved", appt)
}

func (ac *AppointmentController) Update(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	in := services.UpdateAppointmentInput{StartTime: req.StartTime, Duration: req.Duration, Notes: req.Notes}
	if req.StylistID != nil {
		in.StylistID, _ = parseOptionalUUID(*req.StylistID)
	}

	appt, err := ac.appointments.Update(c.Request.Context(), session, id, in)
	if err != nil {
		if errors.Is(err, services.ErrSlotUnavailable) {
			middleware.BookingConflicts.Inc()
		}
		respondServiceError(c, err, "Failed to update appointment")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Appointment updated", appt)
}

// Delete cancels for customers; managers remove the record outright.
func (ac *AppointmentController) Delete(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}

	switch {
	case session.Role == utils.RoleCustomer:
		var req CancelRequest
		_ = c.ShouldBindJSON(&req)
		appt, err := ac.appointments.Cancel(c.Request.Context(), session, id, req.Reason)
		if err != nil {
			respondServiceError(c, err, "Failed to cancel appointment")
			return
		}
		utils.RespondSuccess(c, http.StatusOK, "Appointment cancelled", appt)
	case session.IsManager():
		result := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).Delete(&models.Appointment{})
		if result.Error != nil {
			utils.RespondInternal(c, "Failed to delete appointment", result.Error)
			return
		}
		if result.RowsAffected == 0 {
			utils.RespondWithCode(c, utils.CodeNotFound, "Appointment not found", nil)
			return
		}
		utils.RespondSuccess(c, http.StatusOK, "Appointment deleted successfully", nil)
	default:
		utils.RespondWithCode(c, utils.CodeForbidden, "Insufficient permissions", nil)
	}
}

func (ac *AppointmentController) ChangeStatus(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if !models.IsAppointmentStatus(req.Status) {
		utils.RespondValidation(c, utils.FieldError{Field: "status", Message: "unknown status"})
		return
	}

	appt, err := ac.appointments.ChangeStatus(c.Request.Context(), session, id, req.Status, req.Reason)
	if err != nil {
		respondServiceError(c, err, "Failed to update appointment status")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Appointment status updated", appt)
}

func (ac *AppointmentController) Availability(c *gin.Context) {
	session := utils.MustSession(c)

	stylistID, err := uuid.Parse(c.Query("stylistId"))
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "stylistId", Message: "must be a valid UUID"})
		return
	}
	serviceID, err := uuid.Parse(c.Query("serviceId"))
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "serviceId", Message: "must be a valid UUID"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
		return
	}

	slots, err := ac.appointments.Availability(c.Request.Context(), session.TenantID, stylistID, serviceID, date)
	if err != nil {
		respondServiceError(c, err, "Failed to compute availability")
		return
	}
	available := 0
	for _, s := range slots {
		if s.Available {
			available++
		}
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Availability retrieved", slots, gin.H{
		"date":      c.Query("date"),
		"total":     len(slots),
		"available": available,
	})
}
