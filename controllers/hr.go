package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type ClockInRequest struct {
	Notes string `json:"notes"`
}

type ClockOutRequest struct {
	BreakMinutes int `json:"breakMinutes" binding:"min=0,max=720"`
}

type GeneratePayrollRequest struct {
	PeriodStart string `json:"periodStart" binding:"required"`
	PeriodEnd   string `json:"periodEnd" binding:"required"`
}

type PayrollStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected paid"`
	Notes  string `json:"notes"`
}

// HRController covers time clock and payroll.
type HRController struct {
	hr *services.HRService
}

func NewHRController(hr *services.HRService) *HRController {
	return &HRController{hr: hr}
}

func (h *HRController) ClockIn(c *gin.Context) {
	session := utils.MustSession(c)
	var req ClockInRequest
	_ = c.ShouldBindJSON(&req)

	stylist, err := h.hr.StylistForUser(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err, "Failed to load staff profile")
		return
	}
	entry, err := h.hr.ClockIn(c.Request.Context(), session.TenantID, stylist.ID, req.Notes)
	if err != nil {
		respondServiceError(c, err, "Failed to clock in")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Clocked in", entry)
}

func (h *HRController) ClockOut(c *gin.Context) {
	session := utils.MustSession(c)
	var req ClockOutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondBindingError(c, err)
			return
		}
	}

	stylist, err := h.hr.StylistForUser(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err, "Failed to load staff profile")
		return
	}
	entry, err := h.hr.ClockOut(c.Request.Context(), session.TenantID, stylist.ID, req.BreakMinutes)
	if err != nil {
		respondServiceError(c, err, "Failed to clock out")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Clocked out", entry)
}

// Session returns the caller's open entry, or null data when off the clock.
func (h *HRController) Session(c *gin.Context) {
	session := utils.MustSession(c)
	stylist, err := h.hr.StylistForUser(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err, "Failed to load staff profile")
		return
	}
	entry, err := h.hr.OpenEntry(c.Request.Context(), session.TenantID, stylist.ID)
	if err != nil {
		utils.RespondInternal(c, "Failed to load clock session", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Clock session", entry)
}

// Entries lists clock entries. Stylists see their own; managers can pick a
// staff member and date range.
func (h *HRController) Entries(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.ClockEntry{}).Where("tenant_id = ?", session.TenantID)
	if session.IsManager() {
		if staff := c.Query("staffId"); staff != "" {
			id, err := uuid.Parse(staff)
			if err != nil {
				utils.RespondValidation(c, utils.FieldError{Field: "staffId", Message: "must be a valid UUID"})
				return
			}
			q = q.Where("stylist_id = ?", id)
		}
	} else {
		stylist, err := h.hr.StylistForUser(c.Request.Context(), session)
		if err != nil {
			respondServiceError(c, err, "Failed to load staff profile")
			return
		}
		q = q.Where("stylist_id = ?", stylist.ID)
	}
	if from := c.Query("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "from", Message: "must be a date"})
			return
		}
		q = q.Where("clock_in >= ?", t.UTC())
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "to", Message: "must be a date"})
			return
		}
		q = q.Where("clock_in < ?", t.UTC().AddDate(0, 0, 1))
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve clock entries", err)
		return
	}
	var entries []models.ClockEntry
	if err := q.Preload("Stylist.User").Order("clock_in DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve clock entries", err)
		return
	}

	var worked, overtime int
	for _, e := range entries {
		worked += e.WorkedMinutes
		overtime += e.OvertimeMinutes
	}
	meta := utils.NewPaginationMeta(page, limit, total)
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Clock entries retrieved", gin.H{
		"entries":         entries,
		"workedMinutes":   worked,
		"overtimeMinutes": overtime,
	}, meta)
}

func (h *HRController) ApproveEntry(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "clock entry")
	if !ok {
		return
	}
	entry, err := h.hr.ApproveEntry(c.Request.Context(), session.TenantID, id, session.UserID)
	if err != nil {
		respondServiceError(c, err, "Failed to approve clock entry")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Clock entry approved", entry)
}

func (h *HRController) GeneratePayroll(c *gin.Context) {
	session := utils.MustSession(c)

	var req GeneratePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	start, err := parseDate(req.PeriodStart)
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "periodStart", Message: "must be a date"})
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "periodEnd", Message: "must be a date"})
		return
	}
	// a bare end date is inclusive
	if len(req.PeriodEnd) == len("2006-01-02") {
		end = end.AddDate(0, 0, 1)
	}

	records, skipped, err := h.hr.GeneratePayroll(c.Request.Context(), session.TenantID, start, end)
	if err != nil {
		respondServiceError(c, err, "Failed to generate payroll")
		return
	}
	utils.LoggerFor(c).WithField("created", len(records)).WithField("skipped", skipped).Info("payroll generated")
	utils.RespondSuccessWithMeta(c, http.StatusCreated, "Payroll generated", records, gin.H{
		"created": len(records),
		"skipped": skipped,
	})
}

// Payroll lists records for a named period with summary stats. Stylists
// only get their own records.
func (h *HRController) Payroll(c *gin.Context) {
	session := utils.MustSession(c)

	start, end, err := utils.PeriodRange(c.Query("period"), time.Now().UTC())
	if err != nil {
		utils.RespondValidation(c, utils.FieldError{Field: "period", Message: err.Error()})
		return
	}

	q := config.DB.Where("tenant_id = ? AND period_start >= ? AND period_start < ?", session.TenantID, start, end)
	if !session.IsManager() {
		stylist, err := h.hr.StylistForUser(c.Request.Context(), session)
		if err != nil {
			respondServiceError(c, err, "Failed to load staff profile")
			return
		}
		q = q.Where("stylist_id = ?", stylist.ID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var records []models.PayrollRecord
	if err := q.Preload("Stylist.User").Order("period_start DESC").Find(&records).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve payroll", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Payroll retrieved", gin.H{
		"records": records,
		"stats":   services.SummarizePayroll(records),
		"period":  gin.H{"start": start, "end": end},
	})
}

func (h *HRController) UpdatePayrollStatus(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "payroll record")
	if !ok {
		return
	}

	var req PayrollStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	rec, err := h.hr.UpdatePayrollStatus(c.Request.Context(), session.TenantID, id, req.Status, session.UserID, req.Notes)
	if err != nil {
		respondServiceError(c, err, "Failed to update payroll status")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Payroll status updated", rec)
}
