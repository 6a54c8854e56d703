package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/utils"
)

// HRService covers time clock and payroll.
type HRService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHRService(db *gorm.DB) *HRService {
	return &HRService{db: db, now: time.Now}
}

func (s *HRService) WithClock(now func() time.Time) *HRService {
	s.now = now
	return s
}

// StylistForUser returns the staff profile of the session user.
func (s *HRService) StylistForUser(ctx context.Context, session utils.Session) (*models.Stylist, error) {
	var stylist models.Stylist
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", session.TenantID, session.UserID).
		First(&stylist).Error; err != nil {
		return nil, notFound(err, "staff profile")
	}
	return &stylist, nil
}

// OpenEntry returns the stylist's active clock entry, or nil.
func (s *HRService) OpenEntry(ctx context.Context, tenantID, stylistID uuid.UUID) (*models.ClockEntry, error) {
	var entry models.ClockEntry
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND stylist_id = ? AND status = ?", tenantID, stylistID, models.ClockActive).
		Order("clock_in DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *HRService) ClockIn(ctx context.Context, tenantID, stylistID uuid.UUID, notes string) (*models.ClockEntry, error) {
	open, err := s.OpenEntry(ctx, tenantID, stylistID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyClockedIn
	}
	entry := &models.ClockEntry{
		TenantID:  tenantID,
		StylistID: stylistID,
		ClockIn:   s.now().UTC(),
		Status:    models.ClockActive,
		Notes:     notes,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("clock in: %w", err)
	}
	return entry, nil
}

func (s *HRService) ClockOut(ctx context.Context, tenantID, stylistID uuid.UUID, breakMinutes int) (*models.ClockEntry, error) {
	if breakMinutes < 0 {
		return nil, fmt.Errorf("%w: breakMinutes cannot be negative", ErrInvalidInput)
	}
	entry, err := s.OpenEntry(ctx, tenantID, stylistID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotClockedIn
	}
	entry.Close(s.now().UTC(), breakMinutes)
	if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, fmt.Errorf("clock out: %w", err)
	}
	return entry, nil
}

func (s *HRService) ApproveEntry(ctx context.Context, tenantID, entryID, approver uuid.UUID) (*models.ClockEntry, error) {
	var entry models.ClockEntry
	if err := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, entryID).First(&entry).Error; err != nil {
		return nil, notFound(err, "clock entry")
	}
	if entry.Status != models.ClockCompleted {
		return nil, fmt.Errorf("%w: only completed entries can be approved", ErrInvalidTransition)
	}
	entry.Status = models.ClockApproved
	entry.ApprovedBy = &approver
	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GeneratePayroll creates one pending record per active stylist for
// [start, end). Stylists that already have a record for the period are
// skipped.
func (s *HRService) GeneratePayroll(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]models.PayrollRecord, int, error) {
	if !end.After(start) {
		return nil, 0, fmt.Errorf("%w: periodEnd must be after periodStart", ErrInvalidInput)
	}
	start, end = start.UTC(), end.UTC()
	db := s.db.WithContext(ctx)

	var stylists []models.Stylist
	if err := db.Where("tenant_id = ? AND is_active = ?", tenantID, true).Find(&stylists).Error; err != nil {
		return nil, 0, err
	}

	created := []models.PayrollRecord{}
	skipped := 0
	for _, st := range stylists {
		var existing int64
		if err := db.Model(&models.PayrollRecord{}).
			Where("tenant_id = ? AND stylist_id = ? AND period_start = ? AND period_end = ?", tenantID, st.ID, start, end).
			Count(&existing).Error; err != nil {
			return nil, 0, err
		}
		if existing > 0 {
			skipped++
			continue
		}

		var minutes struct {
			Regular  int
			Overtime int
		}
		if err := db.Model(&models.ClockEntry{}).
			Select("COALESCE(SUM(regular_minutes), 0) AS regular, COALESCE(SUM(overtime_minutes), 0) AS overtime").
			Where("tenant_id = ? AND stylist_id = ? AND status IN ? AND clock_in >= ? AND clock_in < ?",
				tenantID, st.ID, []string{models.ClockCompleted, models.ClockApproved}, start, end).
			Scan(&minutes).Error; err != nil {
			return nil, 0, err
		}

		var revenue int64
		if err := db.Model(&models.Appointment{}).
			Select("COALESCE(SUM(price_cents), 0)").
			Where("tenant_id = ? AND stylist_id = ? AND status = ? AND start_time >= ? AND start_time < ?",
				tenantID, st.ID, models.StatusCompleted, start, end).
			Scan(&revenue).Error; err != nil {
			return nil, 0, err
		}

		pay := ComputePayroll(PayrollInput{
			RegularMinutes:  minutes.Regular,
			OvertimeMinutes: minutes.Overtime,
			HourlyRateCents: st.HourlyRateCents,
			CommissionRate:  st.CommissionRate,
			RevenueCents:    revenue,
		})
		rec := models.PayrollRecord{
			TenantID:             tenantID,
			StylistID:            st.ID,
			PeriodStart:          start,
			PeriodEnd:            end,
			RegularMinutes:       minutes.Regular,
			OvertimeMinutes:      minutes.Overtime,
			HourlyRateCents:      st.HourlyRateCents,
			RevenueCents:         revenue,
			RegularPayCents:      pay.RegularPay,
			OvertimePayCents:     pay.OvertimePay,
			CommissionCents:      pay.Commission,
			GrossPayCents:        pay.Gross,
			FederalTaxCents:      pay.FederalTax,
			StateTaxCents:        pay.StateTax,
			SocialSecurityCents:  pay.SocialSecurity,
			MedicareCents:        pay.Medicare,
			TotalDeductionsCents: pay.TotalDeductions,
			NetPayCents:          pay.Net,
			Status:               models.PayrollPending,
		}
		if err := db.Create(&rec).Error; err != nil {
			return nil, 0, fmt.Errorf("create payroll record: %w", err)
		}
		created = append(created, rec)
	}
	return created, skipped, nil
}

// UpdatePayrollStatus allows pending->approved|rejected and approved->paid.
func (s *HRService) UpdatePayrollStatus(ctx context.Context, tenantID, id uuid.UUID, to string, actor uuid.UUID, notes string) (*models.PayrollRecord, error) {
	db := s.db.WithContext(ctx)
	var rec models.PayrollRecord
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&rec).Error; err != nil {
		return nil, notFound(err, "payroll record")
	}
	if !models.CanTransitionPayroll(rec.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rec.Status, to)
	}

	updates := map[string]interface{}{"status": to}
	switch to {
	case models.PayrollApproved:
		updates["approved_by"] = actor
	case models.PayrollPaid:
		updates["paid_at"] = s.now().UTC()
	}
	if notes != "" {
		updates["notes"] = notes
	}
	res := db.Model(&models.PayrollRecord{}).Where("id = ? AND status = ?", rec.ID, rec.Status).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}
	if err := db.Preload("Stylist.User").First(&rec, "id = ?", rec.ID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

type PayrollStats struct {
	Employees  int   `json:"employees"`
	TotalGross int64 `json:"totalGross"`
	TotalNet   int64 `json:"totalNet"`
	Pending    int   `json:"pending"`
	Approved   int   `json:"approved"`
	Paid       int   `json:"paid"`
}

func SummarizePayroll(records []models.PayrollRecord) PayrollStats {
	var st PayrollStats
	seen := map[uuid.UUID]bool{}
	for _, r := range records {
		if !seen[r.StylistID] {
			seen[r.StylistID] = true
			st.Employees++
		}
		st.TotalGross += r.GrossPayCents
		st.TotalNet += r.NetPayCents
		switch r.Status {
		case models.PayrollPending:
			st.Pending++
		case models.PayrollApproved:
			st.Approved++
		case models.PayrollPaid:
			st.Paid++
		}
	}
	return st
}
