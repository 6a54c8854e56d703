package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	ClockActive    = "active"
	ClockCompleted = "completed"
	ClockApproved  = "approved"
)

// RegularMinutesPerShift is the daily cap before overtime starts.
const RegularMinutesPerShift = 8 * 60

type ClockEntry struct {
	Base
	TenantID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenantId"`
	StylistID uuid.UUID  `gorm:"type:uuid;index;not null" json:"stylistId"`
	Stylist   *Stylist   `gorm:"foreignKey:StylistID" json:"stylist,omitempty"`
	ClockIn   time.Time  `gorm:"not null;index" json:"clockIn"`
	ClockOut  *time.Time `json:"clockOut"`

	BreakMinutes    int `gorm:"default:0" json:"breakMinutes"`
	WorkedMinutes   int `gorm:"default:0" json:"workedMinutes"`
	RegularMinutes  int `gorm:"default:0" json:"regularMinutes"`
	OvertimeMinutes int `gorm:"default:0" json:"overtimeMinutes"`

	Status     string     `gorm:"type:varchar(20);index;not null" json:"status"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid" json:"approvedBy,omitempty"`
	Notes      string     `json:"notes"`
}

// Close ends the shift and splits worked time into regular and overtime.
func (e *ClockEntry) Close(at time.Time, breakMinutes int) {
	e.ClockOut = &at
	e.BreakMinutes = breakMinutes
	worked := int(at.Sub(e.ClockIn).Minutes()) - breakMinutes
	if worked < 0 {
		worked = 0
	}
	e.WorkedMinutes = worked
	e.RegularMinutes = min(worked, RegularMinutesPerShift)
	e.OvertimeMinutes = worked - e.RegularMinutes
	e.Status = ClockCompleted
}

const (
	PayrollPending  = "pending"
	PayrollApproved = "approved"
	PayrollRejected = "rejected"
	PayrollPaid     = "paid"
)

var payrollTransitions = map[string][]string{
	PayrollPending:  {PayrollApproved, PayrollRejected},
	PayrollApproved: {PayrollPaid},
}

func CanTransitionPayroll(from, to string) bool {
	return slices.Contains(payrollTransitions[from], to)
}

type PayrollRecord struct {
	Base
	TenantID    uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	StylistID   uuid.UUID `gorm:"type:uuid;index;not null" json:"stylistId"`
	Stylist     *Stylist  `gorm:"foreignKey:StylistID" json:"stylist,omitempty"`
	PeriodStart time.Time `gorm:"not null;index" json:"periodStart"`
	PeriodEnd   time.Time `gorm:"not null" json:"periodEnd"`

	RegularMinutes  int   `json:"regularMinutes"`
	OvertimeMinutes int   `json:"overtimeMinutes"`
	HourlyRateCents int64 `json:"hourlyRate"`
	RevenueCents    int64 `json:"revenue"`

	RegularPayCents      int64 `json:"regularPay"`
	OvertimePayCents     int64 `json:"overtimePay"`
	CommissionCents      int64 `json:"commission"`
	GrossPayCents        int64 `json:"grossPay"`
	FederalTaxCents      int64 `json:"federalTax"`
	StateTaxCents        int64 `json:"stateTax"`
	SocialSecurityCents  int64 `json:"socialSecurity"`
	MedicareCents        int64 `json:"medicare"`
	TotalDeductionsCents int64 `json:"totalDeductions"`
	NetPayCents          int64 `json:"netPay"`

	Status     string     `gorm:"type:varchar(20);index;not null" json:"status"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid" json:"approvedBy,omitempty"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	Notes      string     `json:"notes"`
}
