package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/utils"
)

// AnalyticsController builds the business dashboard.
type AnalyticsController struct {
	now func() time.Time
}

func NewAnalyticsController() *AnalyticsController {
	return &AnalyticsController{now: time.Now}
}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   int64            `json:"currentMonthRevenue"`
	MonthGrowth           float64          `json:"monthGrowth"`
	CurrentQuarterRevenue int64            `json:"currentQuarterRevenue"`
	QuarterGrowth         float64          `json:"quarterGrowth"`
	CurrentYearRevenue    int64            `json:"currentYearRevenue"`
	YearGrowth            float64          `json:"yearGrowth"`
	TopServices           []ServiceSummary `json:"topServices"`
	TopStylists           []StylistSummary `json:"topStylists"`
	QuickStats            QuickStatistics  `json:"quickStats"`
	LowStockProducts      int64            `json:"lowStockProducts"`
}

type ServiceSummary struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

type StylistSummary struct {
	Name         string `json:"name"`
	Appointments int    `json:"appointments"`
	Revenue      int64  `json:"revenue"`
}

type QuickStatistics struct {
	TotalCustomers    int64 `json:"totalCustomers"`
	TotalAppointments int64 `json:"totalAppointments"`
	TotalOrders       int64 `json:"totalOrders"`
	AvgTicket         int64 `json:"avgTicket"`
}

type period struct {
	start, end time.Time
}

func (p period) previous(years, months int) period {
	return period{p.start.AddDate(-years, -months, 0), p.end.AddDate(-years, -months, 0)}
}

// GetAnalytics returns revenue by month, quarter and year with growth
// against the preceding period of the same length.
func (ac *AnalyticsController) GetAnalytics(c *gin.Context) {
	session := utils.MustSession(c)
	tenantID := session.TenantID

	now := ac.now().UTC()
	firstOfMonth := utils.BeginningOfMonth(now)
	month := period{firstOfMonth, firstOfMonth.AddDate(0, 1, 0)}
	quarter := period{ac.getQuarterStart(now), ac.getQuarterStart(now).AddDate(0, 3, 0)}
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	year := period{yearStart, yearStart.AddDate(1, 0, 0)}

	ranges := []struct {
		name string
		p    period
	}{
		{"monthly", month},
		{"last month", month.previous(0, 1)},
		{"quarterly", quarter},
		{"last quarter", quarter.previous(0, 3)},
		{"yearly", year},
		{"last year", year.previous(1, 0)},
	}
	revenue := make([]int64, len(ranges))
	for i, r := range ranges {
		total, err := ac.getRevenue(tenantID, r.p)
		if err != nil {
			utils.RespondInternal(c, "Failed to get "+r.name+" revenue", err)
			return
		}
		revenue[i] = total
	}

	topServices, err := ac.getTopServices(tenantID, month, 4)
	if err != nil {
		utils.RespondInternal(c, "Failed to get top services", err)
		return
	}
	topStylists, err := ac.getTopStylists(tenantID, month, 4)
	if err != nil {
		utils.RespondInternal(c, "Failed to get top stylists", err)
		return
	}
	quickStats, err := ac.getQuickStatistics(tenantID)
	if err != nil {
		utils.RespondInternal(c, "Failed to get quick statistics", err)
		return
	}

	var lowStock int64
	if err := config.DB.Model(&models.Product{}).
		Where("tenant_id = ? AND is_active = ? AND current_stock <= min_stock", tenantID, true).
		Count(&lowStock).Error; err != nil {
		utils.RespondInternal(c, "Failed to count low stock products", err)
		return
	}

	summary := AnalyticsSummary{
		CurrentMonthRevenue:   revenue[0],
		MonthGrowth:           ac.calculateGrowthPercentage(revenue[0], revenue[1]),
		CurrentQuarterRevenue: revenue[2],
		QuarterGrowth:         ac.calculateGrowthPercentage(revenue[2], revenue[3]),
		CurrentYearRevenue:    revenue[4],
		YearGrowth:            ac.calculateGrowthPercentage(revenue[4], revenue[5]),
		TopServices:           topServices,
		TopStylists:           topStylists,
		QuickStats:            quickStats,
		LowStockProducts:      lowStock,
	}
	utils.RespondSuccess(c, http.StatusOK, "Analytics retrieved", summary)
}

// getRevenue sums completed appointments and paid orders in [start, end).
func (ac *AnalyticsController) getRevenue(tenantID uuid.UUID, p period) (int64, error) {
	var appointments, orders int64
	err := config.DB.Model(&models.Appointment{}).
		Where("tenant_id = ? AND status = ? AND start_time >= ? AND start_time < ?", tenantID, models.StatusCompleted, p.start, p.end).
		Select("COALESCE(SUM(price_cents), 0)").
		Scan(&appointments).Error
	if err != nil {
		return 0, err
	}
	err = config.DB.Model(&models.Order{}).
		Where("tenant_id = ? AND payment_status = ? AND created_at >= ? AND created_at < ?", tenantID, models.PaymentPaid, p.start, p.end).
		Select("COALESCE(SUM(total_cents), 0)").
		Scan(&orders).Error
	return appointments + orders, err
}

func (ac *AnalyticsController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (ac *AnalyticsController) calculateGrowthPercentage(current, previous int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return float64(current-previous) / float64(previous) * 100
}

func (ac *AnalyticsController) getTopServices(tenantID uuid.UUID, p period, limit int) ([]ServiceSummary, error) {
	services := []ServiceSummary{}
	err := config.DB.Table("appointments").
		Select("services.name AS name, COUNT(appointments.id) AS count, COALESCE(SUM(appointments.price_cents), 0) AS revenue").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.tenant_id = ? AND appointments.status = ? AND appointments.start_time >= ? AND appointments.start_time < ? AND appointments.deleted_at IS NULL",
			tenantID, models.StatusCompleted, p.start, p.end).
		Group("services.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error
	return services, err
}

func (ac *AnalyticsController) getTopStylists(tenantID uuid.UUID, p period, limit int) ([]StylistSummary, error) {
	stylists := []StylistSummary{}
	err := config.DB.Table("appointments").
		Select("users.name AS name, COUNT(appointments.id) AS appointments, COALESCE(SUM(appointments.price_cents), 0) AS revenue").
		Joins("JOIN stylists ON stylists.id = appointments.stylist_id").
		Joins("JOIN users ON users.id = stylists.user_id").
		Where("appointments.tenant_id = ? AND appointments.status = ? AND appointments.start_time >= ? AND appointments.start_time < ? AND appointments.deleted_at IS NULL",
			tenantID, models.StatusCompleted, p.start, p.end).
		Group("users.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&stylists).Error
	return stylists, err
}

func (ac *AnalyticsController) getQuickStatistics(tenantID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	if err := config.DB.Model(&models.Customer{}).
		Where("tenant_id = ?", tenantID).
		Count(&stats.TotalCustomers).Error; err != nil {
		return stats, err
	}
	if err := config.DB.Model(&models.Appointment{}).
		Where("tenant_id = ?", tenantID).
		Count(&stats.TotalAppointments).Error; err != nil {
		return stats, err
	}
	if err := config.DB.Model(&models.Order{}).
		Where("tenant_id = ?", tenantID).
		Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}

	// Average ticket over completed visits and paid orders
	var paid struct {
		Count int64
		Total int64
	}
	if err := config.DB.Model(&models.Appointment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(price_cents), 0) AS total").
		Where("tenant_id = ? AND status = ?", tenantID, models.StatusCompleted).
		Scan(&paid).Error; err != nil {
		return stats, err
	}
	var paidOrders struct {
		Count int64
		Total int64
	}
	if err := config.DB.Model(&models.Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS total").
		Where("tenant_id = ? AND payment_status = ?", tenantID, models.PaymentPaid).
		Scan(&paidOrders).Error; err != nil {
		return stats, err
	}

	if n := paid.Count + paidOrders.Count; n > 0 {
		stats.AvgTicket = (paid.Total + paidOrders.Total) / n
	}
	return stats, nil
}
