package services

import (
	"github.com/shopspring/decimal"

	"modernmen-backend/models"
)

var (
	overtimeMultiplier = decimal.RequireFromString("1.5")
	federalTaxRate     = decimal.RequireFromString("0.12")
	stateTaxRate       = decimal.RequireFromString("0.05")
	socialSecurityRate = decimal.RequireFromString("0.062")
	medicareRate       = decimal.RequireFromString("0.0145")
	minutesPerHour     = decimal.NewFromInt(60)
)

// cents rounds half away from zero to a whole cent.
func cents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

type OrderLine struct {
	UnitPriceCents int64
	Quantity       int
}

type OrderTotals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

type ShippingRates struct {
	FlatCents          int64
	FreeThresholdCents int64
}

// ComputeOrderTotals prices an order. Total never goes below zero.
func ComputeOrderTotals(lines []OrderLine, taxRate decimal.Decimal, method string, rates ShippingRates, discountCents int64) OrderTotals {
	var t OrderTotals
	for _, l := range lines {
		t.Subtotal += l.UnitPriceCents * int64(l.Quantity)
	}
	t.Tax = cents(decimal.NewFromInt(t.Subtotal).Mul(taxRate))
	t.Shipping = shippingCost(t.Subtotal, method, rates)
	t.Discount = max(discountCents, 0)
	t.Total = max(t.Subtotal+t.Tax+t.Shipping-t.Discount, 0)
	return t
}

func shippingCost(subtotal int64, method string, rates ShippingRates) int64 {
	if method == models.ShippingPickup {
		return 0
	}
	if rates.FreeThresholdCents > 0 && subtotal >= rates.FreeThresholdCents {
		return 0
	}
	if method == models.ShippingExpress {
		return rates.FlatCents * 2
	}
	return rates.FlatCents
}

type PayrollInput struct {
	RegularMinutes  int
	OvertimeMinutes int
	HourlyRateCents int64
	CommissionRate  decimal.Decimal
	RevenueCents    int64
}

type PayrollBreakdown struct {
	RegularPay      int64
	OvertimePay     int64
	Commission      int64
	Gross           int64
	FederalTax      int64
	StateTax        int64
	SocialSecurity  int64
	Medicare        int64
	TotalDeductions int64
	Net             int64
}

// ComputePayroll derives pay for one period. Each deduction is rounded to
// the cent on its own before being summed.
func ComputePayroll(in PayrollInput) PayrollBreakdown {
	rate := decimal.NewFromInt(in.HourlyRateCents)
	var b PayrollBreakdown

	b.RegularPay = cents(rate.Mul(decimal.NewFromInt(int64(in.RegularMinutes))).Div(minutesPerHour))
	b.OvertimePay = cents(rate.Mul(overtimeMultiplier).Mul(decimal.NewFromInt(int64(in.OvertimeMinutes))).Div(minutesPerHour))
	b.Commission = cents(decimal.NewFromInt(in.RevenueCents).Mul(in.CommissionRate))
	b.Gross = b.RegularPay + b.OvertimePay + b.Commission

	gross := decimal.NewFromInt(b.Gross)
	b.FederalTax = cents(gross.Mul(federalTaxRate))
	b.StateTax = cents(gross.Mul(stateTaxRate))
	b.SocialSecurity = cents(gross.Mul(socialSecurityRate))
	b.Medicare = cents(gross.Mul(medicareRate))
	b.TotalDeductions = b.FederalTax + b.StateTax + b.SocialSecurity + b.Medicare
	b.Net = b.Gross - b.TotalDeductions
	return b
}

// LoyaltyPointsForSpend converts spend to points at the configured rate per
// whole currency unit.
func LoyaltyPointsForSpend(spentCents int64, pointsPerUnit int) int {
	if spentCents <= 0 || pointsPerUnit <= 0 {
		return 0
	}
	return int(spentCents/100) * pointsPerUnit
}
