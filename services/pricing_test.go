package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"modernmen-backend/models"
)

var testRates = ShippingRates{FlatCents: 999, FreeThresholdCents: 5000}

func TestComputeOrderTotals(t *testing.T) {
	tax := decimal.RequireFromString("0.08")
	lines := []OrderLine{{UnitPriceCents: 1500, Quantity: 2}, {UnitPriceCents: 1000, Quantity: 1}}

	tests := []struct {
		name     string
		lines    []OrderLine
		method   string
		discount int64
		want     OrderTotals
	}{
		{
			name:   "standard shipping below threshold",
			lines:  lines,
			method: models.ShippingStandard,
			want:   OrderTotals{Subtotal: 4000, Tax: 320, Shipping: 999, Total: 5319},
		},
		{
			name:   "express doubles the flat rate",
			lines:  lines,
			method: models.ShippingExpress,
			want:   OrderTotals{Subtotal: 4000, Tax: 320, Shipping: 1998, Total: 6318},
		},
		{
			name:   "pickup is free",
			lines:  lines,
			method: models.ShippingPickup,
			want:   OrderTotals{Subtotal: 4000, Tax: 320, Total: 4320},
		},
		{
			name:   "free shipping at the threshold",
			lines:  []OrderLine{{UnitPriceCents: 2500, Quantity: 2}},
			method: models.ShippingExpress,
			want:   OrderTotals{Subtotal: 5000, Tax: 400, Total: 5400},
		},
		{
			name:   "tax rounds to the nearest cent",
			lines:  []OrderLine{{UnitPriceCents: 1234, Quantity: 1}},
			method: models.ShippingPickup,
			want:   OrderTotals{Subtotal: 1234, Tax: 99, Total: 1333},
		},
		{
			name:     "discount never drives the total negative",
			lines:    []OrderLine{{UnitPriceCents: 500, Quantity: 1}},
			method:   models.ShippingPickup,
			discount: 10000,
			want:     OrderTotals{Subtotal: 500, Tax: 40, Discount: 10000, Total: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOrderTotals(tt.lines, tax, tt.method, testRates, tt.discount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputePayroll(t *testing.T) {
	got := ComputePayroll(PayrollInput{
		RegularMinutes:  2400,
		OvertimeMinutes: 120,
		HourlyRateCents: 2000,
		CommissionRate:  decimal.RequireFromString("0.10"),
		RevenueCents:    50000,
	})

	assert.Equal(t, int64(80000), got.RegularPay)
	assert.Equal(t, int64(6000), got.OvertimePay)
	assert.Equal(t, int64(5000), got.Commission)
	assert.Equal(t, int64(91000), got.Gross)
	assert.Equal(t, int64(10920), got.FederalTax)
	assert.Equal(t, int64(4550), got.StateTax)
	assert.Equal(t, int64(5642), got.SocialSecurity)
	// 1319.5 rounds away from zero
	assert.Equal(t, int64(1320), got.Medicare)
	assert.Equal(t, int64(22432), got.TotalDeductions)
	assert.Equal(t, int64(68568), got.Net)
}

func TestComputePayrollNoHours(t *testing.T) {
	got := ComputePayroll(PayrollInput{HourlyRateCents: 2500, CommissionRate: decimal.Zero})
	assert.Equal(t, PayrollBreakdown{}, got)
}

func TestLoyaltyPointsForSpend(t *testing.T) {
	assert.Equal(t, 35, LoyaltyPointsForSpend(3599, 1))
	assert.Equal(t, 70, LoyaltyPointsForSpend(3500, 2))
	assert.Equal(t, 0, LoyaltyPointsForSpend(99, 1))
	assert.Equal(t, 0, LoyaltyPointsForSpend(5000, 0))
	assert.Equal(t, 0, LoyaltyPointsForSpend(-100, 1))
}

func TestValidateLayout(t *testing.T) {
	assert.NoError(t, ValidateLayout([]byte(`{"components":[{"type":"hero"},{"type":"gallery","props":{"columns":3}}]}`)))
	assert.NoError(t, ValidateLayout([]byte(`{"components":[]}`)))

	for name, raw := range map[string]string{
		"not json":         `{"components":`,
		"not an object":    `[{"type":"hero"}]`,
		"no components":    `{"sections":[]}`,
		"component type":   `{"components":[{"type":3}]}`,
		"component object": `{"components":["hero"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateLayout([]byte(raw)), ErrInvalidInput)
		})
	}
}

func TestApplyRating(t *testing.T) {
	tmpl := &models.EditorTemplate{}
	assert.NoError(t, ApplyRating(tmpl, 5))
	assert.NoError(t, ApplyRating(tmpl, 4))
	assert.NoError(t, ApplyRating(tmpl, 3))
	assert.Equal(t, 3, tmpl.RatingCount)
	assert.InDelta(t, 4.0, tmpl.Rating, 1e-9)

	assert.ErrorIs(t, ApplyRating(tmpl, 0), ErrInvalidInput)
	assert.ErrorIs(t, ApplyRating(tmpl, 6), ErrInvalidInput)
	assert.Equal(t, 3, tmpl.RatingCount)
}
