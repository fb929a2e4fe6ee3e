package service

import (
	"testing"

	"knjizara/internal/app/bookstore/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPricing() *PricingCalculator {
	return NewPricingCalculator(config.ShippingConfig{
		FreeShippingThreshold: 3000,
		StandardShippingCost:  350,
	})
}

// ==================== PricingCalculator Tests ====================

func TestPricingCalculator_BelowThreshold_AddsShipping(t *testing.T) {
	// Arrange
	pricing := newTestPricing()

	// Act
	totals, err := pricing.ComputeTotals([]PricedItem{
		{UnitPrice: 1200, Quantity: 1},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1200.0, totals.Subtotal)
	assert.Equal(t, 350.0, totals.ShippingCost)
	assert.Equal(t, 1550.0, totals.Total)
}

func TestPricingCalculator_AboveThreshold_FreeShipping(t *testing.T) {
	// Arrange
	pricing := newTestPricing()

	// Act
	totals, err := pricing.ComputeTotals([]PricedItem{
		{UnitPrice: 1600, Quantity: 2},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3200.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.ShippingCost)
	assert.Equal(t, 3200.0, totals.Total)
}

func TestPricingCalculator_ExactThreshold_FreeShipping(t *testing.T) {
	// Arrange
	pricing := newTestPricing()

	// Act: порог включительный
	totals, err := pricing.ComputeTotals([]PricedItem{
		{UnitPrice: 1500, Quantity: 2},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3000.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.ShippingCost)
}

func TestPricingCalculator_MultipleItems_SumsPerLine(t *testing.T) {
	// Arrange
	pricing := newTestPricing()

	// Act
	totals, err := pricing.ComputeTotals([]PricedItem{
		{UnitPrice: 450, Quantity: 2},
		{UnitPrice: 890, Quantity: 1},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1790.0, totals.Subtotal)
	assert.Equal(t, 350.0, totals.ShippingCost)
	assert.Equal(t, 2140.0, totals.Total)
}

func TestPricingCalculator_EmptyItems_Error(t *testing.T) {
	// Arrange
	pricing := newTestPricing()

	// Act
	_, err := pricing.ComputeTotals(nil)

	// Assert
	assert.ErrorIs(t, err, ErrEmptyOrder)
}
