package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDivisorLookup(t *testing.T) {
	s := NewRMDSchedule(73)

	tests := []struct {
		age  int
		want float64
	}{
		{72, 27.4},
		{73, 26.5},
		{90, 12.2},
		{120, 2.0},
		{121, 2.0}, // clamped to terminal divisor
		{150, 2.0},
		{71, 0},
		{0, 0},
	}
	for _, tt := range tests {
		assert.True(t, decimal.NewFromFloat(tt.want).Equal(s.Divisor(tt.age)),
			"divisor at age %d: want %v got %s", tt.age, tt.want, s.Divisor(tt.age))
	}
}

func TestRequiredDistribution(t *testing.T) {
	s := NewRMDSchedule(73)
	million := decimal.NewFromInt(1_000_000)

	// 1,000,000 / 26.5 at the first required age.
	rmd := s.RequiredDistribution(million, 73)
	assert.InDelta(t, 37735.85, rmd.InexactFloat64(), 0.01)

	// Nothing is required below the start age, whatever the balance.
	assert.True(t, s.RequiredDistribution(million, 72).IsZero())
	assert.True(t, s.RequiredDistribution(decimal.NewFromInt(987654321), 72).IsZero())
	assert.True(t, s.RequiredDistribution(million, 0).IsZero())
}

func TestRequiredDistributionBeyondTable(t *testing.T) {
	s := NewRMDSchedule(73)
	balance := decimal.NewFromInt(100_000)

	// Beyond the table the terminal divisor applies.
	rmd := s.RequiredDistribution(balance, 130)
	assert.True(t, balance.Div(terminalDivisor).Equal(rmd))
}

func TestRequiredDistributionConfigurableStartAge(t *testing.T) {
	s := NewRMDSchedule(75)
	million := decimal.NewFromInt(1_000_000)

	assert.True(t, s.RequiredDistribution(million, 74).IsZero())
	assert.True(t, s.RequiredDistribution(million, 75).IsPositive())
}
