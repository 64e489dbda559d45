package calculation

import (
	"github.com/rpgo/rmd-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// HoldToDeathStrategy takes only required distributions and leaves the
// taxable account untouched, maximizing the step-up-in-basis benefit for
// heirs.
type HoldToDeathStrategy struct {
	taxes domain.TaxConfig
	rmd   *RMDSchedule
}

// NewHoldToDeathStrategy creates the strategy for the given tax settings.
func NewHoldToDeathStrategy(taxes domain.TaxConfig) *HoldToDeathStrategy {
	return &HoldToDeathStrategy{taxes: taxes, rmd: NewRMDSchedule(taxes.RMDStartAge)}
}

// GetStrategyName returns the name of this strategy.
func (s *HoldToDeathStrategy) GetStrategyName() string {
	return "hold_to_death"
}

// Simulate evolves the accounts year by year until the death age. Each year
// the tax-deferred and taxable balances grow by the year's return (cost
// basis represents dollars paid and never grows), then any required
// distribution is withdrawn from the post-growth tax-deferred balance and
// taxed at the ordinary rate.
func (s *HoldToDeathStrategy) Simulate(input StrategyInput) StrategyOutcome {
	years := input.DeathAge - input.StartAge
	state := input.Accounts

	var totalTaxes, totalRMDs decimal.Decimal
	snapshots := make([]domain.YearSnapshot, 0, years)

	for year := 0; year < years; year++ {
		age := input.StartAge + year + 1 // age at end of year
		ret := returnForYear(input.Returns, year)
		growth := one.Add(ret)

		state.TaxDeferred = state.TaxDeferred.Mul(growth)
		state.Taxable = state.Taxable.Mul(growth)

		rmdTaken := s.rmd.RequiredDistribution(state.TaxDeferred, age)
		var taxesPaid decimal.Decimal
		if rmdTaken.IsPositive() {
			state.TaxDeferred = state.TaxDeferred.Sub(rmdTaken)
			taxesPaid = rmdTaken.Mul(s.taxes.OrdinaryRate)
			totalTaxes = totalTaxes.Add(taxesPaid)
			totalRMDs = totalRMDs.Add(rmdTaken)
		}

		snapshots = append(snapshots, domain.YearSnapshot{
			Year:        year + 1,
			Age:         age,
			TaxDeferred: state.TaxDeferred,
			TaxFree:     state.TaxFree,
			Taxable:     state.Taxable,
			CostBasis:   state.CostBasis,
			RMDTaken:    rmdTaken,
			TaxesPaid:   taxesPaid,
			Return:      ret,
		})
	}

	// At the horizon the remaining tax-deferred balance is fully taxed at
	// the ordinary rate. The taxable account passes with a basis step-up:
	// the eliminated capital-gains tax is reported as a benefit, not
	// subtracted from wealth.
	deferredAfterTax := state.TaxDeferred.Mul(one.Sub(s.taxes.OrdinaryRate))
	unrealizedGain := state.Taxable.Sub(state.CostBasis)
	stepUpBenefit := unrealizedGain.Mul(s.taxes.CapitalGainsRate)

	return StrategyOutcome{
		TerminalWealth: deferredAfterTax.Add(state.Taxable),
		TotalTaxes:     totalTaxes,
		TotalRMDs:      totalRMDs,
		StepUpBenefit:  stepUpBenefit,
		Snapshots:      snapshots,
	}
}
