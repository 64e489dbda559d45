package calculation

import (
	"github.com/rpgo/rmd-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// StrategyInput is the shared (market path, lifespan) pair handed to every
// strategy for one trial. Accounts is copied by value, so each simulation
// owns its state.
type StrategyInput struct {
	Accounts domain.AccountState
	StartAge int
	DeathAge int
	Returns  []decimal.Decimal
}

// StrategyOutcome summarizes one strategy simulation at the horizon.
type StrategyOutcome struct {
	TerminalWealth decimal.Decimal
	TotalTaxes     decimal.Decimal
	TotalRMDs      decimal.Decimal
	StepUpBenefit  decimal.Decimal
	Snapshots      []domain.YearSnapshot
}

// TaxStrategy defines the interface for year-by-year account evolution under
// a named withdrawal and conversion policy. Adding a strategy requires only
// a new implementation; the engine runs whatever it is given and never
// inspects concrete types.
type TaxStrategy interface {
	Simulate(input StrategyInput) StrategyOutcome
	GetStrategyName() string
}

var one = decimal.NewFromInt(1)

// returnForYear looks up the year's simple return, assuming 0% beyond the
// generated horizon. A lifespan longer than the supplied sequence is an
// expected condition, not an error.
func returnForYear(returns []decimal.Decimal, year int) decimal.Decimal {
	if year < len(returns) {
		return returns[year]
	}
	return decimal.Zero
}
