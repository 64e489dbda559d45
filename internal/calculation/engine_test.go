package calculation

import (
	"context"
	"testing"

	"github.com/rpgo/rmd-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *domain.SimulationConfig {
	return &domain.SimulationConfig{
		Household: domain.HouseholdConfig{StartAge: 65, Gender: domain.Male, MaxAge: 100},
		Accounts: domain.AccountsConfig{
			TaxDeferredBalance: decimal.NewFromInt(1_000_000),
			TaxableBalance:     decimal.NewFromInt(500_000),
			TaxableCostBasis:   decimal.NewFromInt(200_000),
		},
		Taxes: domain.TaxConfig{
			OrdinaryRate:     decimal.NewFromFloat(0.24),
			CapitalGainsRate: decimal.NewFromFloat(0.15),
			RMDStartAge:      73,
		},
		Market: domain.MarketConfig{
			Drift:      decimal.NewFromFloat(0.07),
			Volatility: decimal.NewFromFloat(0.16),
		},
		Conversion: domain.ConversionConfig{
			AnnualAmount: decimal.NewFromInt(100_000),
			EndAge:       72,
		},
		Simulation: domain.RunConfig{TrialCount: 200, Seed: 42},
	}
}

func TestEngineEmitsOneRecordPerTrialStrategy(t *testing.T) {
	cfg := testConfig()
	engine := NewSimulationEngine(cfg)

	records, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, cfg.Simulation.TrialCount*2)

	seen := make(map[string]map[int]int) // strategy -> trial -> count
	for _, r := range records {
		if seen[r.Strategy] == nil {
			seen[r.Strategy] = make(map[int]int)
		}
		seen[r.Strategy][r.TrialID]++
	}
	require.Len(t, seen, 2)
	for strategy, trials := range seen {
		require.Len(t, trials, cfg.Simulation.TrialCount, "strategy %s", strategy)
		for trial, count := range trials {
			assert.Equal(t, 1, count, "strategy %s trial %d", strategy, trial)
		}
	}
}

// The same market path and death age must be reused across every strategy
// for a given trial index.
func TestEnginePairingInvariant(t *testing.T) {
	cfg := testConfig()
	engine := NewSimulationEngine(cfg)

	records, err := engine.Run(context.Background())
	require.NoError(t, err)

	type lifespan struct{ deathAge, yearsLived int }
	byTrial := make(map[int]map[string]lifespan)
	for _, r := range records {
		if byTrial[r.TrialID] == nil {
			byTrial[r.TrialID] = make(map[string]lifespan)
		}
		byTrial[r.TrialID][r.Strategy] = lifespan{r.DeathAge, r.YearsLived}
	}

	for trial, strategies := range byTrial {
		var first *lifespan
		for strategy, ls := range strategies {
			ls := ls
			if first == nil {
				first = &ls
				continue
			}
			require.Equal(t, *first, ls, "trial %d strategy %s diverges from its pair", trial, strategy)
		}
	}
}

func TestEngineDeterminism(t *testing.T) {
	cfg := testConfig()

	a, err := NewSimulationEngine(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := NewSimulationEngine(cfg).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, a, b, "identical (config, seed) must reproduce identical records")
}

func TestEngineWorkerCountDoesNotChangeResults(t *testing.T) {
	serial := testConfig()
	serial.Simulation.Workers = 1
	parallel := testConfig()
	parallel.Simulation.Workers = 16

	a, err := NewSimulationEngine(serial).Run(context.Background())
	require.NoError(t, err)
	b, err := NewSimulationEngine(parallel).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestEngineSeedChangesResults(t *testing.T) {
	cfg := testConfig()
	other := testConfig()
	other.Simulation.Seed = 43

	a, err := NewSimulationEngine(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := NewSimulationEngine(other).Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEngineCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TrialCount = 5000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulationEngine(cfg).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineFlagsNonFiniteTrials(t *testing.T) {
	cfg := testConfig()
	cfg.Market.Drift = decimal.NewFromFloat(1e300)
	cfg.Simulation.TrialCount = 10

	records, err := NewSimulationEngine(cfg).Run(context.Background())
	require.NoError(t, err)
	for _, r := range records {
		assert.False(t, r.Valid, "trial %d should be flagged invalid", r.TrialID)
	}
}

// fixedWealthStrategy exercises the open strategy set: the engine must run
// any Simulate implementation without modification.
type fixedWealthStrategy struct{ wealth decimal.Decimal }

func (f fixedWealthStrategy) GetStrategyName() string { return "fixed_wealth" }

func (f fixedWealthStrategy) Simulate(input StrategyInput) StrategyOutcome {
	return StrategyOutcome{TerminalWealth: f.wealth}
}

func TestEngineAcceptsCustomStrategies(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TrialCount = 25
	custom := fixedWealthStrategy{wealth: decimal.NewFromInt(123)}

	engine := NewSimulationEngine(cfg, NewHoldToDeathStrategy(cfg.Taxes), custom)
	records, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 50)

	found := 0
	for _, r := range records {
		if r.Strategy == "fixed_wealth" {
			found++
			assert.True(t, decimal.NewFromInt(123).Equal(r.TerminalWealth))
		}
	}
	assert.Equal(t, 25, found)
}
