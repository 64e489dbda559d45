package calculation

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/rpgo/rmd-simulator/internal/domain"
)

// defaultWorkers bounds concurrent trial execution when the configuration
// does not say otherwise.
const defaultWorkers = 10

// SimulationEngine orchestrates the Monte Carlo ensemble. For each trial
// index it draws one death age and one market path, then runs every
// configured strategy against that shared pair. The pairing is what makes
// per-trial head-to-head strategy comparisons statistically meaningful.
type SimulationEngine struct {
	config     *domain.SimulationConfig
	market     *MarketPathGenerator
	mortality  *MortalityModel
	strategies []TaxStrategy
	Logger     Logger
}

// NewSimulationEngine creates an engine for the given configuration. With no
// explicit strategies the two shipped strategies are compared.
func NewSimulationEngine(cfg *domain.SimulationConfig, strategies ...TaxStrategy) *SimulationEngine {
	if len(strategies) == 0 {
		strategies = []TaxStrategy{
			NewHoldToDeathStrategy(cfg.Taxes),
			NewAggressiveConversionStrategy(cfg.Taxes, cfg.Conversion),
		}
	}
	return &SimulationEngine{
		config:     cfg,
		market:     NewMarketPathGenerator(cfg.Market),
		mortality:  NewMortalityModel(cfg.Household.MaxAge),
		strategies: strategies,
		Logger:     NopLogger{},
	}
}

// SetLogger sets the logger. A nil logger restores the no-op default.
func (e *SimulationEngine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Strategies returns the strategies this engine compares, in run order.
func (e *SimulationEngine) Strategies() []TaxStrategy {
	return e.strategies
}

// deriveTrialSeed hashes the base seed and trial id into the sub-seed for
// that trial's generator. Every trial owns its own generator, so the
// ensemble is byte-identical for a fixed (config, seed) no matter how the
// trials are scheduled across workers.
func deriveTrialSeed(base int64, trial int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(base))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(trial))
	h := fnv.New64a()
	h.Write(buf[:])
	return int64(h.Sum64())
}

// Run executes the full ensemble and returns one ResultRecord per
// (trial, strategy), ordered by trial then strategy. Trials whose market
// path went non-finite are emitted with Valid=false and zero money fields.
// Cancellation aborts the run as a whole.
func (e *SimulationEngine) Run(ctx context.Context) ([]domain.ResultRecord, error) {
	cfg := e.config
	trials := cfg.Simulation.TrialCount
	startAge := cfg.Household.StartAge
	horizon := cfg.Household.MaxAge - startAge
	perTrial := len(e.strategies)

	cdf := e.mortality.DeathCDF(startAge, cfg.Household.Gender)
	initial := domain.AccountState{
		TaxDeferred: cfg.Accounts.TaxDeferredBalance,
		Taxable:     cfg.Accounts.TaxableBalance,
		CostBasis:   cfg.Accounts.TaxableCostBasis,
	}

	workers := cfg.Simulation.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	e.Logger.Infof("running %d trials x %d strategies (seed %d, horizon %d years)",
		trials, perTrial, cfg.Simulation.Seed, horizon)

	records := make([]domain.ResultRecord, trials*perTrial)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := 0; i < trials; i++ {
		wg.Add(1)
		go func(trial int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			rng := rand.New(rand.NewSource(deriveTrialSeed(cfg.Simulation.Seed, trial)))
			deathAge := cdf.Sample(rng.Float64())
			path := e.market.Generate(horizon, rng)

			yearsLived := deathAge - startAge
			returns := path.Returns
			if yearsLived < len(returns) {
				returns = returns[:yearsLived]
			}

			for s, strategy := range e.strategies {
				rec := domain.ResultRecord{
					TrialID:    trial,
					Strategy:   strategy.GetStrategyName(),
					DeathAge:   deathAge,
					YearsLived: yearsLived,
					Valid:      path.Valid,
				}
				if path.Valid {
					out := strategy.Simulate(StrategyInput{
						Accounts: initial,
						StartAge: startAge,
						DeathAge: deathAge,
						Returns:  returns,
					})
					rec.TerminalWealth = out.TerminalWealth
					rec.TotalTaxes = out.TotalTaxes
					rec.TotalRMDs = out.TotalRMDs
					rec.StepUpBenefit = out.StepUpBenefit
				} else {
					e.Logger.Warnf("trial %d: non-finite market path, flagged invalid", trial)
				}
				records[trial*perTrial+s] = rec
			}
		}(i)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
