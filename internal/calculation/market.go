package calculation

import (
	"math"
	"math/rand"

	"github.com/rpgo/rmd-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// ReturnPath is one stochastic sequence of annual simple returns. Valid is
// false when compounding produced a non-finite price level; such paths flag
// their trial invalid instead of polluting aggregates.
type ReturnPath struct {
	Returns []decimal.Decimal
	Valid   bool
}

// MarketPathGenerator produces annual return sequences from the exact
// discretized solution of geometric Brownian motion: each year's log-return
// is drawn from N(mu - sigma^2/2, sigma^2). Draws happen in float64 and are
// converted to decimal once they become returns, so identical
// (mu, sigma, T, seed) always yields identical output.
type MarketPathGenerator struct {
	mu    float64
	sigma float64
}

// NewMarketPathGenerator creates a generator for the given market model.
func NewMarketPathGenerator(market domain.MarketConfig) *MarketPathGenerator {
	return &MarketPathGenerator{
		mu:    market.Drift.InexactFloat64(),
		sigma: market.Volatility.InexactFloat64(),
	}
}

// Generate draws one return sequence of length years from rng. With sigma=0
// every year compounds deterministically at mu - sigma^2/2; years=0 yields
// an empty, valid path.
func (g *MarketPathGenerator) Generate(years int, rng *rand.Rand) ReturnPath {
	path := ReturnPath{Returns: make([]decimal.Decimal, years), Valid: true}

	drift := g.mu - 0.5*g.sigma*g.sigma
	cumLog := 0.0
	prevLevel := 1.0
	for t := 0; t < years; t++ {
		cumLog += drift + g.sigma*rng.NormFloat64()
		level := math.Exp(cumLog)
		simple := level/prevLevel - 1.0
		if math.IsNaN(simple) || math.IsInf(simple, 0) || math.IsInf(level, 0) {
			path.Valid = false
			return path
		}
		path.Returns[t] = decimal.NewFromFloat(simple)
		prevLevel = level
	}
	return path
}

// GeneratePaths draws n independent return sequences of length years from a
// generator owned by this call. Deterministic for a fixed
// (mu, sigma, years, n, seed).
func (g *MarketPathGenerator) GeneratePaths(years, n int, seed int64) []ReturnPath {
	rng := rand.New(rand.NewSource(seed))
	paths := make([]ReturnPath, n)
	for i := range paths {
		paths[i] = g.Generate(years, rng)
	}
	return paths
}
