package store

import (
	"context"
	"fmt"
	"math"
)

// StrategySummary aggregates terminal outcomes for one strategy within a
// run. Invalid trials are counted but excluded from every statistic.
type StrategySummary struct {
	Strategy     string
	Count        int
	InvalidCount int
	MeanWealth   float64
	StdWealth    float64
	MinWealth    float64
	MaxWealth    float64
	P10          float64
	P50          float64
	P90          float64
	MeanTaxes    float64
	MeanRMDs     float64
	MeanStepUp   float64
}

// PairedComparison is the head-to-head outcome of two strategies over the
// shared trial ensemble, joined on trial id.
type PairedComparison struct {
	StrategyA string
	StrategyB string
	Trials    int
	AWins     int
	BWins     int
	Ties      int
}

// AWinRate returns the fraction of paired trials strategy A won.
func (p PairedComparison) AWinRate() float64 {
	if p.Trials == 0 {
		return 0
	}
	return float64(p.AWins) / float64(p.Trials)
}

// DeathAgeBucket groups terminal wealth by decade of death age.
type DeathAgeBucket struct {
	Strategy   string
	AgeLow     int
	AgeHigh    int
	Count      int
	MeanWealth float64
}

// StrategySummaries computes per-strategy aggregates for a run.
func (s *Store) StrategySummaries(ctx context.Context, runID string) ([]StrategySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, COUNT(*),
		       AVG(terminal_wealth), AVG(terminal_wealth*terminal_wealth),
		       MIN(terminal_wealth), MAX(terminal_wealth),
		       AVG(total_taxes_paid), AVG(total_rmd_withdrawals), AVG(step_up_benefit)
		FROM results
		WHERE run_id = ? AND valid = 1
		GROUP BY strategy
		ORDER BY strategy`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StrategySummary
	for rows.Next() {
		var sum StrategySummary
		var meanSq float64
		if err := rows.Scan(&sum.Strategy, &sum.Count,
			&sum.MeanWealth, &meanSq, &sum.MinWealth, &sum.MaxWealth,
			&sum.MeanTaxes, &sum.MeanRMDs, &sum.MeanStepUp); err != nil {
			return nil, err
		}
		variance := meanSq - sum.MeanWealth*sum.MeanWealth
		if variance > 0 {
			sum.StdWealth = math.Sqrt(variance)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].InvalidCount, err = s.invalidCount(ctx, runID, out[i].Strategy); err != nil {
			return nil, err
		}
		for _, pct := range []struct {
			p    int
			dest *float64
		}{{10, &out[i].P10}, {50, &out[i].P50}, {90, &out[i].P90}} {
			v, err := s.wealthPercentile(ctx, runID, out[i].Strategy, out[i].Count, pct.p)
			if err != nil {
				return nil, err
			}
			*pct.dest = v
		}
	}
	return out, nil
}

func (s *Store) invalidCount(ctx context.Context, runID, strategy string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM results
		WHERE run_id = ? AND strategy = ? AND valid = 0`, runID, strategy).Scan(&n)
	return n, err
}

// wealthPercentile picks the order statistic at the given percentile of
// valid terminal wealth for one strategy.
func (s *Store) wealthPercentile(ctx context.Context, runID, strategy string, count, percentile int) (float64, error) {
	if count == 0 {
		return 0, nil
	}
	offset := (count - 1) * percentile / 100
	var v float64
	err := s.db.QueryRowContext(ctx, `
		SELECT terminal_wealth FROM results
		WHERE run_id = ? AND strategy = ? AND valid = 1
		ORDER BY terminal_wealth
		LIMIT 1 OFFSET ?`, runID, strategy, offset).Scan(&v)
	return v, err
}

// ComparePaired joins two strategies on trial id and counts per-trial wins
// on terminal wealth. Only trials valid under both strategies count.
func (s *Store) ComparePaired(ctx context.Context, runID, strategyA, strategyB string) (PairedComparison, error) {
	cmp := PairedComparison{StrategyA: strategyA, StrategyB: strategyB}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN a.terminal_wealth > b.terminal_wealth THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN a.terminal_wealth < b.terminal_wealth THEN 1 ELSE 0 END), 0)
		FROM results a
		JOIN results b ON b.run_id = a.run_id AND b.trial_id = a.trial_id
		WHERE a.run_id = ? AND a.strategy = ? AND b.strategy = ?
		  AND a.valid = 1 AND b.valid = 1`,
		runID, strategyA, strategyB,
	).Scan(&cmp.Trials, &cmp.AWins, &cmp.BWins)
	if err != nil {
		return PairedComparison{}, fmt.Errorf("paired comparison %s vs %s: %w", strategyA, strategyB, err)
	}
	cmp.Ties = cmp.Trials - cmp.AWins - cmp.BWins
	return cmp, nil
}

// DeathAgeBuckets breaks mean terminal wealth down by decade of death age.
func (s *Store) DeathAgeBuckets(ctx context.Context, runID string) ([]DeathAgeBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, (death_age/10)*10 AS bucket, COUNT(*), AVG(terminal_wealth)
		FROM results
		WHERE run_id = ? AND valid = 1
		GROUP BY strategy, bucket
		ORDER BY strategy, bucket`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeathAgeBucket
	for rows.Next() {
		var b DeathAgeBucket
		if err := rows.Scan(&b.Strategy, &b.AgeLow, &b.Count, &b.MeanWealth); err != nil {
			return nil, err
		}
		b.AgeHigh = b.AgeLow + 9
		out = append(out, b)
	}
	return out, rows.Err()
}
