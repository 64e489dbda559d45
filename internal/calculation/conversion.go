package calculation

import (
	"github.com/rpgo/rmd-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// AggressiveConversionStrategy converts the tax-deferred balance into the
// tax-free account ahead of the RMD window, paying ordinary tax on each
// conversion now to shrink the required-distribution burden later.
type AggressiveConversionStrategy struct {
	taxes      domain.TaxConfig
	conversion domain.ConversionConfig
	rmd        *RMDSchedule
}

// NewAggressiveConversionStrategy creates the strategy for the given tax
// and conversion settings.
func NewAggressiveConversionStrategy(taxes domain.TaxConfig, conversion domain.ConversionConfig) *AggressiveConversionStrategy {
	return &AggressiveConversionStrategy{
		taxes:      taxes,
		conversion: conversion,
		rmd:        NewRMDSchedule(taxes.RMDStartAge),
	}
}

// GetStrategyName returns the name of this strategy.
func (s *AggressiveConversionStrategy) GetStrategyName() string {
	return "aggressive_conversion"
}

// Simulate evolves the accounts year by year until the death age. All three
// balances grow by the year's return; while the age is at or below the
// conversion cutoff and the tax-deferred balance is positive, up to the
// annual conversion amount moves to the tax-free account, taxed immediately
// at the ordinary rate. Any required distribution then comes out of the
// remaining tax-deferred balance.
func (s *AggressiveConversionStrategy) Simulate(input StrategyInput) StrategyOutcome {
	years := input.DeathAge - input.StartAge
	state := input.Accounts

	var totalTaxes, totalRMDs decimal.Decimal
	snapshots := make([]domain.YearSnapshot, 0, years)

	for year := 0; year < years; year++ {
		age := input.StartAge + year + 1
		ret := returnForYear(input.Returns, year)
		growth := one.Add(ret)

		state.TaxDeferred = state.TaxDeferred.Mul(growth)
		state.TaxFree = state.TaxFree.Mul(growth)
		state.Taxable = state.Taxable.Mul(growth)

		var taxesPaid decimal.Decimal
		if age <= s.conversion.EndAge && state.TaxDeferred.IsPositive() {
			convert := decimal.Min(s.conversion.AnnualAmount, state.TaxDeferred)
			state.TaxDeferred = state.TaxDeferred.Sub(convert)
			state.TaxFree = state.TaxFree.Add(convert)
			conversionTax := convert.Mul(s.taxes.OrdinaryRate)
			taxesPaid = taxesPaid.Add(conversionTax)
			totalTaxes = totalTaxes.Add(conversionTax)
		}

		rmdTaken := s.rmd.RequiredDistribution(state.TaxDeferred, age)
		if rmdTaken.IsPositive() {
			state.TaxDeferred = state.TaxDeferred.Sub(rmdTaken)
			rmdTax := rmdTaken.Mul(s.taxes.OrdinaryRate)
			taxesPaid = taxesPaid.Add(rmdTax)
			totalTaxes = totalTaxes.Add(rmdTax)
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

	// Terminal wealth: remaining tax-deferred taxed at the ordinary rate,
	// tax-free passes untaxed, taxable passes with the step-up treatment.
	deferredAfterTax := state.TaxDeferred.Mul(one.Sub(s.taxes.OrdinaryRate))
	unrealizedGain := state.Taxable.Sub(state.CostBasis)
	stepUpBenefit := unrealizedGain.Mul(s.taxes.CapitalGainsRate)

	return StrategyOutcome{
		TerminalWealth: deferredAfterTax.Add(state.TaxFree).Add(state.Taxable),
		TotalTaxes:     totalTaxes,
		TotalRMDs:      totalRMDs,
		StepUpBenefit:  stepUpBenefit,
		Snapshots:      snapshots,
	}
}
