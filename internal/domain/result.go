package domain

import (
	"github.com/shopspring/decimal"
)

// AccountState is the mutable balance sheet a strategy evolves year by year.
// CostBasis tracks dollars paid into the taxable account; it never grows with
// the market and only changes if a strategy explicitly realizes gains.
type AccountState struct {
	TaxDeferred decimal.Decimal
	TaxFree     decimal.Decimal
	Taxable     decimal.Decimal
	CostBasis   decimal.Decimal
}

// YearSnapshot records the state at the end of one simulated year.
// Snapshots are append-only and never mutated after creation.
type YearSnapshot struct {
	Year        int             `json:"year"`
	Age         int             `json:"age"`
	TaxDeferred decimal.Decimal `json:"tax_deferred"`
	TaxFree     decimal.Decimal `json:"tax_free"`
	Taxable     decimal.Decimal `json:"taxable"`
	CostBasis   decimal.Decimal `json:"cost_basis"`
	RMDTaken    decimal.Decimal `json:"rmd_taken"`
	TaxesPaid   decimal.Decimal `json:"taxes_paid"`
	Return      decimal.Decimal `json:"return"`
}

// ResultRecord is the terminal summary for one (trial, strategy) pair and the
// unit handed to the persistence and analysis layer. Created once at the end
// of a trial, immutable thereafter.
type ResultRecord struct {
	TrialID        int             `json:"trial_id"`
	Strategy       string          `json:"strategy"`
	DeathAge       int             `json:"death_age"`
	YearsLived     int             `json:"years_lived"`
	TerminalWealth decimal.Decimal `json:"terminal_wealth"`
	TotalTaxes     decimal.Decimal `json:"total_taxes_paid"`
	TotalRMDs      decimal.Decimal `json:"total_rmd_withdrawals"`
	StepUpBenefit  decimal.Decimal `json:"step_up_benefit"`
	// Valid is false when the trial's market path produced a non-finite
	// level; aggregates must exclude such trials.
	Valid bool `json:"valid"`
}
