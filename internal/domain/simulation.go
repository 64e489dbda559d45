package domain

import (
	"github.com/shopspring/decimal"
)

// Gender selects which column of the mortality table applies.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// SimulationConfig is the full parameter set for one Monte Carlo run.
// It is constructed once (normally from YAML) and read-only thereafter.
type SimulationConfig struct {
	Household  HouseholdConfig  `yaml:"household" json:"household"`
	Accounts   AccountsConfig   `yaml:"accounts" json:"accounts"`
	Taxes      TaxConfig        `yaml:"taxes" json:"taxes"`
	Market     MarketConfig     `yaml:"market" json:"market"`
	Conversion ConversionConfig `yaml:"conversion" json:"conversion"`
	Simulation RunConfig        `yaml:"simulation" json:"simulation"`
}

// HouseholdConfig describes the account holder.
type HouseholdConfig struct {
	StartAge int    `yaml:"start_age" json:"start_age"`
	Gender   Gender `yaml:"gender" json:"gender"`
	MaxAge   int    `yaml:"max_age" json:"max_age"`
}

// AccountsConfig holds the initial balances.
type AccountsConfig struct {
	TaxDeferredBalance decimal.Decimal `yaml:"tax_deferred_balance" json:"tax_deferred_balance"`
	TaxableBalance     decimal.Decimal `yaml:"taxable_balance" json:"taxable_balance"`
	TaxableCostBasis   decimal.Decimal `yaml:"taxable_cost_basis" json:"taxable_cost_basis"`
}

// TaxConfig holds the flat tax rates and the RMD threshold.
type TaxConfig struct {
	OrdinaryRate     decimal.Decimal `yaml:"ordinary_rate" json:"ordinary_rate"`
	CapitalGainsRate decimal.Decimal `yaml:"capital_gains_rate" json:"capital_gains_rate"`
	RMDStartAge      int             `yaml:"rmd_start_age" json:"rmd_start_age"`
}

// MarketConfig parameterizes the lognormal growth model.
type MarketConfig struct {
	Drift      decimal.Decimal `yaml:"drift" json:"drift"`
	Volatility decimal.Decimal `yaml:"volatility" json:"volatility"`
}

// ConversionConfig parameterizes the aggressive conversion strategy.
type ConversionConfig struct {
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	EndAge       int             `yaml:"end_age" json:"end_age"`
}

// RunConfig controls ensemble size and reproducibility.
type RunConfig struct {
	TrialCount int   `yaml:"trial_count" json:"trial_count"`
	Seed       int64 `yaml:"seed" json:"seed"`
	// Workers bounds parallel trial execution; 0 means a default bound.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`
}
