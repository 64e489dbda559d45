package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rpgo/rmd-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is the single error kind for fail-fast
// configuration validation. All validation failures wrap it.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Default thresholds applied when the input leaves them unset.
const (
	DefaultRMDStartAge = 73
	DefaultMaxAge      = 100
)

// InputParser handles parsing of simulation configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a simulation configuration from a YAML file,
// applies defaults and validates it.
func (ip *InputParser) LoadFromFile(filename string) (*domain.SimulationConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var cfg domain.SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.ApplyDefaults(&cfg)

	if err := ip.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills thresholds the input left at zero.
func (ip *InputParser) ApplyDefaults(cfg *domain.SimulationConfig) {
	if cfg.Taxes.RMDStartAge == 0 {
		cfg.Taxes.RMDStartAge = DefaultRMDStartAge
	}
	if cfg.Household.MaxAge == 0 {
		cfg.Household.MaxAge = DefaultMaxAge
	}
	if cfg.Household.Gender == "" {
		cfg.Household.Gender = domain.Male
	}
}

// Validate checks the configuration and fails fast on the first problem.
func (ip *InputParser) Validate(cfg *domain.SimulationConfig) error {
	if cfg.Household.StartAge >= cfg.Household.MaxAge {
		return fmt.Errorf("%w: start_age %d must be below max_age %d",
			ErrInvalidConfiguration, cfg.Household.StartAge, cfg.Household.MaxAge)
	}
	if cfg.Household.Gender != domain.Male && cfg.Household.Gender != domain.Female {
		return fmt.Errorf("%w: gender must be M or F, got %q", ErrInvalidConfiguration, cfg.Household.Gender)
	}
	if cfg.Taxes.RMDStartAge < 72 {
		return fmt.Errorf("%w: rmd_start_age %d is below 72, the first Uniform Lifetime Table age",
			ErrInvalidConfiguration, cfg.Taxes.RMDStartAge)
	}
	if !rateInUnitInterval(cfg.Taxes.OrdinaryRate) {
		return fmt.Errorf("%w: ordinary_rate %s outside [0,1]", ErrInvalidConfiguration, cfg.Taxes.OrdinaryRate)
	}
	if !rateInUnitInterval(cfg.Taxes.CapitalGainsRate) {
		return fmt.Errorf("%w: capital_gains_rate %s outside [0,1]", ErrInvalidConfiguration, cfg.Taxes.CapitalGainsRate)
	}
	if cfg.Market.Volatility.IsNegative() {
		return fmt.Errorf("%w: volatility %s must not be negative", ErrInvalidConfiguration, cfg.Market.Volatility)
	}
	if cfg.Simulation.TrialCount <= 0 {
		return fmt.Errorf("%w: trial_count must be positive, got %d", ErrInvalidConfiguration, cfg.Simulation.TrialCount)
	}
	if cfg.Accounts.TaxDeferredBalance.IsNegative() || cfg.Accounts.TaxableBalance.IsNegative() {
		return fmt.Errorf("%w: account balances must not be negative", ErrInvalidConfiguration)
	}
	if cfg.Conversion.AnnualAmount.IsNegative() {
		return fmt.Errorf("%w: conversion annual_amount must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

func rateInUnitInterval(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}
