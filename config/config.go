// Package config loads run configuration for the fund engine binaries.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/fund-engine/fund"
)

// Config is the complete configuration for a batch unitisation run.
type Config struct {
	Fund   FundConfig   `json:"fund" yaml:"fund"`
	Quotes Quotes       `json:"quotes" yaml:"quotes"`
	Inputs InputsConfig `json:"inputs" yaml:"inputs"`
	Output OutputConfig `json:"output" yaml:"output"`
}

// FundConfig contains the opening fund state.
type FundConfig struct {
	OpeningUnits      float64 `json:"opening_units" yaml:"opening_units"`
	OpeningNAVPerUnit float64 `json:"opening_nav_per_unit" yaml:"opening_nav_per_unit"`
	BaseCurrency      string  `json:"base_currency" yaml:"base_currency"`
}

// Quotes maps dealing dates (YYYY-MM-DD) to NAV-per-unit values. In real
// operations these come from the NAV pack for each dealing date.
type Quotes map[string]float64

// InputsConfig contains source file paths.
type InputsConfig struct {
	Transactions string `json:"transactions" yaml:"transactions"`
	Positions    string `json:"positions,omitempty" yaml:"positions,omitempty"`
	Liabilities  string `json:"liabilities,omitempty" yaml:"liabilities,omitempty"`
}

// OutputConfig contains report output settings.
type OutputConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Fund.BaseCurrency == "" {
		c.Fund.BaseCurrency = "USD"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "outputs"
	}
}

// Validate checks the configuration for obvious data errors. Quote
// positivity is deliberately NOT checked here: the engine owns that rule
// and reports it per offending date.
func (c *Config) Validate() error {
	if c.Fund.OpeningUnits < 0 {
		return &fund.ArgumentError{
			Name:   "fund.opening_units",
			Value:  fmt.Sprintf("%v", c.Fund.OpeningUnits),
			Reason: "must not be negative",
		}
	}
	for date := range c.Quotes {
		if _, err := fund.ParseDate(date); err != nil {
			return fmt.Errorf("quotes: %w", err)
		}
	}
	return nil
}

// Opening returns the opening fund state as engine types.
func (c *Config) Opening() fund.Opening {
	return fund.Opening{
		Units:      decimal.NewFromFloat(c.Fund.OpeningUnits),
		NAVPerUnit: decimal.NewFromFloat(c.Fund.OpeningNAVPerUnit),
	}
}

// NAVTable returns the quote table as engine types. Validate has already
// checked the date keys parse.
func (c *Config) NAVTable() fund.NAVTable {
	table := make(fund.NAVTable, len(c.Quotes))
	for date, navpu := range c.Quotes {
		d, err := fund.ParseDate(date)
		if err != nil {
			continue // unreachable after Validate
		}
		table[d] = decimal.NewFromFloat(navpu)
	}
	return table
}
