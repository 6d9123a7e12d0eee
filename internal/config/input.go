// Package config loads calculation requests from YAML files and applies the
// payload-level defaults a bare request omits.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// InputParser handles parsing of calculation request files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a calculation request from a YAML file, applies
// defaults and validates it.
func (ip *InputParser) LoadFromFile(filename string) (*domain.CalculationRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var req domain.CalculationRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.ApplyDefaults(&req)
	if err := ip.ValidateRequest(&req); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}
	return &req, nil
}

// ApplyDefaults fills the request gaps a caller may omit: the fiscal month
// sequence and, when asked for, the reference cost catalogs.
func (ip *InputParser) ApplyDefaults(req *domain.CalculationRequest) {
	if len(req.Months) == 0 {
		req.Months = append([]string(nil), domain.FiscalMonths...)
	}
	if req.UseDefaultCatalogs {
		if len(req.OpexItems) == 0 {
			req.OpexItems = domain.DefaultOpexItems()
		}
		if len(req.CapexItems) == 0 {
			req.CapexItems = domain.DefaultCapexItems()
		}
	}
}

// ValidateRequest checks the structural facts the engine relies on. Rates,
// volumes and offsets are deliberately not range-checked here; malformed
// numeric input coerces to zero inside the engine.
func (ip *InputParser) ValidateRequest(req *domain.CalculationRequest) error {
	if req.FiscalYear == "" {
		return fmt.Errorf("fiscal_year is required")
	}
	if len(req.Months) != domain.MonthsPerYear {
		return fmt.Errorf("months must list exactly %d fiscal months, got %d", domain.MonthsPerYear, len(req.Months))
	}
	seen := make(map[string]bool, len(req.Months))
	for _, m := range req.Months {
		if seen[m] {
			return fmt.Errorf("duplicate month %q in month sequence", m)
		}
		seen[m] = true
	}
	for i, combo := range req.Volumes {
		if len(combo.Dimensions) == 0 {
			return fmt.Errorf("volume combination %d has no dimensions", i)
		}
	}
	for i, rate := range req.Rates {
		if len(rate.Dimensions) == 0 {
			return fmt.Errorf("rate entry %d has no dimensions", i)
		}
	}
	return nil
}
