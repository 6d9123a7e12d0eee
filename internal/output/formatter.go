// Package output renders calculation results for the CLI: a console table,
// a flat CSV export, and raw JSON, behind a pluggable formatter interface.
package output

import (
	"fmt"

	"github.com/freshbudget/freshbudget/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders a calculation result into a byte stream.
type Formatter interface {
	Name() string
	Format(result *domain.CalculationResult) ([]byte, error)
}

// GetFormatter resolves a formatter by name.
func GetFormatter(name string) (Formatter, error) {
	switch name {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatCurrency formats an amount with two fixed decimals.
func FormatCurrency(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatMillions formats a millions-denominated display value.
func FormatMillions(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2) + "M"
}
