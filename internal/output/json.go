package output

import (
	"encoding/json"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// JSONFormatter emits the full result document, indented.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.CalculationResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
