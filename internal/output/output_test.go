package output

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshbudget/freshbudget/internal/domain"
)

func sampleResult() *domain.CalculationResult {
	months := []string{"Apr", "May"}
	dims := domain.Dimensions{"Customer": "Acme", "Circle": "North"}
	return &domain.CalculationResult{
		FiscalYear: "FY26",
		Months:     months,
		Rows: []domain.RevenueRow{{
			Dimensions:     dims,
			MonthlyRevenue: map[string]float64{"Apr": 100, "May": 200},
			TotalRecurring: 250,
			TotalOneTime:   50,
			TotalRevenue:   300,
		}},
		MonthlyTotals:            map[string]float64{"Apr": 100, "May": 200},
		TotalRevenue:             300,
		OpexItems:                []domain.OpexItemResult{{Name: "Network Opex", Monthly: map[string]float64{"Apr": 10}, Total: 10, OverrideApplied: true}},
		MonthlyOpexTotals:        map[string]float64{"Apr": 10},
		TotalOpex:                10,
		CapexItems:               []domain.CapexItemResult{{Name: "OLT", Group: "Inventory Capex", Monthly: map[string]float64{"Apr": 40}, Total: 40}},
		MonthlyCapexTotals:       map[string]float64{"Apr": 40},
		TotalCapex:               40,
		CapexGroupTotal:          map[string]float64{"Inventory Capex": 40},
		MonthlyCashGrossInflow:   map[string]float64{"Apr": 90},
		MonthlyCashOutflowTotals: map[string]float64{"Apr": 10},
		MonthlyCashNetOperating:  map[string]float64{"Apr": 80},
		TotalCashGrossInflow:     90,
		TotalCashOutflow:         10,
		TotalCashNetOperating:    80,
		MonthlyNetCashflow:       map[string]float64{"Apr": 0.00004, "May": -0.00004},
		MonthlyCumNetCashflow:    map[string]float64{"Apr": 0.00004, "May": 0},
		PeakFunding:              -0.00004,
		TotalNetCashflow:         0,
	}
}

func TestGetFormatter(t *testing.T) {
	for _, name := range []string{"console", "csv", "json", ""} {
		f, err := GetFormatter(name)
		require.NoError(t, err, name)
		require.NotNil(t, f)
	}
	_, err := GetFormatter("xml")
	assert.Error(t, err)
}

func TestConsoleFormatterSections(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(sampleResult())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "FISCAL YEAR FY26 PROJECTION")
	assert.Contains(t, text, "REVENUE BY COMBINATION")
	assert.Contains(t, text, "Network Opex (override)")
	assert.Contains(t, text, "PEAK FUNDING")
	assert.Contains(t, text, "300.00")
}

func TestCSVFormatterShape(t *testing.T) {
	out, err := CSVFormatter{}.Format(sampleResult())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)

	require.Equal(t, []string{"Section", "Line Item", "Apr", "May", "Total"}, records[0])

	var sections []string
	for _, rec := range records[1:] {
		sections = append(sections, rec[0])
	}
	assert.Contains(t, sections, "Revenue")
	assert.Contains(t, sections, "Opex")
	assert.Contains(t, sections, "Capex")
	assert.Contains(t, sections, "Cashflow")

	// Revenue combination row carries the canonical dimension key.
	assert.Equal(t, "Circle=North|Customer=Acme", records[1][1])
	assert.Equal(t, "100.00", records[1][2])
	assert.Equal(t, "300.00", records[1][4])
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	out, err := JSONFormatter{}.Format(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"fiscal_year": "FY26"`)
	assert.Contains(t, string(out), `"peak_funding"`)
}
