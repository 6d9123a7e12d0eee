package output

import (
	"bytes"
	"encoding/csv"

	"github.com/freshbudget/freshbudget/internal/domain"
	"github.com/shopspring/decimal"
)

// CSVFormatter emits one row per line item (revenue combination, OPEX item,
// CAPEX item, cashflow series) with the twelve fiscal months as columns.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.CalculationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := append([]string{"Section", "Line Item"}, result.Months...)
	header = append(header, "Total")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	writeSeries := func(section, name string, monthly map[string]float64, total float64) error {
		row := []string{section, name}
		for _, m := range result.Months {
			row = append(row, fixed(monthly[m]))
		}
		row = append(row, fixed(total))
		return w.Write(row)
	}

	for _, rev := range result.Rows {
		if err := writeSeries("Revenue", rev.Dimensions.Key(), rev.MonthlyRevenue, rev.TotalRevenue); err != nil {
			return nil, err
		}
	}
	if err := writeSeries("Revenue", "Total", result.MonthlyTotals, result.TotalRevenue); err != nil {
		return nil, err
	}
	if result.TotalPassthrough != 0 {
		if err := writeSeries("Revenue", "Passthrough", result.MonthlyPassthroughRevenue, result.TotalPassthrough); err != nil {
			return nil, err
		}
	}

	for _, item := range result.OpexItems {
		if err := writeSeries("Opex", item.Name, item.Monthly, item.Total); err != nil {
			return nil, err
		}
	}
	if err := writeSeries("Opex", "Total", result.MonthlyOpexTotals, result.TotalOpex); err != nil {
		return nil, err
	}

	for _, item := range result.CapexItems {
		if err := writeSeries("Capex", item.Name, item.Monthly, item.Total); err != nil {
			return nil, err
		}
	}
	if err := writeSeries("Capex", "Total", result.MonthlyCapexTotals, result.TotalCapex); err != nil {
		return nil, err
	}

	if err := writeSeries("Cashflow", "Gross Inflow", result.MonthlyCashGrossInflow, result.TotalCashGrossInflow); err != nil {
		return nil, err
	}
	if err := writeSeries("Cashflow", "Outflow", result.MonthlyCashOutflowTotals, result.TotalCashOutflow); err != nil {
		return nil, err
	}
	if err := writeSeries("Cashflow", "Net Operating", result.MonthlyCashNetOperating, result.TotalCashNetOperating); err != nil {
		return nil, err
	}
	if err := writeSeries("Cashflow", "Net (millions)", result.MonthlyNetCashflow, result.TotalNetCashflow); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
