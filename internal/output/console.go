package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// ConsoleFormatter renders the projection as a fiscal-year summary table:
// revenue by combination, OPEX, CAPEX, and the funding view.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.CalculationResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "FISCAL YEAR %s PROJECTION\n", result.FiscalYear)
	fmt.Fprintln(&buf, strings.Repeat("=", 70))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "REVENUE BY COMBINATION")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))
	for _, row := range result.Rows {
		fmt.Fprintf(&buf, "%-40s %14s %14s\n",
			row.Dimensions.Key(),
			FormatCurrency(row.TotalRecurring),
			FormatCurrency(row.TotalOneTime))
	}
	fmt.Fprintf(&buf, "%-40s %30s\n", "TOTAL REVENUE", FormatCurrency(result.TotalRevenue))
	if result.TotalPassthrough != 0 {
		fmt.Fprintf(&buf, "%-40s %30s\n", "PASSTHROUGH (zero margin)", FormatCurrency(result.TotalPassthrough))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "MONTHLY REVENUE")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))
	for _, month := range result.Months {
		fmt.Fprintf(&buf, "  %-5s %16s\n", month, FormatCurrency(result.MonthlyTotals[month]))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "OPERATING EXPENSES")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))
	for _, item := range result.OpexItems {
		label := item.Name
		if item.OverrideApplied {
			label += " (override)"
		}
		fmt.Fprintf(&buf, "  %-38s %16s\n", label, FormatCurrency(item.Total))
	}
	fmt.Fprintf(&buf, "  %-38s %16s\n", "TOTAL OPEX", FormatCurrency(result.TotalOpex))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "CAPEX BY GROUP")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))
	for _, group := range domain.CapexGroupHeaders {
		fmt.Fprintf(&buf, "  %-38s %16s\n", group, FormatCurrency(result.CapexGroupTotal[group]))
	}
	fmt.Fprintf(&buf, "  %-38s %16s\n", "TOTAL CAPEX", FormatCurrency(result.TotalCapex))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "CASHFLOW")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))
	fmt.Fprintf(&buf, "  %-38s %16s\n", "Gross inflow", FormatCurrency(result.TotalCashGrossInflow))
	fmt.Fprintf(&buf, "  %-38s %16s\n", "Operating outflow", FormatCurrency(result.TotalCashOutflow))
	fmt.Fprintf(&buf, "  %-38s %16s\n", "Net operating", FormatCurrency(result.TotalCashNetOperating))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "NET CASHFLOW (millions)")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))
	for _, month := range result.Months {
		fmt.Fprintf(&buf, "  %-5s %12s %14s\n", month,
			FormatMillions(result.MonthlyNetCashflow[month]),
			FormatMillions(result.MonthlyCumNetCashflow[month]))
	}
	fmt.Fprintf(&buf, "  %-18s %14s\n", "PEAK FUNDING", FormatMillions(result.PeakFunding))
	fmt.Fprintf(&buf, "  %-18s %14s\n", "FY TOTAL", FormatMillions(result.TotalNetCashflow))

	return buf.Bytes(), nil
}
