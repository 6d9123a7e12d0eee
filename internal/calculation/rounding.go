package calculation

import "github.com/shopspring/decimal"

// Monetary leaf values are rounded to 2 decimal places, half away from zero,
// before they are summed into any total. Reported totals therefore equal the
// sum of the displayed monthly values exactly.
const moneyPlaces = 2

// Round2 rounds a monetary value to the fixed display precision.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(moneyPlaces).InexactFloat64()
}

// RoundMillions rescales an absolute amount to the millions-denominated
// display unit used by the cashflow report.
func RoundMillions(v float64) float64 {
	return decimal.NewFromFloat(v / 1e6).Round(moneyPlaces).InexactFloat64()
}

// roundSeries rounds every element of a monthly series in place and returns
// the sum of the rounded values.
func roundSeries(series []float64) float64 {
	total := 0.0
	for i, v := range series {
		series[i] = Round2(v)
		total += series[i]
	}
	return Round2(total)
}

// seriesToMap converts a month-indexed slice to the month-name map used in
// results.
func seriesToMap(months []string, series []float64) map[string]float64 {
	out := make(map[string]float64, len(months))
	for i, m := range months {
		out[m] = series[i]
	}
	return out
}

// mapToSeries converts a month-name map to a month-indexed slice, missing
// months as zero.
func mapToSeries(months []string, values map[string]float64) []float64 {
	out := make([]float64, len(months))
	for i, m := range months {
		out[i] = values[m]
	}
	return out
}
