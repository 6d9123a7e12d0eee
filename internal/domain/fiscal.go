// Package domain defines the data structures shared by the projection engine,
// the input parser, the HTTP API and the report formatters.
package domain

// FiscalMonths is the fixed fiscal-year month order. The planning year starts
// in April and ends in March.
var FiscalMonths = []string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}

// MonthsPerYear is the number of fiscal months in a planning year.
const MonthsPerYear = 12

// MonthIndex returns the 0-based fiscal index of a month abbreviation
// (Apr=0 .. Mar=11), or -1 if the name is not a fiscal month.
func MonthIndex(name string) int {
	for i, m := range FiscalMonths {
		if m == name {
			return i
		}
	}
	return -1
}
