// Package ingest parses the existing-revenue and existing-OPEX upload
// templates from CSV or XLSX into the override records a calculation
// request consumes. Validation is strict: missing columns, unknown revenue
// types and negative or non-numeric values are hard errors, accumulated per
// row and reported together.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// ExistingRevenueRow is one combination+fiscal-year aggregate from the
// existing-revenue template, recurring and one-time months split.
type ExistingRevenueRow struct {
	Dimensions domain.Dimensions  `json:"dimensions"`
	FiscalYear string             `json:"fiscal_year"`
	ExitVolume float64            `json:"exit_volume"`
	Recurring  map[string]float64 `json:"recurring"`
	OneTime    map[string]float64 `json:"one_time"`
}

// OpexOverrideRow is one item+fiscal-year aggregate from the existing-OPEX
// template.
type OpexOverrideRow struct {
	Item       string             `json:"item"`
	FiscalYear string             `json:"fiscal_year"`
	Months     map[string]float64 `json:"months"`
}

// ValidationErrors collects every row-level problem found in an upload. The
// file is rejected as a whole; no partial rows are returned.
type ValidationErrors struct {
	Errors []string
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("upload validation failed: %s", strings.Join(e.Errors, "; "))
}

var existingRequiredColumns = []string{"Customer", "Circle", "Type", "Revenue Type", "Fiscal Year", "Exit Volume"}

var opexRequiredColumns = []string{"Opex Item", "Fiscal Year"}

// ExistingRevenueTemplate returns the CSV header row of the existing-revenue
// upload template.
func ExistingRevenueTemplate() string {
	cols := append([]string{"Customer", "Circle", "Type", "Revenue Type", "Fiscal Year"}, domain.FiscalMonths...)
	cols = append(cols, "Total", "Exit Volume")
	return strings.Join(cols, ",") + "\n"
}

// OpexOverrideTemplate returns the CSV header row of the existing-OPEX
// upload template.
func OpexOverrideTemplate() string {
	cols := append([]string{"Opex Item", "Fiscal Year"}, domain.FiscalMonths...)
	return strings.Join(cols, ",") + "\n"
}

// record is one data row keyed by header name.
type record map[string]string

func checkColumns(header []string, required []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	for _, m := range domain.FiscalMonths {
		if !have[m] {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationErrors{Errors: []string{"Missing columns: " + strings.Join(missing, ", ")}}
	}
	return nil
}

func readCSVRecords(r io.Reader, required []string) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(header) > 0 {
		// Strip a UTF-8 BOM from the first cell.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkColumns(header, required); err != nil {
		return nil, err
	}
	var records []record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rec := make(record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[strings.TrimSpace(h)] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCell(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// parseMonths reads the 12 month cells of one row. Blank cells read as zero;
// non-numeric or negative values append an error and fail the row.
func parseMonths(rec record, rowNum int, errs *[]string) (map[string]float64, bool) {
	months := make(map[string]float64, domain.MonthsPerYear)
	for _, m := range domain.FiscalMonths {
		v, ok := parseCell(rec[m])
		if !ok {
			*errs = append(*errs, fmt.Sprintf("Row %d: non-numeric value for %s", rowNum, m))
			return nil, false
		}
		if v < 0 {
			*errs = append(*errs, fmt.Sprintf("Row %d: negative value for %s", rowNum, m))
			return nil, false
		}
		months[m] = v
	}
	return months, true
}

func normalizeRevenueType(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "recurring":
		return "recurring", true
	case "one time", "one-time", "onetime":
		return "one_time", true
	default:
		return "", false
	}
}

// ParseExistingRevenueCSV parses the existing-revenue template from CSV.
func ParseExistingRevenueCSV(r io.Reader) ([]ExistingRevenueRow, error) {
	records, err := readCSVRecords(r, existingRequiredColumns)
	if err != nil {
		return nil, err
	}
	return aggregateExistingRevenue(records)
}

// ParseOpexOverridesCSV parses the existing-OPEX template from CSV.
func ParseOpexOverridesCSV(r io.Reader) ([]OpexOverrideRow, error) {
	records, err := readCSVRecords(r, opexRequiredColumns)
	if err != nil {
		return nil, err
	}
	return aggregateOpexOverrides(records)
}

func aggregateExistingRevenue(records []record) ([]ExistingRevenueRow, error) {
	var errs []string
	type comboKey struct{ cust, circle, typ, fy string }
	byCombo := make(map[comboKey]*ExistingRevenueRow)
	var order []comboKey

	for i, rec := range records {
		rowNum := i + 1
		cust := strings.TrimSpace(rec["Customer"])
		circle := strings.TrimSpace(rec["Circle"])
		typ := strings.TrimSpace(rec["Type"])
		revType := strings.TrimSpace(rec["Revenue Type"])
		fy := strings.TrimSpace(rec["Fiscal Year"])
		if cust == "" || circle == "" || typ == "" || revType == "" || fy == "" {
			errs = append(errs, fmt.Sprintf("Row %d: blank mandatory field", rowNum))
			continue
		}
		bucket, ok := normalizeRevenueType(revType)
		if !ok {
			errs = append(errs, fmt.Sprintf("Row %d: invalid Revenue Type %q", rowNum, revType))
			continue
		}
		months, ok := parseMonths(rec, rowNum, &errs)
		if !ok {
			continue
		}
		exitVol, ok := parseCell(rec["Exit Volume"])
		if !ok {
			errs = append(errs, fmt.Sprintf("Row %d: invalid Exit Volume", rowNum))
			continue
		}
		if exitVol < 0 {
			errs = append(errs, fmt.Sprintf("Row %d: negative Exit Volume", rowNum))
			continue
		}

		key := comboKey{cust, circle, typ, fy}
		entry := byCombo[key]
		if entry == nil {
			entry = &ExistingRevenueRow{
				Dimensions: domain.Dimensions{"Customer": cust, "Circle": circle, "Type": typ},
				FiscalYear: fy,
				Recurring:  zeroMonths(),
				OneTime:    zeroMonths(),
			}
			byCombo[key] = entry
			order = append(order, key)
		}
		entry.ExitVolume += exitVol
		target := entry.Recurring
		if bucket == "one_time" {
			target = entry.OneTime
		}
		for m, v := range months {
			target[m] += v
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	rows := make([]ExistingRevenueRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byCombo[key])
	}
	return rows, nil
}

func aggregateOpexOverrides(records []record) ([]OpexOverrideRow, error) {
	var errs []string
	type itemKey struct{ item, fy string }
	byItem := make(map[itemKey]map[string]float64)
	var order []itemKey

	for i, rec := range records {
		rowNum := i + 1
		item := strings.TrimSpace(rec["Opex Item"])
		fy := strings.TrimSpace(rec["Fiscal Year"])
		if item == "" || fy == "" {
			errs = append(errs, fmt.Sprintf("Row %d: blank Opex Item or Fiscal Year", rowNum))
			continue
		}
		months, ok := parseMonths(rec, rowNum, &errs)
		if !ok {
			continue
		}
		key := itemKey{item, fy}
		entry := byItem[key]
		if entry == nil {
			entry = zeroMonths()
			byItem[key] = entry
			order = append(order, key)
		}
		for m, v := range months {
			entry[m] += v
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	rows := make([]OpexOverrideRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, OpexOverrideRow{Item: key.item, FiscalYear: key.fy, Months: byItem[key]})
	}
	return rows, nil
}

func zeroMonths() map[string]float64 {
	out := make(map[string]float64, domain.MonthsPerYear)
	for _, m := range domain.FiscalMonths {
		out[m] = 0
	}
	return out
}
