package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readXLSXRecords reads the first sheet of a workbook into header-keyed
// records, matching the CSV reader's shape.
func readXLSXRecords(r io.Reader, required []string) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if err := checkColumns(header, required); err != nil {
		return nil, err
	}

	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseExistingRevenueXLSX parses the existing-revenue template from the
// first sheet of an XLSX workbook.
func ParseExistingRevenueXLSX(r io.Reader) ([]ExistingRevenueRow, error) {
	records, err := readXLSXRecords(r, existingRequiredColumns)
	if err != nil {
		return nil, err
	}
	return aggregateExistingRevenue(records)
}

// ParseOpexOverridesXLSX parses the existing-OPEX template from the first
// sheet of an XLSX workbook.
func ParseOpexOverridesXLSX(r io.Reader) ([]OpexOverrideRow, error) {
	records, err := readXLSXRecords(r, opexRequiredColumns)
	if err != nil {
		return nil, err
	}
	return aggregateOpexOverrides(records)
}
