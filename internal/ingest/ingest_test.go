package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const existingHeader = "Customer,Circle,Type,Revenue Type,Fiscal Year,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec,Jan,Feb,Mar,Total,Exit Volume"

func TestParseExistingRevenueCSV(t *testing.T) {
	csvData := existingHeader + "\n" +
		"Acme,North,New,Recurring,FY25,1,2,3,0,0,0,0,0,0,0,0,0,6,50\n" +
		"Acme,North,New,One Time,FY25,0,0,9,0,0,0,0,0,0,0,0,0,9,0\n"

	rows, err := ParseExistingRevenueCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1, "Same combination aggregates into one row")

	row := rows[0]
	assert.Equal(t, "Acme", row.Dimensions["Customer"])
	assert.Equal(t, "FY25", row.FiscalYear)
	assert.Equal(t, 50.0, row.ExitVolume)
	assert.Equal(t, 2.0, row.Recurring["May"])
	assert.Equal(t, 9.0, row.OneTime["Jun"])
	assert.Equal(t, 0.0, row.OneTime["May"])
}

func TestParseExistingRevenueCSVDuplicatesSum(t *testing.T) {
	csvData := existingHeader + "\n" +
		"Acme,North,New,Recurring,FY25,1,0,0,0,0,0,0,0,0,0,0,0,1,10\n" +
		"Acme,North,New,Recurring,FY25,2,0,0,0,0,0,0,0,0,0,0,0,2,15\n"

	rows, err := ParseExistingRevenueCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].Recurring["Apr"], "Duplicate rows sum")
	assert.Equal(t, 25.0, rows[0].ExitVolume)
}

func TestParseExistingRevenueCSVMissingColumns(t *testing.T) {
	_, err := ParseExistingRevenueCSV(strings.NewReader("Customer,Circle\nAcme,North\n"))
	require.Error(t, err)
	var verr *ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors[0], "Missing columns")
	assert.Contains(t, verr.Errors[0], "Revenue Type")
}

func TestParseExistingRevenueCSVRowErrors(t *testing.T) {
	csvData := existingHeader + "\n" +
		"Acme,North,New,Subscription,FY25,0,0,0,0,0,0,0,0,0,0,0,0,0,0\n" +
		"Acme,North,New,Recurring,FY25,-1,0,0,0,0,0,0,0,0,0,0,0,0,0\n" +
		"Acme,North,New,Recurring,FY25,abc,0,0,0,0,0,0,0,0,0,0,0,0,0\n" +
		",North,New,Recurring,FY25,0,0,0,0,0,0,0,0,0,0,0,0,0,0\n"

	_, err := ParseExistingRevenueCSV(strings.NewReader(csvData))
	var verr *ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 4, "Every bad row reported, none silently dropped")
	assert.Contains(t, verr.Errors[0], "invalid Revenue Type")
	assert.Contains(t, verr.Errors[1], "negative value for Apr")
	assert.Contains(t, verr.Errors[2], "non-numeric value for Apr")
	assert.Contains(t, verr.Errors[3], "blank mandatory field")
}

func TestParseExistingRevenueCSVBlankCellsReadZero(t *testing.T) {
	csvData := existingHeader + "\n" +
		"Acme,North,New,Recurring,FY25,,,,,,,,,,,,,,\n"

	rows, err := ParseExistingRevenueCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rows[0].Recurring["Apr"])
	assert.Equal(t, 0.0, rows[0].ExitVolume)
}

func TestParseExistingRevenueCSVStripsBOM(t *testing.T) {
	csvData := "\ufeff" + existingHeader + "\n" +
		"Acme,North,New,Recurring,FY25,1,0,0,0,0,0,0,0,0,0,0,0,1,0\n"

	rows, err := ParseExistingRevenueCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParseOpexOverridesCSV(t *testing.T) {
	csvData := "Opex Item,Fiscal Year,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec,Jan,Feb,Mar\n" +
		"Rent,FY25,10,0,0,0,0,0,0,0,0,0,0,0\n" +
		"Rent,FY25,5,0,0,0,0,0,0,0,0,0,0,0\n" +
		"Electricity,FY25,0,7,0,0,0,0,0,0,0,0,0,0\n"

	rows, err := ParseOpexOverridesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rent", rows[0].Item)
	assert.Equal(t, 15.0, rows[0].Months["Apr"], "Duplicate item rows sum")
	assert.Equal(t, 7.0, rows[1].Months["May"])
}

func TestParseOpexOverridesCSVNegativeRejected(t *testing.T) {
	csvData := "Opex Item,Fiscal Year,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec,Jan,Feb,Mar\n" +
		"Rent,FY25,-10,0,0,0,0,0,0,0,0,0,0,0\n"

	_, err := ParseOpexOverridesCSV(strings.NewReader(csvData))
	var verr *ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors[0], "negative value")
}

func TestParseExistingRevenueXLSX(t *testing.T) {
	f := excelize.NewFile()
	header := strings.Split(existingHeader, ",")
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, h))
	}
	data := []any{"Acme", "North", "New", "Recurring", "FY25", 1, 2, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 6, 50}
	for i, v := range data {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ParseExistingRevenueXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].Recurring["Jun"])
	assert.Equal(t, 50.0, rows[0].ExitVolume)
}

func TestTemplates(t *testing.T) {
	assert.True(t, strings.HasPrefix(ExistingRevenueTemplate(), "Customer,Circle,Type,Revenue Type,Fiscal Year,Apr"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(ExistingRevenueTemplate()), "Total,Exit Volume"))
	assert.True(t, strings.HasPrefix(OpexOverrideTemplate(), "Opex Item,Fiscal Year,Apr"))
}
