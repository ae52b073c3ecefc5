package payslip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatFromFilename(t *testing.T) {
	for name, want := range map[string]Format{
		"pay.csv":  FormatDelimited,
		"PAY.XLSX": FormatXLSX,
		"old.xls":  FormatXLS,
	} {
		got, err := FormatFromFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := FormatFromFilename("pay.pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadTableCSV(t *testing.T) {
	table, err := LoadTable([]byte(sampleCSV), FormatDelimited)
	require.NoError(t, err)

	assert.Equal(t, flatLabels, table.Labels)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, 2, table.Rows[0].Number)
	v, ok := table.Rows[0].Get("NAME")
	assert.True(t, ok)
	assert.Equal(t, "Asha Rao", v)
}

func TestLoadTableLatin1Semicolon(t *testing.T) {
	data := []byte("EMP_ID;NAME\n7;Jos\xe9\n")

	table, err := LoadTable(data, FormatDelimited)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "José", table.Rows[0].Values["NAME"])
}

func TestLoadTableDuplicateAndBlankLabels(t *testing.T) {
	table, err := LoadTable([]byte("\ufeffEMP_ID,,HRA,HRA\n1,x,2,3\n"), FormatDelimited)
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP_ID", "Unnamed_1", "HRA", "HRA.1"}, table.Labels)
}

func TestLoadTableEmptyInput(t *testing.T) {
	_, err := LoadTable(nil, FormatDelimited)
	assert.True(t, errors.Is(err, ErrEmptyTable))
}

func TestLoadTableUnreadableWorkbook(t *testing.T) {
	_, err := LoadTable([]byte("not a zip"), FormatXLSX)
	assert.True(t, errors.Is(err, ErrUnreadableFile))
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadTableXLSXFindsHeaderBelowTitle(t *testing.T) {
	data := workbook(t,
		[]any{"Salary register"},
		[]any{"EMP_ID", "NAME", "NET_PAY"},
		[]any{101, "Asha Rao", 13905},
	)

	table, err := LoadTable(data, FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, 1, table.HeaderRow)
	assert.False(t, table.MergedHeader)
	assert.Equal(t, []string{"EMP_ID", "NAME", "NET_PAY"}, table.Labels)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "101", table.Rows[0].Values["EMP_ID"])
	assert.Equal(t, 3, table.Rows[0].Number)
}

func TestLoadTableXLSXMergesGroupedHeader(t *testing.T) {
	data := workbook(t,
		[]any{"Salary register"},
		[]any{"EMP_ID", "NAME", "FIXED", "", "", "", "EARNED", "", "", "", "DEDUCTIONS", "", "", "", "NET_PAY"},
		[]any{"", "", "FIXED_BASIC", "FIXED_DA", "FIXED_HRA", "FIXED_TOTAL", "EARNED_BASIC", "EARNED_DA", "EARNED_HRA", "EARNED_TOTAL", "PF", "ESI", "PT", "TOTAL"},
		[]any{101, "Asha Rao", 10000, 5000, 2000, 17000, 9000, 4500, 1800, 15300, 1080, 115, 200, 1395, 13905},
	)

	table, err := LoadTable(data, FormatXLSX)
	require.NoError(t, err)

	assert.True(t, table.MergedHeader)
	assert.Equal(t, []string{
		"EMP_ID", "NAME",
		"FIXED_BASIC", "FIXED_DA", "FIXED_HRA", "FIXED_TOTAL",
		"EARNED_BASIC", "EARNED_DA", "EARNED_HRA", "EARNED_TOTAL",
		"DEDUCTIONS_PF", "DEDUCTIONS_ESI", "DEDUCTIONS_PT", "DEDUCTIONS_TOTAL",
		"NET_PAY",
	}, table.Labels)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 4, table.Rows[0].Number)

	_, err = ValidateSchema(ResolveColumns(table.Labels), table.Labels)
	assert.NoError(t, err)
}

func TestMergeHeaderRows(t *testing.T) {
	got := mergeHeaderRows(
		[]string{"EMP_ID", "SALARY", "", "REMARKS"},
		[]string{"", "BASIC", "DA"},
	)
	assert.Equal(t, []string{"EMP_ID", "SALARY_BASIC", "SALARY_DA", "REMARKS"}, got)
}
