package payslip

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

type Format string

const (
	FormatDelimited Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatXLS       Format = "xls"
)

// headerProbeRows bounds the search for the real header in a spreadsheet.
const headerProbeRows = 10

var (
	identityTokens    = []string{"emp", "name", "id"}
	salaryGroupTokens = []string{"fixed", "earned", "deduction"}
	utf8BOM           = []byte{0xEF, 0xBB, 0xBF}
)

// FormatFromFilename maps an upload's extension to a Format.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return FormatDelimited, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// LoadTable reads a fully buffered upload into a RawTable.
func LoadTable(data []byte, format Format) (*RawTable, error) {
	switch format {
	case FormatDelimited:
		grid, err := readDelimited(data)
		if err != nil {
			return nil, err
		}
		if len(grid) == 0 {
			return nil, ErrEmptyTable
		}
		return buildTable(uniqueLabels(grid[0]), grid, 1), nil
	case FormatXLSX:
		grid, err := readXLSX(data)
		if err != nil {
			return nil, err
		}
		return tableFromGrid(grid)
	case FormatXLS:
		grid, err := readXLS(data)
		if err != nil {
			return nil, err
		}
		return tableFromGrid(grid)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// decodeText returns data as UTF-8, falling back to Latin-1.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return decoded, nil
}

func readDelimited(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var grid [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read delimited text: %v", ErrUnreadableFile, err)
		}
		grid = append(grid, record)
	}
	return grid, nil
}

// sniffDelimiter picks the most frequent candidate separator in the first line.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func readXLSX(data []byte) ([][]string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", ErrUnreadableFile, err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyTable
	}
	rows, err := book.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrUnreadableFile, sheet, err)
	}
	return rows, nil
}

// readXLS recovers from parser panics, which malformed BIFF input can cause.
func readXLS(data []byte) (grid [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("%w: xls parser: %v", ErrUnreadableFile, r)
		}
	}()
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open xls: %v", ErrUnreadableFile, err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyTable
	}
	grid = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// tableFromGrid locates the header in a spreadsheet grid, merging a second
// header row when it carries salary group labels.
func tableFromGrid(grid [][]string) (*RawTable, error) {
	if len(grid) == 0 {
		return nil, ErrEmptyTable
	}
	header, ok := detectHeaderRow(grid)
	if !ok {
		return buildTable(uniqueLabels(grid[0]), grid, 1), nil
	}
	if header+1 < len(grid) && rowHasToken(grid[header+1], salaryGroupTokens) {
		labels := uniqueLabels(mergeHeaderRows(grid[header], grid[header+1]))
		table := buildTable(labels, grid, header+2)
		table.HeaderRow = header
		table.MergedHeader = true
		return table, nil
	}
	return buildTable(uniqueLabels(grid[header]), grid, header+1), nil
}

func detectHeaderRow(grid [][]string) (int, bool) {
	for i := 0; i < len(grid) && i < headerProbeRows; i++ {
		if rowHasToken(grid[i], identityTokens) {
			return i, true
		}
	}
	return 0, false
}

func rowHasToken(cells []string, tokens []string) bool {
	for _, cell := range cells {
		label := cleanLabel(cell)
		if isPlaceholder(label) {
			continue
		}
		label = strings.ToLower(label)
		for _, token := range tokens {
			if strings.Contains(label, token) {
				return true
			}
		}
	}
	return false
}

// mergeHeaderRows flattens a two-level header. A blank top cell inherits the
// group label to its left when the cell below it is set, mirroring merged
// group cells. "FIXED" over "FIXED_BASIC" collapses to "FIXED_BASIC".
func mergeHeaderRows(top, bottom []string) []string {
	width := max(len(top), len(bottom))
	out := make([]string, width)
	group := ""
	for col := 0; col < width; col++ {
		upper, lower := "", ""
		if col < len(top) {
			upper = cleanLabel(top[col])
		}
		if col < len(bottom) {
			lower = cleanLabel(bottom[col])
		}
		switch {
		case upper != "":
			group = upper
		case lower != "":
			upper = group
		default:
			group = ""
		}

		var parts []string
		for _, p := range []string{upper, lower} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 2 && strings.EqualFold(parts[0], strings.SplitN(parts[1], "_", 2)[0]) {
			out[col] = parts[1]
			continue
		}
		out[col] = strings.Trim(strings.Join(parts, "_"), "_")
	}
	return out
}
