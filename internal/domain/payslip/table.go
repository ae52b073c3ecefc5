package payslip

import (
	"fmt"
	"strings"
)

// RawRow is one data row keyed by raw column label. Number is the 1-based
// row number in the source, counting header rows.
type RawRow struct {
	Number int
	Values map[string]string
}

// Get returns the cell for label and whether the label exists in the row.
func (r RawRow) Get(label string) (string, bool) {
	if label == "" {
		return "", false
	}
	v, ok := r.Values[label]
	return v, ok
}

// RawTable is the loader output. It is not modified after LoadTable returns.
type RawTable struct {
	Labels       []string
	Rows         []RawRow
	HeaderRow    int
	MergedHeader bool
}

const placeholderPrefix = "Unnamed_"

func placeholderLabel(col int) string {
	return fmt.Sprintf("%s%d", placeholderPrefix, col)
}

func isPlaceholder(label string) bool {
	return label == "" || strings.HasPrefix(label, placeholderPrefix)
}

// cleanLabel strips surrounding whitespace and byte-order marks.
func cleanLabel(s string) string {
	s = strings.ReplaceAll(s, "\ufeff", "")
	return strings.TrimSpace(s)
}

// uniqueLabels fills blanks with placeholders and suffixes repeated labels
// with ".1", ".2", ... in column order.
func uniqueLabels(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, label := range raw {
		label = cleanLabel(label)
		if label == "" {
			label = placeholderLabel(i)
		}
		if n, ok := seen[label]; ok {
			seen[label] = n + 1
			label = fmt.Sprintf("%s.%d", label, n+1)
		} else {
			seen[label] = 0
		}
		out[i] = label
	}
	return out
}

// buildTable turns a header and the data grid below it into a RawTable.
// Rows with no cells at all are gaps in the sheet and are dropped; rows of
// empty cells are kept so the normalizer can count them as skipped.
func buildTable(labels []string, grid [][]string, firstDataRow int) *RawTable {
	table := &RawTable{Labels: labels, HeaderRow: firstDataRow - 1}
	for i := firstDataRow; i < len(grid); i++ {
		cells := grid[i]
		if len(cells) == 0 {
			continue
		}
		values := make(map[string]string, len(labels))
		for col, label := range labels {
			if col < len(cells) {
				values[label] = cells[col]
			} else {
				values[label] = ""
			}
		}
		table.Rows = append(table.Rows, RawRow{Number: i + 1, Values: values})
	}
	return table
}
