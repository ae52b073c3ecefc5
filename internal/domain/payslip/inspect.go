package payslip

// ColumnMatch shows which raw label, if any, supplies a field.
type ColumnMatch struct {
	Field    Field  `json:"field"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required"`
}

// ColumnReport is a dry run of column resolution over one file. DataRows
// counts every row below the header that has cells, including rows whose
// cells are all empty; those are later counted as skipped, not generated.
type ColumnReport struct {
	Labels          []string      `json:"labels"`
	HeaderRow       int           `json:"headerRow"`
	MergedHeader    bool          `json:"mergedHeader"`
	DataRows        int           `json:"dataRows"`
	Matches         []ColumnMatch `json:"matches"`
	MissingRequired []Field       `json:"missingRequired"`
	MissingOptional []Field       `json:"missingOptional"`
}

func InspectTable(table *RawTable) *ColumnReport {
	mapping := ResolveColumns(table.Labels)
	report := &ColumnReport{
		Labels:          table.Labels,
		HeaderRow:       table.HeaderRow + 1,
		MergedHeader:    table.MergedHeader,
		DataRows:        len(table.Rows),
		MissingRequired: mapping.Unresolved(RequiredFields),
		MissingOptional: mapping.Unresolved(OptionalFields),
	}
	for _, f := range AllFields() {
		label, _ := mapping.Label(f)
		report.Matches = append(report.Matches, ColumnMatch{Field: f, Label: label, Required: isRequired(f)})
	}
	return report
}
