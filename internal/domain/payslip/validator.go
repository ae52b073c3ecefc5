package payslip

// ValidateSchema checks that every required field is resolved. It returns a
// *SchemaError listing all missing fields and a sample of the labels present.
// Optional fields that did not resolve are returned for warnings.
func ValidateSchema(mapping ColumnMapping, labels []string) (missingOptional []Field, err error) {
	missing := mapping.Unresolved(RequiredFields)
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Present: sampleLabels(labels, presentLabelSample)}
	}
	return mapping.Unresolved(OptionalFields), nil
}

func sampleLabels(labels []string, n int) []string {
	out := make([]string, 0, min(len(labels), n))
	for _, label := range labels {
		if len(out) == n {
			break
		}
		if isPlaceholder(label) {
			continue
		}
		out = append(out, label)
	}
	return out
}
