package payslip

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrUndecodable       = errors.New("input is neither utf-8 nor latin-1 text")
	ErrUnreadableFile    = errors.New("file could not be read as the declared format")
	ErrEmptyTable        = errors.New("table has no header row")
	ErrEmptyBatch        = errors.New("no payslips generated")
	ErrBatchNotFound     = errors.New("payslip batch not found")
	ErrNoDocuments       = errors.New("no payslip documents found")
	ErrConversionFailed  = errors.New("document conversion failed")
	ErrPeriodRequired    = errors.New("pay period is required")
	ErrDuplicateEmployee = errors.New("EMP_ID appears more than once in the file")
)

// presentLabelSample bounds how many raw labels a SchemaError reports.
const presentLabelSample = 20

// SchemaError rejects a whole table because required fields are unresolved.
type SchemaError struct {
	Missing []Field
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required columns missing: %s; file has: %s",
		strings.Join(fieldNames(e.Missing), ", "), strings.Join(e.Present, ", "))
}

// RowError describes one row that could not be turned into a document.
type RowError struct {
	Row    int
	EmpID  string
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.EmpID != "" {
		return fmt.Sprintf("row %d (%s): %s: %v", e.Row, e.EmpID, e.Reason, e.Err)
	}
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Reason, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// EmptyBatchError is returned when a table yielded zero documents.
type EmptyBatchError struct {
	MissingOptional []Field
	Errors          int
	Skipped         int
}

func (e *EmptyBatchError) Error() string {
	if len(e.MissingOptional) > 0 {
		return fmt.Sprintf("%v: missing columns in file: %s", ErrEmptyBatch, strings.Join(fieldNames(e.MissingOptional), ", "))
	}
	return fmt.Sprintf("%v: all rows were skipped (errors=%d, skipped=%d)", ErrEmptyBatch, e.Errors, e.Skipped)
}

func (e *EmptyBatchError) Unwrap() error { return ErrEmptyBatch }

// DistributionError records a failed delivery or upload for a single item.
type DistributionError struct {
	EmpID string
	Op    string
	Err   error
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Op, e.EmpID, e.Err)
}

func (e *DistributionError) Unwrap() error { return e.Err }
