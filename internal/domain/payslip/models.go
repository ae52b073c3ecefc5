package payslip

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID          string `json:"empId"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	UnitName    string `json:"unitName"`
	UAN         string `json:"uan"`
	ESINo       string `json:"esiNo"`
	DOJ         string `json:"doj"`
	BankAccount string `json:"bankAccount"`
	IFSC        string `json:"ifsc"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	BasicDays   string `json:"basicDays"`
	ActualDays  string `json:"actualDays"`
}

// Salary is one pay column of the slip, either fixed (contracted) or earned
// (paid this period).
type Salary struct {
	Basic      decimal.Decimal `json:"basic"`
	DA         decimal.Decimal `json:"da"`
	HRA        decimal.Decimal `json:"hra"`
	LeaveWages decimal.Decimal `json:"leaveWages"`
	Others     decimal.Decimal `json:"others"`
	Bonus      decimal.Decimal `json:"bonus"`
	Total      decimal.Decimal `json:"total"`
}

type Deduction struct {
	PF    decimal.Decimal `json:"pf"`
	ESI   decimal.Decimal `json:"esi"`
	PT    decimal.Decimal `json:"pt"`
	LWF   decimal.Decimal `json:"lwf"`
	Total decimal.Decimal `json:"total"`
}

// PayslipRecord is one normalized row. Amounts are never negative.
type PayslipRecord struct {
	Row         int             `json:"row"`
	Employee    Employee        `json:"employee"`
	Fixed       Salary          `json:"fixed"`
	Earned      Salary          `json:"earned"`
	Deductions  Deduction       `json:"deductions"`
	NetPay      decimal.Decimal `json:"netPay"`
	NetPayWords string          `json:"netPayWords"`
	// Defaulted lists resolved fields whose cell was blank or unparsable.
	Defaulted []Field `json:"defaulted,omitempty"`
}

// Company is printed in the slip header and used to sign emails.
type Company struct {
	Name     string `json:"name" yaml:"name"`
	Address  string `json:"address" yaml:"address"`
	City     string `json:"city" yaml:"city"`
	LogoPath string `json:"-" yaml:"logoPath"`
	Logo     []byte `json:"-" yaml:"-"`
}

// BatchItem pairs a record with the storage key of its document.
type BatchItem struct {
	Record      PayslipRecord `json:"record"`
	DocumentKey string        `json:"documentKey"`
}

// Failure is a row that was counted as an error.
type Failure struct {
	Row    int    `json:"row"`
	EmpID  string `json:"empId,omitempty"`
	Reason string `json:"reason"`
}

// GenerationBatch is the result of processing one uploaded table. It is
// owned by the request that created it and looked up later by ID.
type GenerationBatch struct {
	ID              string      `json:"id"`
	Period          string      `json:"period"`
	SourceName      string      `json:"sourceName"`
	CreatedAt       time.Time   `json:"createdAt"`
	Items           []BatchItem `json:"items"`
	Failures        []Failure   `json:"failures"`
	Errors          int         `json:"errors"`
	Skipped         int         `json:"skipped"`
	MissingOptional []Field     `json:"missingOptional"`
}

// PreviewRow is the per-record summary returned to the uploader.
type PreviewRow struct {
	EmpID       string          `json:"empId"`
	Name        string          `json:"name"`
	Designation string          `json:"designation"`
	Email       string          `json:"email"`
	NetPay      decimal.Decimal `json:"netPay"`
	DocumentKey string          `json:"documentKey"`
}

func (b *GenerationBatch) Preview() []PreviewRow {
	out := make([]PreviewRow, 0, len(b.Items))
	for _, item := range b.Items {
		emp := item.Record.Employee
		out = append(out, PreviewRow{
			EmpID:       emp.ID,
			Name:        emp.Name,
			Designation: emp.Designation,
			Email:       emp.Email,
			NetPay:      item.Record.NetPay,
			DocumentKey: item.DocumentKey,
		})
	}
	return out
}

// Warning describes optional columns that were not found, or "" if none.
func (b *GenerationBatch) Warning() string {
	if len(b.MissingOptional) == 0 {
		return ""
	}
	return "columns not found, these fields will be empty in the payslips: " + strings.Join(fieldNames(b.MissingOptional), ", ")
}
