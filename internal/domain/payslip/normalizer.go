package payslip

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Attendance cells fall back to a full month when blank.
const defaultDays = "31"

// Normalizer turns raw rows into PayslipRecords using a resolved mapping.
type Normalizer struct {
	mapping ColumnMapping
}

func NewNormalizer(mapping ColumnMapping) *Normalizer {
	return &Normalizer{mapping: mapping}
}

// Normalize converts one row. ok is false for blank or separator rows, which
// carry no EMP_ID or NAME. A non-nil error is always a *RowError; the caller
// counts it and moves on to the next row.
func (n *Normalizer) Normalize(row RawRow) (rec PayslipRecord, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, ok = PayslipRecord{}, false
			err = &RowError{Row: row.Number, Reason: "normalize", Err: fmt.Errorf("%v", r)}
		}
	}()

	c := cellReader{mapping: n.mapping, row: row}
	empID := c.numberOrText(FieldEmpID)
	name := c.text(FieldName)
	if empID == "" || name == "" {
		return PayslipRecord{}, false, nil
	}

	rec = PayslipRecord{
		Row: row.Number,
		Employee: Employee{
			ID:          empID,
			Name:        name,
			Designation: c.text(FieldDesignation),
			UnitName:    c.text(FieldUnitName),
			UAN:         c.identifier(FieldUAN),
			ESINo:       c.numberOrText(FieldESINo),
			DOJ:         c.date(FieldDOJ),
			BankAccount: c.identifier(FieldBankAC),
			IFSC:        c.text(FieldIFSC),
			Email:       c.text(FieldEmail),
			Phone:       c.numberOrText(FieldPhone),
			BasicDays:   c.days(FieldBasicDays),
			ActualDays:  c.days(FieldActualDays),
		},
	}

	rec.Fixed = Salary{
		Basic: c.amount(FieldFixedBasic),
		DA:    c.amount(FieldFixedDA),
		HRA:   c.amount(FieldFixedHRA),
		Bonus: c.amount(FieldFixedBonus),
		Total: c.amount(FieldFixedTotal),
	}
	rec.Earned = Salary{
		Basic:      c.amount(FieldEarnedBasic),
		DA:         c.amount(FieldEarnedDA),
		HRA:        c.amount(FieldEarnedHRA),
		LeaveWages: c.amount(FieldEarnedLeaveWages),
		Others:     c.amount(FieldOtherAllowance),
		Bonus:      c.amount(FieldEarnedBonus),
		Total:      c.amount(FieldEarnedTotal),
	}
	rec.Deductions = Deduction{
		PF:    c.amount(FieldPF),
		ESI:   c.amount(FieldESI),
		PT:    c.amount(FieldPT),
		LWF:   c.amount(FieldLWF),
		Total: c.amount(FieldTotalDeduction),
	}
	rec.NetPay = c.amount(FieldNetPay)
	rec.NetPayWords = AmountInWords(rec.NetPay)
	rec.Defaulted = c.defaulted
	return rec, true, nil
}

// cellReader reads mapped cells out of one row and remembers which resolved
// fields had to be defaulted. Unresolved optional fields are reported once per
// batch, not per row, so they are not recorded here.
type cellReader struct {
	mapping   ColumnMapping
	row       RawRow
	defaulted []Field
}

func (c *cellReader) raw(f Field) (string, bool) {
	label, ok := c.mapping.Label(f)
	if !ok {
		return "", false
	}
	return c.row.Get(label)
}

func (c *cellReader) note(f Field, defaulted bool) {
	if defaulted {
		c.defaulted = append(c.defaulted, f)
	}
}

func (c *cellReader) text(f Field) string {
	raw, _ := c.raw(f)
	v, _ := toText(raw)
	return v
}

func (c *cellReader) identifier(f Field) string {
	raw, _ := c.raw(f)
	v, _ := toIdentifier(raw)
	return v
}

// numberOrText formats numeric cells like identifiers and keeps anything
// else, such as "+91 98450 12345", as trimmed text.
func (c *cellReader) numberOrText(f Field) string {
	raw, _ := c.raw(f)
	if v, defaulted := toIdentifier(raw); !defaulted {
		return v
	}
	v, _ := toText(raw)
	return v
}

func (c *cellReader) date(f Field) string {
	raw, _ := c.raw(f)
	v, _ := toDate(raw)
	return v
}

func (c *cellReader) days(f Field) string {
	raw, _ := c.raw(f)
	v, defaulted := toText(raw)
	if defaulted {
		return defaultDays
	}
	return v
}

func (c *cellReader) amount(f Field) decimal.Decimal {
	raw, present := c.raw(f)
	v, defaulted := toAmount(raw)
	if present {
		c.note(f, defaulted)
	}
	return v
}
