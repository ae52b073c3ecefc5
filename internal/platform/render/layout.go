package render

import (
	"github.com/shopspring/decimal"

	"payslip/internal/domain/payslip"
)

const generatedOnLayout = "02 Jan 2006"

// slipRow is one line of the salary table: an earning with its fixed and
// earned amounts beside a deduction.
type slipRow struct {
	Earning   string
	Fixed     string
	Earned    string
	Deduction string
	Amount    string
}

type detail struct {
	Label string
	Value string
}

// slipLayout is the printable content shared by the HTML and native engines.
type slipLayout struct {
	Title       string
	Details     [][2]detail
	Rows        []slipRow
	Totals      slipRow
	NetPay      string
	NetPayWords string
	GeneratedOn string
}

func newSlipLayout(doc payslip.Document) slipLayout {
	rec := doc.Record
	emp := rec.Employee
	fixed, earned, ded := rec.Fixed, rec.Earned, rec.Deductions
	return slipLayout{
		Title: "Payslip for the month of " + doc.Period,
		Details: [][2]detail{
			{{"Employee ID", emp.ID}, {"UAN No", emp.UAN}},
			{{"Name", emp.Name}, {"ESI No", emp.ESINo}},
			{{"Designation", emp.Designation}, {"Bank A/C", emp.BankAccount}},
			{{"Unit", emp.UnitName}, {"IFSC", emp.IFSC}},
			{{"Date of Joining", emp.DOJ}, {"Basic Days", emp.BasicDays}},
			{{"Email", emp.Email}, {"Days Worked", emp.ActualDays}},
		},
		Rows: []slipRow{
			{"Basic", money(fixed.Basic), money(earned.Basic), "PF", money(ded.PF)},
			{"DA", money(fixed.DA), money(earned.DA), "ESI", money(ded.ESI)},
			{"HRA", money(fixed.HRA), money(earned.HRA), "PT", money(ded.PT)},
			{"Leave Wages", money(fixed.LeaveWages), money(earned.LeaveWages), "LWF", money(ded.LWF)},
			{"Others", money(fixed.Others), money(earned.Others), "", ""},
			{"Bonus", money(fixed.Bonus), money(earned.Bonus), "", ""},
		},
		Totals:      slipRow{"Total", money(fixed.Total), money(earned.Total), "Total Deduction", money(ded.Total)},
		NetPay:      money(rec.NetPay),
		NetPayWords: rec.NetPayWords,
		GeneratedOn: doc.GeneratedOn.Format(generatedOnLayout),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
