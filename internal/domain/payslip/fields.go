package payslip

// Field is a canonical payroll attribute. The set is fixed and versioned with
// the code; adding one is a schema change.
type Field string

const (
	FieldEmpID       Field = "EMP_ID"
	FieldName        Field = "NAME"
	FieldDesignation Field = "DESIGNATION"
	FieldUnitName    Field = "UNIT_NAME"
	FieldUAN         Field = "UAN_NO"
	FieldESINo       Field = "ESI_NO"
	FieldDOJ         Field = "DOJ"
	FieldBankAC      Field = "BANK_AC"
	FieldIFSC        Field = "IFSC_CODE"
	FieldEmail       Field = "EMAIL"
	FieldPhone       Field = "PHONE"
	FieldBasicDays   Field = "BASIC_DAYS"
	FieldActualDays  Field = "ACTUAL_DAYS"

	FieldFixedBasic Field = "FIXED_BASIC"
	FieldFixedDA    Field = "FIXED_DA"
	FieldFixedHRA   Field = "FIXED_HRA"
	FieldFixedBonus Field = "FIXED_BONUS"
	FieldFixedTotal Field = "FIXED_TOTAL"

	FieldEarnedBasic      Field = "EARNED_BASIC"
	FieldEarnedDA         Field = "EARNED_DA"
	FieldEarnedHRA        Field = "EARNED_HRA"
	FieldEarnedLeaveWages Field = "EARNED_LEAVE_WAGES"
	FieldOtherAllowance   Field = "OTHER_ALLOWANCE"
	FieldEarnedBonus      Field = "EARNED_BONUS"
	FieldEarnedTotal      Field = "EARNED_TOTAL"

	FieldPF             Field = "PF"
	FieldESI            Field = "ESI"
	FieldPT             Field = "PT"
	FieldLWF            Field = "LWF"
	FieldTotalDeduction Field = "TOTAL_DEDUCTION"
	FieldNetPay         Field = "NET_PAY"
)

// RequiredFields must all resolve before any row is processed.
var RequiredFields = []Field{
	FieldName,
	FieldEmpID,
	FieldFixedBasic,
	FieldFixedDA,
	FieldFixedHRA,
	FieldFixedTotal,
	FieldEarnedBasic,
	FieldEarnedDA,
	FieldEarnedHRA,
	FieldEarnedTotal,
	FieldPF,
	FieldESI,
	FieldPT,
	FieldTotalDeduction,
	FieldNetPay,
}

// OptionalFields are best-effort; unresolved ones surface as a warning.
var OptionalFields = []Field{
	FieldDesignation,
	FieldUnitName,
	FieldUAN,
	FieldESINo,
	FieldDOJ,
	FieldBankAC,
	FieldIFSC,
	FieldEmail,
	FieldPhone,
	FieldBasicDays,
	FieldActualDays,
	FieldFixedBonus,
	FieldEarnedLeaveWages,
	FieldOtherAllowance,
	FieldEarnedBonus,
	FieldLWF,
}

// AllFields lists required fields first, then optional ones.
func AllFields() []Field {
	out := make([]Field, 0, len(RequiredFields)+len(OptionalFields))
	out = append(out, RequiredFields...)
	return append(out, OptionalFields...)
}

func isRequired(f Field) bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

func fieldNames(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
