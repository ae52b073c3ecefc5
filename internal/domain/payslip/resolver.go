package payslip

import "strings"

// ColumnMapping maps each resolved canonical field to the raw label that
// supplies it. Unresolved fields are absent.
type ColumnMapping map[Field]string

// Label returns the raw label for f.
func (m ColumnMapping) Label(f Field) (string, bool) {
	label, ok := m[f]
	return label, ok && label != ""
}

// Unresolved returns the fields from want that have no label, in want order.
func (m ColumnMapping) Unresolved(want []Field) []Field {
	var out []Field
	for _, f := range want {
		if _, ok := m.Label(f); !ok {
			out = append(out, f)
		}
	}
	return out
}

// labelIndex looks raw labels up by lower-cased and underscored keys. The
// first column wins when two labels normalize to the same key.
type labelIndex struct {
	keys   map[string]string
	labels []string
}

func newLabelIndex(labels []string) labelIndex {
	ix := labelIndex{keys: make(map[string]string, len(labels)*2), labels: labels}
	for _, label := range labels {
		clean := cleanLabel(label)
		if isPlaceholder(clean) {
			continue
		}
		lower := strings.ToLower(clean)
		for _, key := range []string{lower, strings.ReplaceAll(lower, " ", "_")} {
			if _, ok := ix.keys[key]; !ok {
				ix.keys[key] = label
			}
		}
	}
	return ix
}

func (ix labelIndex) lookup(key string) (string, bool) {
	label, ok := ix.keys[strings.ToLower(key)]
	return label, ok
}

// containing returns the first label, in column order, whose lower-cased
// form contains any of the fragments.
func (ix labelIndex) containing(fragments ...string) (string, bool) {
	for _, label := range ix.labels {
		clean := cleanLabel(label)
		if isPlaceholder(clean) {
			continue
		}
		lower := strings.ToLower(clean)
		for _, fragment := range fragments {
			if strings.Contains(lower, fragment) {
				return label, true
			}
		}
	}
	return "", false
}

type matcher func(ix labelIndex) (string, bool)

func exactly(keys ...string) matcher {
	return func(ix labelIndex) (string, bool) {
		for _, key := range keys {
			if label, ok := ix.lookup(key); ok {
				return label, true
			}
		}
		return "", false
	}
}

func containing(fragments ...string) matcher {
	return func(ix labelIndex) (string, bool) {
		return ix.containing(fragments...)
	}
}

// rule lists matchers for one field in precedence order: exact name,
// prefix-stripped, grouped-prefix, then synonyms.
type rule struct {
	field    Field
	matchers []matcher
}

var resolutionRules = []rule{
	{FieldEmpID, []matcher{exactly("emp_id")}},
	{FieldName, []matcher{exactly("name")}},
	{FieldDesignation, []matcher{exactly("designation", "net_pay_designation")}},
	{FieldUnitName, []matcher{exactly("unit_name", "net_pay_unit_name")}},
	{FieldUAN, []matcher{exactly("uan_no", "net_pay_uan_no")}},
	{FieldESINo, []matcher{exactly("esi_no", "net_pay_esi_no"), containing("esi_no", "esi no")}},
	{FieldDOJ, []matcher{exactly("doj", "net_pay_doj")}},
	{FieldBankAC, []matcher{exactly("bank_ac", "net_pay_bank_ac")}},
	{FieldIFSC, []matcher{exactly("ifsc_code", "net_pay_ifsc_code")}},
	{FieldEmail, []matcher{exactly("email", "net_pay_email"), containing("net_pay_email")}},
	{FieldPhone, []matcher{exactly("phone", "net_pay_phone"), containing("phone_no", "phone no")}},
	{FieldBasicDays, []matcher{exactly("basic_days")}},
	{FieldActualDays, []matcher{exactly("actual_days")}},

	{FieldFixedBasic, []matcher{exactly("fixed_basic"), exactly("basic")}},
	{FieldFixedDA, []matcher{exactly("fixed_da"), exactly("da")}},
	{FieldFixedHRA, []matcher{exactly("fixed_hra"), exactly("hra")}},
	{FieldFixedBonus, []matcher{exactly("fixed_bonus"), exactly("bonus")}},
	{FieldFixedTotal, []matcher{exactly("fixed_total"), exactly("total")}},

	{FieldEarnedBasic, []matcher{exactly("earned_basic"), exactly("basic")}},
	{FieldEarnedDA, []matcher{exactly("earned_da"), exactly("da")}},
	{FieldEarnedHRA, []matcher{exactly("earned_hra"), exactly("hra")}},
	{FieldEarnedLeaveWages, []matcher{exactly("earned_leave_wages"), exactly("leave_wages")}},
	{FieldOtherAllowance, []matcher{exactly("other_allowance"), exactly("earned_hra.1", "earned_hra.2", "earned_other_allowance")}},
	{FieldEarnedBonus, []matcher{exactly("earned_bonus"), exactly("bonus")}},
	{FieldEarnedTotal, []matcher{exactly("earned_total"), exactly("total")}},

	{FieldPF, []matcher{exactly("pf"), exactly("deductions_pf")}},
	{FieldESI, []matcher{exactly("esi"), exactly("deductions_esi")}},
	{FieldPT, []matcher{exactly("pt"), exactly("deductions_pt")}},
	{FieldLWF, []matcher{exactly("lwf"), exactly("deductions_lwf"), exactly("adv", "deductions_adv")}},
	{FieldTotalDeduction, []matcher{exactly("total_deduction"), exactly("deductions_total"), exactly("total")}},
	{FieldNetPay, []matcher{exactly("net_pay")}},
}

// ResolveColumns maps canonical fields onto the raw labels of a table. It
// depends only on labels, so equal label sets give equal mappings.
func ResolveColumns(labels []string) ColumnMapping {
	ix := newLabelIndex(labels)
	mapping := make(ColumnMapping, len(resolutionRules))
	for _, r := range resolutionRules {
		for _, match := range r.matchers {
			if label, ok := match(ix); ok {
				mapping[r.field] = label
				break
			}
		}
	}
	return mapping
}
