package payslip

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "02-01-2006"

// Excel serial day numbers that map to 1900-01-01 .. 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Numeric cells beyond these bounds are treated as unparsable. Expanding an
// unbounded exponent such as "1e100000000" would allocate its full digit
// string.
const (
	maxIntegerDigits = 20
	maxScale         = 30
)

// parseBounded parses a decimal cell and rejects values whose integer part
// is longer than maxIntegerDigits or whose scale exceeds maxScale.
func parseBounded(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	exp := int64(d.Exponent())
	if exp < -maxScale || exp > maxIntegerDigits {
		return decimal.Zero, false
	}
	if int64(d.NumDigits())+exp > maxIntegerDigits {
		return decimal.Zero, false
	}
	return d, true
}

// toAmount parses a money cell. Blank, unparsable and negative values become
// zero and are reported as defaulted.
func toAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, true
	}
	d, ok := parseBounded(s)
	if !ok || d.IsNegative() {
		return decimal.Zero, true
	}
	return d, false
}

// toIdentifier renders a numeric identifier cell as a plain integer string,
// so spreadsheet floats like "123456789012.0" or "1.2E+11" print without a
// fraction or exponent. Non-numeric and out of range cells become "".
func toIdentifier(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	d, ok := parseBounded(s)
	if !ok {
		return "", true
	}
	return d.Truncate(0).String(), false
}

func toText(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, s == ""
}

// toDate keeps textual dates as they are and converts bare Excel serial
// numbers, which spreadsheets hand back for date cells read raw.
func toDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < minExcelSerial || serial > maxExcelSerial {
		return s, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return s, false
	}
	return t.Format(dateLayout), false
}
