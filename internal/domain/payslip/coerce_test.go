package payslip

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToAmount(t *testing.T) {
	v, defaulted := toAmount(" 1,234.50 ")
	assert.False(t, defaulted)
	assert.True(t, v.Equal(decimal.RequireFromString("1234.5")))

	for _, raw := range []string{"", "  ", "n/a", "-3"} {
		v, defaulted := toAmount(raw)
		assert.True(t, defaulted, raw)
		assert.True(t, v.IsZero(), raw)
	}
}

func TestToIdentifier(t *testing.T) {
	cases := map[string]string{
		"123456789012.0": "123456789012",
		"1.2E+11":        "120000000000",
		" 42 ":           "42",
	}
	for raw, want := range cases {
		got, defaulted := toIdentifier(raw)
		assert.False(t, defaulted, raw)
		assert.Equal(t, want, got, raw)
	}

	got, defaulted := toIdentifier("AC-991")
	assert.True(t, defaulted)
	assert.Empty(t, got)
}

func TestNumericCellsRejectUnboundedMagnitude(t *testing.T) {
	for _, raw := range []string{"1e100000000", "1E+21", "123456789012345678901", "1e-100000000", "0.0000000000000000000000000000001"} {
		got, defaulted := toIdentifier(raw)
		assert.True(t, defaulted, raw)
		assert.Empty(t, got, raw)

		v, defaulted := toAmount(raw)
		assert.True(t, defaulted, raw)
		assert.True(t, v.IsZero(), raw)
	}

	got, defaulted := toIdentifier("12345678901234567890")
	assert.False(t, defaulted)
	assert.Equal(t, "12345678901234567890", got)

	v, defaulted := toAmount("13905.499999999998")
	assert.False(t, defaulted)
	assert.Equal(t, "13905.499999999998", v.String())
}

func TestToDate(t *testing.T) {
	got, defaulted := toDate("45292")
	assert.False(t, defaulted)
	assert.Equal(t, "01-01-2024", got)

	got, _ = toDate("15-03-2020")
	assert.Equal(t, "15-03-2020", got)

	_, defaulted = toDate(" ")
	assert.True(t, defaulted)
}
