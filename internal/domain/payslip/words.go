package payslip

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

const (
	thousand = 1_000
	lakh     = 1_00_000
	crore    = 1_00_00_000
)

// AmountInWords spells the whole-rupee part of amount in the Indian numbering
// system (Thousand, Lakh, Crore), e.g. "One Lakh Five Hundred rupees only".
// The fraction is dropped. Zero and negative amounts read "Zero rupees only".
func AmountInWords(amount decimal.Decimal) string {
	whole := amount.Truncate(0)
	if !whole.IsPositive() {
		return "Zero rupees only"
	}
	return strings.Join(spellBig(whole.BigInt()), " ") + " rupees only"
}

// spellBig handles amounts past int64 by repeating Crore, as in
// "One Lakh Crore Crore".
func spellBig(n *big.Int) []string {
	if n.IsInt64() {
		return spell(n.Int64())
	}
	q, r := new(big.Int).QuoRem(n, big.NewInt(crore), new(big.Int))
	words := append(spellBig(q), "Crore")
	return append(words, spell(r.Int64())...)
}

func spell(n int64) []string {
	var words []string
	if n >= crore {
		words = append(words, spell(n/crore)...)
		words = append(words, "Crore")
		n %= crore
	}
	if n >= lakh {
		words = append(words, belowThousand(n/lakh)...)
		words = append(words, "Lakh")
		n %= lakh
	}
	if n >= thousand {
		words = append(words, belowThousand(n/thousand)...)
		words = append(words, "Thousand")
		n %= thousand
	}
	return append(words, belowThousand(n)...)
}

func belowThousand(n int64) []string {
	var words []string
	if n >= 100 {
		words = append(words, ones[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		words = append(words, tens[n/10])
		if n%10 != 0 {
			words = append(words, ones[n%10])
		}
	case n >= 10:
		words = append(words, teens[n-10])
	case n > 0:
		words = append(words, ones[n])
	}
	return words
}
