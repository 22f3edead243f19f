package forms

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CardNumberMaxLength is the width of a formatted 16-digit card number
const CardNumberMaxLength = 19

// digitsOnly strips every character that is not an ASCII digit
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups the digits of input in blocks of four separated by
// a space and truncates the result to maxLen characters. A maxLen <= 0 uses
// CardNumberMaxLength.
func FormatCardNumber(input string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = CardNumberMaxLength
	}

	digits := digitsOnly(input)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], " ")
	}
	return out
}

// FormatExpiry masks input as MM/YY. Digits beyond the fourth are dropped.
func FormatExpiry(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) > 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// ParseFloatOr parses s as a float, returning def when s is not a number
func ParseFloatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// ParseIntOr parses s as an integer, returning def when s is not a number.
// Decimal input is truncated toward zero.
func ParseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// ParseIntAtLeast parses s as an integer and raises the result to min
func ParseIntAtLeast(s string, min int) int {
	v := ParseIntOr(s, min)
	if v < min {
		return min
	}
	return v
}

// ParseCents converts a major-unit amount such as "19.99" into cents.
// Unparseable or negative input yields def.
func ParseCents(s string, def int64) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return def
	}
	return d.Shift(2).Round(0).IntPart()
}

// FormatCents renders a cents amount in major units with two decimals
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
