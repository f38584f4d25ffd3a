// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents everywhere; decimal strings are only
// accepted at the edge and converted once.
package core

import (
	"regexp"
	"strconv"
	"strings"
)

var decimalAmount = regexp.MustCompile(`^(\d+)(?:\.(\d{1,2}))?$`)

// ParseDecimalToCents converts a dollar string such as "12.5" or "1234.56" to cents.
//
// Only digits with an optional one or two digit fraction are accepted; signs,
// separators and exponents are rejected. The conversion is done on the digits
// themselves so it equals round(dollars*100) without going through a float.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12.5")  -> 1250, nil
//	ParseDecimalToCents("12.345") -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	m := decimalAmount.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, ErrInvalidAmount
	}
	whole, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if whole > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var frac int64
	switch len(m[2]) {
	case 1:
		frac = int64(m[2][0]-'0') * 10
	case 2:
		frac = int64(m[2][0]-'0')*10 + int64(m[2][1]-'0')
	}
	return whole*100 + frac, nil
}

// FormatCents renders cents as a dollar amount with thousands separators, e.g. "$1,234.56".
func FormatCents(cents int64) string {
	neg := cents < 0
	u := uint64(cents)
	if neg {
		u = uint64(-cents)
	}
	whole := strconv.FormatUint(u/100, 10)
	frac := u % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(frac, 10))
	return b.String()
}

func (m Money) String() string {
	return FormatCents(m.Cents)
}

// Dollars returns the amount as a float64 for display purposes only.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
