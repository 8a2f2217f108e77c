package csvimport

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer("¥", "", "￥", "", ",", "", "，", "", " ", "")

// ParseQuantity reads a positive integer cell. Blank, non-numeric and values
// below 1 yield def. A decimal such as "2.0" is truncated.
func ParseQuantity(s string, def int) int {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return def
		}
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	n := int(d.IntPart())
	if n < 1 {
		return def
	}
	return n
}

// ParseInt reads a non-negative integer cell, def when unreadable
func ParseInt(s string, def int) int {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return def
	}
	return int(d.IntPart())
}

// ParseAmount reads a money cell, stripping yen signs and thousands separators.
// ok is false when the cell is blank or not a number.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmountOrZero is ParseAmount with a zero fallback
func ParseAmountOrZero(s string) decimal.Decimal {
	d, _ := ParseAmount(s)
	return d
}
