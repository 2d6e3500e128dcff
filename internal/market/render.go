package market

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// NotAvailable replaces every missing value in rendered output.
const NotAvailable = "not available"

// amountPlaces matches the fraction digits a locale-formatted number keeps.
const amountPlaces = 3

// Text renders s or the sentinel.
func Text(s string) string {
	return lo.CoalesceOrEmpty(s, NotAvailable)
}

// Count renders a thousands-separated integer.
func Count(n *int64) string {
	if n == nil {
		return NotAvailable
	}
	return humanize.Comma(*n)
}

// Amount renders a thousands-separated number rounded to three places. The
// digits come from the decimal itself, so large values stay exact.
func Amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	r := d.Decimal.Round(amountPlaces)
	_, frac, _ := strings.Cut(r.Abs().String(), ".")
	out := humanize.BigComma(r.Abs().BigInt())
	if frac != "" {
		out += "." + frac
	}
	return lo.Ternary(r.IsNegative(), "-"+out, out)
}

// USD renders Amount prefixed with a dollar sign.
func USD(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return "$" + Amount(d)
}

// Percent renders Amount suffixed with a percent sign.
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return Amount(d) + "%"
}
