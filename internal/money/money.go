// SPDX-License-Identifier: MIT

// Package money renders exact Naira amounts for user-facing messages.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNGN renders a decimal amount string as "NGN 151,170.50".
// The value is quantized to two decimal places with half-up rounding
// before formatting; no float conversion happens at any point.
func FormatNGN(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse amount %q: %w", raw, err)
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	units := d.Floor()
	cents := d.Sub(units).Mul(decimal.NewFromInt(100)).IntPart()

	grouped := printer.Sprintf("%d", units.IntPart())
	return fmt.Sprintf("NGN %s%s.%02d", sign, grouped, cents), nil
}
