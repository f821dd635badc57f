// Package money handles BRL amounts the way the quote editor needs them:
// locale-formatted display strings, calculator-tape centavo entry and the
// DECIMAL(10,2) gate every value passes before persistence.
package money

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxDecimal is the largest magnitude a DECIMAL(10,2) column can hold.
const MaxDecimal = 99999999.99

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatAmount renders v as a pt-BR grouped decimal, e.g. 1234.56 -> "1.234,56".
// Zero renders to the empty string so form fields start blank.
func FormatAmount(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	v = Clamp2(v)
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// FormatBRL is FormatAmount with the currency prefix.
func FormatBRL(v float64) string {
	s := FormatAmount(v)
	if s == "" {
		return ""
	}
	return "R$ " + s
}

// FormatCentavos treats the digits the user has typed as a centavo count:
// "1234" means R$ 12,34. All non-digit characters are discarded first.
func FormatCentavos(raw string) string {
	return FormatAmount(ParseCentavos(raw))
}

// ParseCentavos is the inverse of FormatCentavos: strip non-digits, parse the
// remainder as an integer centavo count and divide by 100. Unparseable or
// negative input yields 0.
func ParseCentavos(s string) float64 {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	cents, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		// More digits than an int64 holds; way past MaxDecimal anyway.
		return MaxDecimal
	}
	return float64(cents) / 100
}

// ParseAmount accepts either a plain numeric string or a Brazilian-formatted
// one. When a comma is present the dots are thousands separators and the
// comma is the decimal point. Unparseable or negative input yields 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Clamp2 rounds to cents (half away from zero) and clamps to ±MaxDecimal.
func Clamp2(v float64) float64 {
	v = math.Round(v*100) / 100
	if v > MaxDecimal {
		return MaxDecimal
	}
	if v < -MaxDecimal {
		return -MaxDecimal
	}
	return v
}

// ValidateDecimal is the single gate monetary fields pass through before a
// write. It returns nil for "no value" (nil input, unparseable strings,
// NaN/Inf) and otherwise the value rounded to cents and clamped so no
// downstream write can violate the DECIMAL(10,2) storage constraint.
func ValidateDecimal(raw any) *float64 {
	var v float64
	switch t := raw.(type) {
	case nil:
		return nil
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int32:
		v = float64(t)
	case int64:
		v = float64(t)
	case *float64:
		if t == nil {
			return nil
		}
		v = *t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		v = parsed
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = Clamp2(v)
	return &v
}
