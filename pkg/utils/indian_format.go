// Package utils provides formatting and time helpers shared by the report
// renderer, the API and the CLI.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber formats v in its shortest decimal form: 1400 → "1400",
// 8.5 → "8.5", 5.0 → "5". Values are shown as the service sent them.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent formats a percentage without forcing decimals: 5 → "5%".
func FormatPercent(pct float64) string {
	return FormatNumber(pct) + "%"
}

// FormatRupees prefixes the shortest decimal form with ₹: 8.5 → "₹8.5".
func FormatRupees(amount float64) string {
	if amount < 0 {
		return "-₹" + FormatNumber(-amount)
	}
	return "₹" + FormatNumber(amount)
}

// maxINRAmount bounds FormatINR so that the paise count fits in an int64.
const maxINRAmount = 9e16

// FormatINR formats a number in Indian Rupee format (₹12,34,567.89).
// Uses the Indian numbering system: last 3 digits, then groups of 2.
// Amounts beyond maxINRAmount fall back to FormatRupees.
func FormatINR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return FormatNumber(amount)
	}
	if math.Abs(amount) > maxINRAmount {
		return FormatRupees(amount)
	}
	negative := amount < 0
	amount = math.Abs(amount)

	cents := int64(math.Round(amount * 100))
	formatted := formatIndianNumber(cents/100) + fmt.Sprintf(".%02d", cents%100)

	if negative {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// FormatVolume formats volume in human-readable Indian units.
// e.g., 1500000 → "15.00 L", 25000000 → "2.50 Cr"
func FormatVolume(volume float64) string {
	switch v := math.Abs(volume); {
	case v >= 1e7:
		return fmt.Sprintf("%.2f Cr", volume/1e7)
	case v >= 1e5:
		return fmt.Sprintf("%.2f L", volume/1e5)
	case v >= 1e3:
		return fmt.Sprintf("%.2f K", volume/1e3)
	default:
		return FormatNumber(volume)
	}
}

// formatIndianNumber formats an integer with Indian grouping (last 3, then 2s).
func formatIndianNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if remaining != "" {
		result = remaining + "," + result
	}
	return result
}

// TruncateText shortens s to at most n runes, appending an ellipsis when cut.
func TruncateText(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
