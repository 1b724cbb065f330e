// Package money formats monetary amounts using the Indian numbering system,
// matching the frontend's formatIndianNumber helper.
package money

import (
	"math"
	"strconv"
	"strings"
)

// FormatIndian renders num with lakh/crore comma grouping, e.g.
// 1000000 -> "10,00,000". A trailing decimal part is kept only when non-zero.
func FormatIndian(num float64, decimals int) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return "0"
	}
	fixed := strconv.FormatFloat(num, 'f', decimals, 64)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart, decPart, _ := strings.Cut(fixed, ".")

	grouped := groupIndian(intPart)
	if decPart != "" && strings.Trim(decPart, "0") != "" {
		grouped += "." + decPart
	}
	if neg {
		grouped = "-" + grouped
	}
	return grouped
}

// groupIndian puts a comma before the last 3 digits, then every 2 digits.
func groupIndian(s string) string {
	if len(s) <= 3 {
		return s
	}
	last3 := s[len(s)-3:]
	rest := s[:len(s)-3]

	var parts []string
	for len(rest) > 2 {
		parts = append([]string{rest[len(rest)-2:]}, parts...)
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		parts = append([]string{rest}, parts...)
	}
	return strings.Join(parts, ",") + "," + last3
}
