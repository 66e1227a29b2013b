package extract

import (
	"math"
	"strconv"
	"strings"
)

// CleanNumber strips OCR noise from a numeric cell and parses it.
// Every character outside digits and dots is removed; if more than one
// dot remains, the first is kept as the decimal separator and the later
// ones are treated as noise between digit groups. Unparseable input
// yields NaN rather than an error, since sparse cells are expected.
func CleanNumber(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.Count(cleaned, ".") > 1 {
		parts := strings.Split(cleaned, ".")
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// roundCoord rounds a coordinate to the 3-decimal precision used in all
// record stages. NaN passes through.
func roundCoord(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*1000) / 1000
}

// FormatCoord renders a coordinate with exactly three decimals, or an
// empty string when missing.
func FormatCoord(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
