package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Garnish words mark measures that are solids or decoration; they parse to
// zero ounces and are never dispensed.
var garnishWords = []string{"slice", "wedge", "dash", "pinch", "sprig", "piece", "cube", "twist"}

var (
	mixedRx  = regexp.MustCompile(`^(\d+)\s+(\d)/(\d)`)
	simpleRx = regexp.MustCompile(`^(\d+/\d+|\d+(?:\.\d+)?)\s*(oz|ounce|ounces|ml|cl)?`)
	unitRx   = regexp.MustCompile(`(oz|ounce|ounces|ml|cl)`)
)

// ParseMeasure converts a free-form drink measure to fluid ounces. It
// understands mixed fractions ("2 1/2 oz"), simple fractions, decimals and
// metric units; garnish measures return zero.
func ParseMeasure(raw string) float64 {
	txt := strings.ToLower(strings.TrimSpace(raw))
	if txt == "" {
		return 0
	}
	for _, w := range garnishWords {
		if strings.Contains(txt, w) {
			return 0
		}
	}

	var qty float64
	var unit string
	if m := mixedRx.FindStringSubmatch(txt); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return 0
		}
		qty = whole + num/den
		if u := unitRx.FindString(txt); u != "" {
			unit = u
		} else {
			unit = "oz"
		}
	} else if m := simpleRx.FindStringSubmatch(txt); m != nil {
		numTxt := m[1]
		if strings.Contains(numTxt, "/") {
			parts := strings.SplitN(numTxt, "/", 2)
			num, _ := strconv.ParseFloat(parts[0], 64)
			den, _ := strconv.ParseFloat(parts[1], 64)
			if den == 0 {
				return 0
			}
			qty = num / den
		} else {
			qty, _ = strconv.ParseFloat(numTxt, 64)
		}
		unit = m[2]
	} else {
		return 0
	}

	switch unit {
	case "ml":
		qty *= 0.033814
	case "cl":
		qty *= 0.33814
	}
	return math.Round(qty*100) / 100
}
