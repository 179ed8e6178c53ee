package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IsDomestic reports whether a qualified symbol is a domestic-currency
// instrument.
func IsDomestic(symbol string) bool {
	return strings.HasSuffix(symbol, ".KS") || strings.HasSuffix(symbol, ".KQ")
}

// FmtPrice formats a price-like value: domestic instruments get integers
// with thousands separators and no decimal point, everything else exactly
// two decimals. Presentation rule only — applied to every numeric field in
// the response.
func FmtPrice(value float64, domestic bool) string {
	if domestic {
		return groupThousands(int64(math.Round(value)))
	}
	return fmt.Sprintf("%.2f", value)
}

// FmtCount formats a whole count (volume, shares) with thousands separators.
func FmtCount(value float64) string {
	return groupThousands(int64(math.Round(value)))
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
