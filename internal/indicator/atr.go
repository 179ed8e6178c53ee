package indicator

import "math"

// ATR returns the Wilder average true range of the last bar.
func ATR(highs, lows, closes []float64, period int) (float64, bool) {
	n := len(closes)
	if period <= 0 || len(highs) != n || len(lows) != n || n < period+1 {
		return 0, false
	}

	trAt := func(i int) float64 {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		return math.Max(hl, math.Max(hc, lc))
	}

	// Seed with the simple average of the first period true ranges
	var atr float64
	for i := 1; i <= period; i++ {
		atr += trAt(i)
	}
	atr /= float64(period)

	// Wilder smoothing
	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + trAt(i)) / float64(period)
	}

	return atr, true
}
