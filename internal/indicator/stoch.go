package indicator

// Stochastic returns the most recent %K and %D (SMA of %K over dPeriod).
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64, ok bool) {
	if kPeriod <= 0 || dPeriod <= 0 {
		return 0, 0, false
	}
	n := len(closes)
	if len(highs) != n || len(lows) != n || n < kPeriod+dPeriod-1 {
		return 0, 0, false
	}

	kAt := func(end int) float64 {
		hh := highs[end]
		ll := lows[end]
		for i := end - kPeriod + 1; i < end; i++ {
			if highs[i] > hh {
				hh = highs[i]
			}
			if lows[i] < ll {
				ll = lows[i]
			}
		}
		if hh == ll {
			return 50 // flat window
		}
		return (closes[end] - ll) / (hh - ll) * 100
	}

	var dSum float64
	for i := 0; i < dPeriod; i++ {
		kv := kAt(n - 1 - i)
		if i == 0 {
			k = kv
		}
		dSum += kv
	}

	return k, dSum / float64(dPeriod), true
}
