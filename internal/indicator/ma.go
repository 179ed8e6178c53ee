// Package indicator implements technical indicator math over plain price
// slices. Every function reports ok=false instead of an error when the
// series is shorter than its lookback; callers treat that as "indicator
// unavailable" and degrade, never abort.
package indicator

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}

	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// SMASeries returns the full SMA series. Element i is the average of
// values[i-period+1..i]; the first period-1 elements are not defined, so the
// returned slice is aligned to the tail of values (len(values)-period+1
// elements).
func SMASeries(values []float64, period int) ([]float64, bool) {
	if period <= 0 || len(values) < period {
		return nil, false
	}

	out := make([]float64, 0, len(values)-period+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, true
}

// EMASeries returns the exponential moving average series, seeded with the
// SMA of the first period values and aligned to the tail of values.
func EMASeries(values []float64, period int) ([]float64, bool) {
	if period <= 0 || len(values) < period {
		return nil, false
	}

	var sum float64
	for _, v := range values[:period] {
		sum += v
	}
	ema := sum / float64(period)

	multiplier := 2.0 / (float64(period) + 1.0)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, ema)
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
		out = append(out, ema)
	}
	return out, true
}
