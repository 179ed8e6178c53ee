package indicator

// OBV returns the cumulative on-balance volume series.
func OBV(closes, volumes []float64) ([]float64, bool) {
	n := len(closes)
	if n == 0 || len(volumes) != n {
		return nil, false
	}

	out := make([]float64, n)
	out[0] = volumes[0]
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out, true
}
