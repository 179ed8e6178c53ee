package indicator

// MACDResult holds the MACD line and its signal line, tail-aligned so that
// the last element of each slice refers to the most recent bar.
type MACDResult struct {
	Line   []float64
	Signal []float64
}

// MACD returns the fast/slow EMA difference and its signal line.
func MACD(closes []float64, fast, slow, signal int) (MACDResult, bool) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACDResult{}, false
	}
	if len(closes) < slow+signal {
		return MACDResult{}, false
	}

	emaFast, ok := EMASeries(closes, fast)
	if !ok {
		return MACDResult{}, false
	}
	emaSlow, ok := EMASeries(closes, slow)
	if !ok {
		return MACDResult{}, false
	}

	// Align the fast series to the slow one (slow starts later)
	offset := len(emaFast) - len(emaSlow)
	line := make([]float64, len(emaSlow))
	for i := range emaSlow {
		line[i] = emaFast[i+offset] - emaSlow[i]
	}

	sig, ok := EMASeries(line, signal)
	if !ok {
		return MACDResult{}, false
	}

	// Trim the MACD line to the span covered by the signal line
	return MACDResult{
		Line:   line[len(line)-len(sig):],
		Signal: sig,
	}, true
}
