package analysis

import (
	"fmt"

	"github.com/wonny/stocklens/internal/indicator"
	"github.com/wonny/stocklens/internal/marketdata"
)

// SubResult is one indicator's contribution: a 0-100 sub-score, zero or
// more rationale strings, and a display value for the indicators map.
// OK=false means the computation was unavailable; the indicator then
// contributes to neither the numerator nor the denominator of the
// composite.
type SubResult struct {
	Score   float64
	Reasons []string
	Display string
	OK      bool
}

// ScoredIndicator is one entry in the evaluation table: a name, a weight
// selector, and an evaluator over the per-interval series store. Adding or
// removing an indicator is a data change here, not an aggregator change.
type ScoredIndicator struct {
	Name   string
	Weight func(Weights) float64
	Eval   func(p Params, store map[string]*marketdata.BarSeries) SubResult
}

// ScoredIndicators returns the evaluation table in its fixed order.
func ScoredIndicators() []ScoredIndicator {
	return []ScoredIndicator{
		{Name: "MA", Weight: func(w Weights) float64 { return w.MA }, Eval: evalMA},
		{Name: "RSI", Weight: func(w Weights) float64 { return w.RSI }, Eval: evalRSI},
		{Name: "MACD", Weight: func(w Weights) float64 { return w.MACD }, Eval: evalMACD},
		{Name: "Stoch", Weight: func(w Weights) float64 { return w.Stoch }, Eval: evalStoch},
		{Name: "BB", Weight: func(w Weights) float64 { return w.BB }, Eval: evalBB},
	}
}

// alignmentLengths are the fixed moving-average lengths used for the
// ordering check.
var alignmentLengths = [4]int{5, 20, 60, 120}

// evalMA scores moving-average cross and alignment on the configured
// interval. Cross events dominate alignment.
func evalMA(p Params, store map[string]*marketdata.BarSeries) SubResult {
	series, ok := store[p.MAInterval]
	if !ok {
		return SubResult{}
	}

	closes := series.Closes()
	smaShort, okS := indicator.SMASeries(closes, p.MAShort)
	smaLong, okL := indicator.SMASeries(closes, p.MALong)
	if !okS || !okL || len(smaShort) < 2 || len(smaLong) < 2 {
		return SubResult{}
	}

	curS, prevS := smaShort[len(smaShort)-1], smaShort[len(smaShort)-2]
	curL, prevL := smaLong[len(smaLong)-1], smaLong[len(smaLong)-2]

	switch {
	case prevS <= prevL && curS > curL:
		return SubResult{
			Score:   100,
			Reasons: []string{fmt.Sprintf("★ 골든크로스 (%d/%d)", p.MAShort, p.MALong)},
			Display: "Golden Cross",
			OK:      true,
		}
	case prevS >= prevL && curS < curL:
		return SubResult{
			Score:   0,
			Reasons: []string{fmt.Sprintf("☠️ 데드크로스 (%d/%d)", p.MAShort, p.MALong)},
			Display: "Death Cross",
			OK:      true,
		}
	}

	// No cross event: classify by strict ordering of the fixed lengths
	var mas [4]float64
	haveAll := true
	for i, length := range alignmentLengths {
		v, ok := indicator.SMA(closes, length)
		if !ok {
			haveAll = false
			break
		}
		mas[i] = v
	}

	if haveAll {
		ascending, descending := true, true
		for i := 0; i < len(mas)-1; i++ {
			if mas[i] <= mas[i+1] {
				ascending = false
			}
			if mas[i] >= mas[i+1] {
				descending = false
			}
		}
		if ascending {
			return SubResult{Score: 80, Reasons: []string{"이평선 정배열"}, Display: "정배열", OK: true}
		}
		if descending {
			return SubResult{Score: 20, Reasons: []string{"이평선 역배열"}, Display: "역배열", OK: true}
		}
	}

	return SubResult{
		Score:   50,
		Display: fmt.Sprintf("%dvs%d (%s)", p.MAShort, p.MALong, p.MAInterval),
		OK:      true,
	}
}

// evalRSI scores the relative strength index: the lower the RSI, the more
// oversold and the higher the sub-score.
func evalRSI(p Params, store map[string]*marketdata.BarSeries) SubResult {
	series, ok := store[p.RSIInterval]
	if !ok {
		return SubResult{}
	}

	val, ok := indicator.RSI(series.Closes(), p.RSIPeriod)
	if !ok {
		return SubResult{}
	}

	res := SubResult{
		Score:   clampScore(100 - val),
		Display: fmt.Sprintf("%.2f (%s)", val, p.RSIInterval),
		OK:      true,
	}
	if val < 30 {
		res.Reasons = append(res.Reasons, "RSI 과매도")
	} else if val > 70 {
		res.Reasons = append(res.Reasons, "RSI 과매수")
	}
	return res
}

// evalMACD scores the MACD regime. The four quadrants of (sign, slope) map
// to fixed bands; a signal-line upward cross while still below zero is the
// bottom-reversal case and takes the top band.
func evalMACD(p Params, store map[string]*marketdata.BarSeries) SubResult {
	series, ok := store[p.MACDInterval]
	if !ok {
		return SubResult{}
	}

	macd, ok := indicator.MACD(series.Closes(), p.MACDFast, p.MACDSlow, p.MACDSignal)
	if !ok || len(macd.Line) < 2 || len(macd.Signal) < 2 {
		return SubResult{}
	}

	cur := macd.Line[len(macd.Line)-1]
	prev := macd.Line[len(macd.Line)-2]
	curSig := macd.Signal[len(macd.Signal)-1]
	prevSig := macd.Signal[len(macd.Signal)-2]

	score, reason := classifyMACD(cur, prev, curSig, prevSig)
	return SubResult{
		Score:   score,
		Reasons: []string{reason},
		Display: fmt.Sprintf("%.2f (%s)", cur, p.MACDInterval),
		OK:      true,
	}
}

// classifyMACD maps the (sign, slope) quadrant to a fixed band. Rising from
// below zero is the most bullish regime, falling from above zero the most
// bearish; a signal-line upward cross while still below zero takes the top
// band as the bottom-reversal case.
func classifyMACD(cur, prev, curSig, prevSig float64) (float64, string) {
	rising := cur > prev

	switch {
	case cur < 0 && rising && prev <= prevSig && cur > curSig:
		return 100, "MACD 바닥 반전 신호"
	case cur >= 0 && rising:
		return 80, "MACD 상승 추세"
	case cur < 0 && rising:
		return 60, "MACD 저점 상승"
	case cur < 0: // falling below zero
		return 30, "MACD 하락 추세"
	default: // falling from above zero
		return 20, "MACD 고점 하락"
	}
}

// evalStoch scores the stochastic %K like the RSI: depth of the oscillator
// becomes the sub-score.
func evalStoch(p Params, store map[string]*marketdata.BarSeries) SubResult {
	series, ok := store[p.StochInterval]
	if !ok {
		return SubResult{}
	}

	k, _, ok := indicator.Stochastic(series.Highs(), series.Lows(), series.Closes(), p.StochK, 3)
	if !ok {
		return SubResult{}
	}

	res := SubResult{
		Score:   clampScore(100 - k),
		Display: fmt.Sprintf("%.2f (%s)", k, p.StochInterval),
		OK:      true,
	}
	if k < 20 {
		res.Reasons = append(res.Reasons, "스토캐스틱 바닥")
	} else if k > 80 {
		res.Reasons = append(res.Reasons, "스토캐스틱 천장")
	}
	return res
}

// evalBB scores the price position within the Bollinger Bands: closer to the
// lower band reads as more oversold, hence more attractive.
func evalBB(p Params, store map[string]*marketdata.BarSeries) SubResult {
	series, ok := store[p.BBInterval]
	if !ok {
		return SubResult{}
	}

	bands, ok := indicator.Bollinger(series.Closes(), p.BBLength, p.BBStd)
	if !ok {
		return SubResult{}
	}

	price := series.Last().Close
	pb := bands.PercentB(price)

	res := SubResult{
		Score: clampScore((1 - pb) * 100),
		OK:    true,
	}
	switch {
	case price < bands.Lower:
		res.Display = "하단"
		res.Reasons = append(res.Reasons, "볼린저 하단")
	case price > bands.Upper:
		res.Display = "상단"
		res.Reasons = append(res.Reasons, "볼린저 상단")
	default:
		res.Display = fmt.Sprintf("중간 (%s)", p.BBInterval)
	}
	return res
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
