package marketdata

import "time"

// Bar is one OHLCV row for a trading interval.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarSeries is an ordered, time-ascending bar sequence for one
// (symbol, interval) pair. Timestamps are strictly increasing; the only
// mutation after fetch is the real-time close overlay on the final bar.
type BarSeries struct {
	Symbol   string
	Interval string
	Bars     []Bar
}

// Len returns the number of bars.
func (s *BarSeries) Len() int {
	return len(s.Bars)
}

// Last returns the most recent bar.
func (s *BarSeries) Last() Bar {
	return s.Bars[len(s.Bars)-1]
}

// Closes returns the close column.
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s *BarSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s *BarSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column.
func (s *BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// OverlayClose replaces the close of the most recent bar with a live price.
// 실시간 현재가 덮어쓰기: 새 bar 추가 아님.
func (s *BarSeries) OverlayClose(price float64) {
	if len(s.Bars) == 0 {
		return
	}
	s.Bars[len(s.Bars)-1].Close = price
}
