package indicator

import "math"

// Bands holds the most recent Bollinger Band values.
type Bands struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// Bollinger returns the bands for the last bar: middle = SMA(period),
// upper/lower = middle ± mult × population standard deviation.
func Bollinger(closes []float64, period int, mult float64) (Bands, bool) {
	middle, ok := SMA(closes, period)
	if !ok {
		return Bands{}, false
	}

	var variance float64
	for _, v := range closes[len(closes)-period:] {
		diff := v - middle
		variance += diff * diff
	}
	std := math.Sqrt(variance / float64(period))

	return Bands{
		Middle: middle,
		Upper:  middle + mult*std,
		Lower:  middle - mult*std,
	}, true
}

// PercentB expresses price position within the bands as a 0-1 fraction.
// A degenerate band (upper == lower) reports the midpoint.
func (b Bands) PercentB(price float64) float64 {
	width := b.Upper - b.Lower
	if width == 0 {
		return 0.5
	}
	return (price - b.Lower) / width
}
