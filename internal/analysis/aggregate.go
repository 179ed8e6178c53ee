package analysis

import "math"

// WeightedSub pairs a successful sub-score with its weight.
type WeightedSub struct {
	Score  float64
	Weight float64
}

// Aggregate combines weighted sub-scores into one bounded composite:
//
//	composite = clamp(round(Σ sᵢwᵢ / Σ 100wᵢ × 100), 0, 100)
//
// An unavailable indicator is excluded from numerator and denominator both —
// a stock is not penalized because one indicator's data was missing. With no
// contributing indicator at all the composite is the neutral midpoint.
func Aggregate(subs []WeightedSub) int {
	var num, den float64
	for _, s := range subs {
		if s.Weight <= 0 {
			continue
		}
		num += s.Score * s.Weight
		den += 100 * s.Weight
	}

	if den == 0 {
		return 50
	}

	score := int(math.Round(num / den * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
