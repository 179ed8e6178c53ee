package analysis

import "testing"

func TestAggregateNeutralMidpoint(t *testing.T) {
	// 기여 지표가 하나도 없으면 정확히 50
	if got := Aggregate(nil); got != 50 {
		t.Errorf("Aggregate(nil) = %d, want 50", got)
	}
	if got := Aggregate([]WeightedSub{}); got != 50 {
		t.Errorf("Aggregate(empty) = %d, want 50", got)
	}
	// 가중치 0 이하 항목만 있어도 동일
	if got := Aggregate([]WeightedSub{{Score: 90, Weight: 0}}); got != 50 {
		t.Errorf("Aggregate(zero weight) = %d, want 50", got)
	}
}

func TestAggregateWeightedAverage(t *testing.T) {
	subs := []WeightedSub{
		{Score: 100, Weight: 1.5},
		{Score: 50, Weight: 1.0},
		{Score: 0, Weight: 0.5},
	}
	// (150 + 50 + 0) / (150 + 100 + 50) * 100 = 66.67 → 67
	if got := Aggregate(subs); got != 67 {
		t.Errorf("Aggregate() = %d, want 67", got)
	}
}

func TestAggregateFailedIndicatorExcluded(t *testing.T) {
	// 실패 지표는 분모에서도 빠진다: 남은 지표만으로 평균
	full := Aggregate([]WeightedSub{
		{Score: 80, Weight: 1.0},
		{Score: 80, Weight: 2.0},
	})
	partial := Aggregate([]WeightedSub{
		{Score: 80, Weight: 1.0},
	})
	if full != partial {
		t.Errorf("dropping an equal-score indicator changed the composite: %d vs %d", full, partial)
	}
	if full != 80 {
		t.Errorf("Aggregate() = %d, want 80", full)
	}
}

func TestAggregateBounds(t *testing.T) {
	cases := [][]WeightedSub{
		{{Score: 100, Weight: 5}},
		{{Score: 0, Weight: 5}},
		{{Score: 100, Weight: 1}, {Score: 100, Weight: 3}},
		{{Score: 37, Weight: 0.5}, {Score: 91, Weight: 1.5}, {Score: 4, Weight: 2}},
	}
	for i, subs := range cases {
		got := Aggregate(subs)
		if got < 0 || got > 100 {
			t.Errorf("case %d: Aggregate() = %d, out of [0,100]", i, got)
		}
	}
}
