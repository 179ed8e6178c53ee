package analysis

import (
	"fmt"

	"github.com/wonny/stocklens/internal/indicator"
	"github.com/wonny/stocklens/internal/marketdata"
)

const atrPeriod = 14

// horizonFactors scale the ATR per trading horizon; the ATR source interval
// scales with the horizon too (finer for scalp, coarser for long).
var horizonFactors = struct {
	scalp, swing, long float64
}{1, 2, 3}

// BuildStrategies derives ATR-sized take-profit/stop-loss levels for the
// three horizons from the last price. The displayed ATR is the daily one.
func BuildStrategies(price float64, store map[string]*marketdata.BarSeries, domestic bool) Strategies {
	atrFor := func(interval string) (float64, bool) {
		series, ok := store[interval]
		if !ok {
			return 0, false
		}
		return indicator.ATR(series.Highs(), series.Lows(), series.Closes(), atrPeriod)
	}

	dailyATR, okDaily := atrFor("1d")
	if !okDaily {
		return Strategies{
			ATR:   Placeholder,
			Scalp: Levels{TP: Placeholder, SL: Placeholder},
			Swing: Levels{TP: Placeholder, SL: Placeholder},
			Long:  Levels{TP: Placeholder, SL: Placeholder},
		}
	}

	// Horizon-appropriate ATR source, falling back to daily
	scalpATR := dailyATR
	if v, ok := atrFor("1h"); ok {
		scalpATR = v
	}
	longATR := dailyATR
	if v, ok := atrFor("1wk"); ok {
		longATR = v
	}

	levels := func(atr, k float64) Levels {
		return Levels{
			TP: FmtPrice(price+k*atr, domestic),
			SL: FmtPrice(price-k*atr, domestic),
		}
	}

	return Strategies{
		ATR:   FmtPrice(dailyATR, domestic),
		Scalp: levels(scalpATR, horizonFactors.scalp),
		Swing: levels(dailyATR, horizonFactors.swing),
		Long:  levels(longATR, horizonFactors.long),
	}
}

const srWindow = 20

// BuildSR derives support/resistance from the trailing daily window:
// support is the swing low; resistance is the 20-bar average while price is
// still under it (the average acts as overhead supply), else the swing high.
func BuildSR(daily *marketdata.BarSeries, price float64, domestic bool) SR {
	if daily == nil || daily.Len() < srWindow {
		return SR{Support: Placeholder, Resistance: Placeholder, Position: 50}
	}

	bars := daily.Bars[daily.Len()-srWindow:]
	support := bars[0].Low
	maxHigh := bars[0].High
	for _, b := range bars[1:] {
		if b.Low < support {
			support = b.Low
		}
		if b.High > maxHigh {
			maxHigh = b.High
		}
	}

	resistance := maxHigh
	if ma20, ok := indicator.SMA(daily.Closes(), srWindow); ok && price < ma20 {
		resistance = ma20
	}

	position := 50.0
	if resistance != support {
		position = (price - support) / (resistance - support) * 100
		if position < 0 {
			position = 0
		}
		if position > 100 {
			position = 100
		}
	}

	return SR{
		Support:    FmtPrice(support, domestic),
		Resistance: FmtPrice(resistance, domestic),
		Position:   position,
	}
}

// BuildTrend classifies the trend from the 2×2 of price vs weekly MA20 and
// price vs daily MA20.
func BuildTrend(price float64, store map[string]*marketdata.BarSeries) TrendStatus {
	maFor := func(interval string) (float64, bool) {
		series, ok := store[interval]
		if !ok {
			return 0, false
		}
		return indicator.SMA(series.Closes(), 20)
	}

	weeklyMA, okW := maFor("1wk")
	dailyMA, okD := maFor("1d")
	if !okW || !okD {
		return TrendStatus{Msg: Placeholder, Color: "gray", Weekly: Placeholder, Daily: Placeholder}
	}

	aboveWeekly := price > weeklyMA
	aboveDaily := price > dailyMA

	status := TrendStatus{Weekly: "below", Daily: "below"}
	if aboveWeekly {
		status.Weekly = "above"
	}
	if aboveDaily {
		status.Daily = "above"
	}

	switch {
	case aboveWeekly && aboveDaily:
		status.Msg, status.Color = "강한 상승추세", "green"
	case aboveWeekly && !aboveDaily:
		status.Msg, status.Color = "상승추세 속 조정", "orange"
	case !aboveWeekly && aboveDaily:
		status.Msg, status.Color = "하락추세 속 반등 시도", "yellow"
	default:
		status.Msg, status.Color = "하락추세", "red"
	}

	return status
}

// BuildTurnover classifies trading activity as volume over shares
// outstanding. 회전율 = (거래량 / 상장주식수) × 100.
func BuildTurnover(volume, shares float64) Turnover {
	if shares <= 0 {
		return Turnover{
			Rate:   "0.00",
			Msg:    "데이터 미제공",
			Volume: FmtCount(volume),
			Shares: "0",
		}
	}

	rate := volume / shares * 100

	var msg string
	switch {
	case rate >= 10:
		msg = "🔥 폭발적 관심 (10%↑)"
	case rate >= 5:
		msg = "👀 매우 활발 (5%↑)"
	case rate >= 1:
		msg = "🙂 보통/활발 (1%↑)"
	default:
		msg = "💤 소외/조용 (1%↓)"
	}

	return Turnover{
		Rate:   fmt.Sprintf("%.2f", rate),
		Msg:    msg,
		Volume: FmtCount(volume),
		Shares: FmtCount(shares),
	}
}

// ClassifyVIX tiers the fear index value into a market-mood message.
func ClassifyVIX(value float64) *VIX {
	var msg string
	switch {
	case value <= 15:
		msg = "시장 안정"
	case value <= 20:
		msg = "보통"
	case value <= 30:
		msg = "변동성 주의"
	default:
		msg = "공포 구간"
	}

	return &VIX{
		Score: fmt.Sprintf("%.2f", value),
		Msg:   msg,
	}
}
