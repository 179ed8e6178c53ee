package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// MinUsableBars is the minimum row count below which a fetched series is
// treated as "insufficient data" and the interval is dropped from the
// working set. The baseline daily series falling below it fails the whole
// analysis.
const MinUsableBars = 20

// ErrInsufficientData signals that the mandatory baseline series is missing
// or too short to analyze.
var ErrInsufficientData = errors.New("insufficient data")

// Fetcher retrieves OHLCV bar series and fundamental fields from Yahoo
// Finance.
// ⭐ SSOT: 시세/펀더멘털 조회는 이 Fetcher에서만
type Fetcher struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.YahooConfig
}

// NewFetcher creates a new market data fetcher
func NewFetcher(cfg config.YahooConfig, httpClient *httputil.Client, log *logger.Logger) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// PeriodByInterval maps bar granularity to an interval-appropriate lookback
// window. Finer granularity produces far more bars per unit time, so a fixed
// row-count budget needs a shorter wall-clock window.
func PeriodByInterval(interval string) string {
	switch interval {
	case "1m", "2m", "5m":
		return "5d"
	case "15m", "30m", "60m", "90m", "1h":
		return "1mo"
	default:
		return "2y"
	}
}

// chartResponse is the Yahoo Finance v8 chart API response shape
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat collapses the chart API's nullable numeric cells to float64.
func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// FetchBars retrieves the bar series for a symbol at the given interval,
// with the lookback window chosen by PeriodByInterval.
func (f *Fetcher) FetchBars(ctx context.Context, symbol, interval string) (*BarSeries, error) {
	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		f.cfg.ChartBaseURL, url.PathEscape(symbol), interval, PeriodByInterval(interval))

	resp, err := f.httpClient.GetWithHeaders(ctx, u, map[string]string{
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return nil, fmt.Errorf("chart fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chart read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("chart decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("chart: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart: no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, Bar{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(quote.Volume[i]),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	f.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"bars":     len(bars),
	}).Debug("Fetched bar series")

	return &BarSeries{Symbol: symbol, Interval: interval, Bars: bars}, nil
}

// Fundamentals holds single-shot analyst and share data for a symbol.
// 값이 없으면 0 — 호출부에서 방어.
type Fundamentals struct {
	Recommendation    string
	TargetMean        float64
	TargetLow         float64
	TargetHigh        float64
	SharesOutstanding float64
}

// quoteSummaryResponse is the Yahoo quoteSummary API response shape
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *struct {
				RecommendationKey string `json:"recommendationKey"`
				TargetMeanPrice   struct {
					Raw float64 `json:"raw"`
				} `json:"targetMeanPrice"`
				TargetLowPrice struct {
					Raw float64 `json:"raw"`
				} `json:"targetLowPrice"`
				TargetHighPrice struct {
					Raw float64 `json:"raw"`
				} `json:"targetHighPrice"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				SharesOutstanding struct {
					Raw float64 `json:"raw"`
				} `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals retrieves analyst recommendation, target prices and
// shares outstanding. Every field is optional; absence degrades to zero
// values and never fails the request.
func (f *Fetcher) FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	u := fmt.Sprintf("%s/%s?modules=financialData,defaultKeyStatistics",
		f.cfg.QuoteBaseURL, url.PathEscape(symbol))

	resp, err := f.httpClient.GetWithHeaders(ctx, u, map[string]string{
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return nil, fmt.Errorf("fundamentals fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fundamentals read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fundamentals: status %d", resp.StatusCode)
	}

	var summary quoteSummaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("fundamentals decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("fundamentals api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("fundamentals: no data for %s", symbol)
	}

	result := summary.QuoteSummary.Result[0]
	fund := &Fundamentals{}
	if fd := result.FinancialData; fd != nil {
		fund.Recommendation = fd.RecommendationKey
		fund.TargetMean = fd.TargetMeanPrice.Raw
		fund.TargetLow = fd.TargetLowPrice.Raw
		fund.TargetHigh = fd.TargetHighPrice.Raw
	}
	if ks := result.DefaultKeyStatistics; ks != nil {
		fund.SharesOutstanding = ks.SharesOutstanding.Raw
	}

	return fund, nil
}
