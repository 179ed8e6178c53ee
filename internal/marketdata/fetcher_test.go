package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

func TestPeriodByInterval(t *testing.T) {
	cases := map[string]string{
		"1m":  "5d",
		"5m":  "5d",
		"15m": "1mo",
		"1h":  "1mo",
		"1d":  "2y",
		"1wk": "2y",
		"1mo": "2y",
	}
	for interval, want := range cases {
		if got := PeriodByInterval(interval); got != want {
			t.Errorf("PeriodByInterval(%q) = %q, want %q", interval, got, want)
		}
	}
}

func newTestFetcher(t *testing.T, chartURL, quoteURL string) *Fetcher {
	t.Helper()

	log := logger.NewNop()
	httpClient := httputil.New(&config.Config{}, log).DisableRetry()
	return NewFetcher(config.YahooConfig{
		ChartBaseURL: chartURL,
		QuoteBaseURL: quoteURL,
	}, httpClient, log)
}

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704067200, 1704240000],
      "indicators": {
        "quote": [{
          "open":   [101, 100, null],
          "high":   [103, 102, null],
          "low":    [99, 98, null],
          "close":  [102, 101, null],
          "volume": [2000, 1000, null]
        }]
      }
    }],
    "error": null
  }
}`

func TestFetchBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("range") != "2y" {
			t.Errorf("range = %q, want 2y", r.URL.Query().Get("range"))
		}
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL, srv.URL)
	series, err := f.FetchBars(context.Background(), "AAPL", "1d")
	if err != nil {
		t.Fatalf("FetchBars failed: %v", err)
	}

	// null bar 1개 제외 → 2개, 시간 오름차순 정렬
	if series.Len() != 2 {
		t.Fatalf("series len = %d, want 2", series.Len())
	}
	if !series.Bars[0].Time.Before(series.Bars[1].Time) {
		t.Error("bars not sorted ascending by time")
	}
	if series.Last().Close != 102 {
		t.Errorf("last close = %v, want 102", series.Last().Close)
	}
	if series.Bars[0].Volume != 1000 {
		t.Errorf("first volume = %v, want 1000", series.Bars[0].Volume)
	}
}

func TestFetchBarsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL, srv.URL)
	if _, err := f.FetchBars(context.Background(), "NOPE", "1d"); err == nil {
		t.Error("FetchBars should fail on a chart api error")
	}
}

func TestFetchBarsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL, srv.URL)
	if _, err := f.FetchBars(context.Background(), "NOPE", "1d"); err == nil {
		t.Error("FetchBars should fail on empty result")
	}
}

func TestFetchFundamentals(t *testing.T) {
	fixture := `{
	  "quoteSummary": {
	    "result": [{
	      "financialData": {
	        "recommendationKey": "buy",
	        "targetMeanPrice": {"raw": 250.5},
	        "targetLowPrice": {"raw": 180},
	        "targetHighPrice": {"raw": 310}
	      },
	      "defaultKeyStatistics": {
	        "sharesOutstanding": {"raw": 15000000000}
	      }
	    }],
	    "error": null
	  }
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL, srv.URL)
	fund, err := f.FetchFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchFundamentals failed: %v", err)
	}

	if fund.Recommendation != "buy" {
		t.Errorf("recommendation = %q, want buy", fund.Recommendation)
	}
	if fund.TargetMean != 250.5 {
		t.Errorf("target mean = %v, want 250.5", fund.TargetMean)
	}
	if fund.SharesOutstanding != 15000000000 {
		t.Errorf("shares = %v, want 15000000000", fund.SharesOutstanding)
	}
}

func TestFetchFundamentalsMissingModules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{}],"error":null}}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL, srv.URL)
	fund, err := f.FetchFundamentals(context.Background(), "005930.KS")
	if err != nil {
		t.Fatalf("FetchFundamentals failed: %v", err)
	}

	// 모듈 없음 → 제로값으로 degrade
	if fund.Recommendation != "" || fund.SharesOutstanding != 0 {
		t.Errorf("expected zero values, got %+v", fund)
	}
}

func TestOverlayClose(t *testing.T) {
	series := &BarSeries{
		Symbol:   "005930.KS",
		Interval: "1d",
		Bars: []Bar{
			{Time: time.Unix(1, 0), Close: 100},
			{Time: time.Unix(2, 0), Close: 101},
		},
	}

	series.OverlayClose(105)

	if series.Last().Close != 105 {
		t.Errorf("last close = %v, want 105", series.Last().Close)
	}
	// 마지막 bar만 덮어쓴다
	if series.Bars[0].Close != 100 {
		t.Errorf("first close = %v, want 100 (untouched)", series.Bars[0].Close)
	}

	// 빈 시리즈는 no-op
	empty := &BarSeries{}
	empty.OverlayClose(105)
	if empty.Len() != 0 {
		t.Error("overlay on empty series should be a no-op")
	}
}
