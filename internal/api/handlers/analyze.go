package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/stocklens/internal/analysis"
	"github.com/wonny/stocklens/internal/broker/kis"
	"github.com/wonny/stocklens/pkg/logger"
)

// Analyzer runs one analysis request.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

// AnalyzeHandler handles the stock analysis endpoint
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalyzeHandler struct {
	engine Analyzer
	logger *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(engine Analyzer, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine: engine,
		logger: log,
	}
}

// Analyze runs the full analysis for a keyword.
// GET /analyze/{keyword}
//
// Failures are surfaced as {"error": msg} with a 200 status; the caller
// always receives a syntactically valid JSON object.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	keyword := mux.Vars(r)["keyword"]

	if keyword == "" {
		respondJSON(w, http.StatusOK, map[string]string{"error": "keyword is required"})
		return
	}

	req := analysis.Request{
		Keyword: keyword,
		Params:  paramsFromQuery(r),
		KIS: kis.Credentials{
			AppKey:      r.Header.Get("X-KIS-App-Key"),
			AppSecret:   r.Header.Get("X-KIS-App-Secret"),
			AccessToken: r.Header.Get("X-KIS-Access-Token"),
		},
		GeminiKey:   r.Header.Get("X-Gemini-Key"),
		GeminiModel: r.Header.Get("X-Gemini-Model"),
	}

	result, err := h.engine.Analyze(ctx, req)
	if err != nil {
		h.logger.WithError(err).WithField("keyword", keyword).Warn("Analysis failed")
		respondJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// paramsFromQuery parses the per-indicator intervals, lookbacks and weights,
// falling back to the facade defaults.
func paramsFromQuery(r *http.Request) analysis.Params {
	q := r.URL.Query()
	p := analysis.DefaultParams()

	getStr := func(key string, target *string) {
		if v := q.Get(key); v != "" {
			*target = v
		}
	}
	getInt := func(key string, target *int) {
		if v := q.Get(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*target = n
			}
		}
	}
	getFloat := func(key string, target *float64) {
		if v := q.Get(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				*target = f
			}
		}
	}

	getStr("ma_interval", &p.MAInterval)
	getInt("ma_short", &p.MAShort)
	getInt("ma_long", &p.MALong)
	getStr("rsi_interval", &p.RSIInterval)
	getInt("rsi_period", &p.RSIPeriod)
	getStr("macd_interval", &p.MACDInterval)
	getInt("macd_fast", &p.MACDFast)
	getInt("macd_slow", &p.MACDSlow)
	getInt("macd_signal", &p.MACDSignal)
	getStr("stoch_interval", &p.StochInterval)
	getInt("stoch_k", &p.StochK)
	getStr("bb_interval", &p.BBInterval)
	getInt("bb_length", &p.BBLength)
	getFloat("bb_std", &p.BBStd)

	getFloat("w_ma", &p.Weights.MA)
	getFloat("w_rsi", &p.Weights.RSI)
	getFloat("w_macd", &p.Weights.MACD)
	getFloat("w_stoch", &p.Weights.Stoch)
	getFloat("w_bb", &p.Weights.BB)

	return p
}
