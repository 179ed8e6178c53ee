package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/stocklens/internal/broker/kis"
	"github.com/wonny/stocklens/internal/external/naver"
	"github.com/wonny/stocklens/internal/indicator"
	"github.com/wonny/stocklens/internal/marketdata"
	"github.com/wonny/stocklens/internal/symbols"
	"github.com/wonny/stocklens/pkg/logger"
)

// BarSource supplies bar series and fundamentals.
type BarSource interface {
	FetchBars(ctx context.Context, symbol, interval string) (*marketdata.BarSeries, error)
	FetchFundamentals(ctx context.Context, symbol string) (*marketdata.Fundamentals, error)
}

// Broker supplies the optional real-time overlay.
type Broker interface {
	Authorize(ctx context.Context, creds kis.Credentials) (kis.Session, error)
	GetQuote(ctx context.Context, creds kis.Credentials, session kis.Session, code string) (float64, error)
	GetInvestorFlow(ctx context.Context, creds kis.Credentials, session kis.Session, code string) (*kis.InvestorFlow, error)
}

// FlowFallback supplies investor flow without brokerage credentials.
type FlowFallback interface {
	FetchLatestFlow(ctx context.Context, stockCode string) (*naver.NetFlow, error)
}

// Summarizer produces the optional natural-language commentary.
type Summarizer interface {
	Summarize(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// Engine runs one analysis end to end: resolve, fetch, overlay, score,
// derive levels, enrich. Per-indicator and per-enrichment failures degrade
// to placeholders; only symbol-not-found and insufficient-data abort.
// ⭐ SSOT: 분석 파이프라인은 이 엔진에서만
type Engine struct {
	symbols  *symbols.Store
	bars     BarSource
	broker   Broker
	fallback FlowFallback
	summary  Summarizer
	logger   *logger.Logger
}

// NewEngine creates a new analysis engine. broker, fallback and summary may
// be nil; the matching enrichment is then disabled.
func NewEngine(
	store *symbols.Store,
	bars BarSource,
	broker Broker,
	fallback FlowFallback,
	summary Summarizer,
	log *logger.Logger,
) *Engine {
	return &Engine{
		symbols:  store,
		bars:     bars,
		broker:   broker,
		fallback: fallback,
		summary:  summary,
		logger:   log,
	}
}

// baseline intervals every request needs: daily for ATR/SR/turnover, weekly
// for the trend classification.
var baselineIntervals = []string{"1d", "1wk"}

// Analyze runs the full pipeline for one request.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	p := req.Params
	idx := e.symbols.Current()

	symbol, err := idx.Resolve(req.Keyword)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", req.Keyword, err)
	}
	domestic := IsDomestic(symbol)

	store := e.collectSeries(ctx, symbol, p)
	baseline, ok := store["1d"]
	if !ok {
		return nil, fmt.Errorf("analyze %s: %w", symbol, marketdata.ErrInsufficientData)
	}

	result := &Result{
		Ticker:     symbol,
		Name:       idx.NameFor(symbol),
		Currency:   currencyFor(domestic),
		Reasons:    []string{},
		Indicators: make(map[string]string),
	}

	// Real-time overlay: domestic instruments with credentials only
	e.applyOverlay(ctx, req, symbol, domestic, store, result)

	price := baseline.Last().Close
	result.Price = FmtPrice(price, domestic)

	// Scored indicators, iterated generically over the table
	subs := make([]WeightedSub, 0, 5)
	for _, si := range ScoredIndicators() {
		sub := si.Eval(p, store)
		if !sub.OK {
			result.Indicators[si.Name] = Placeholder
			continue
		}
		result.Indicators[si.Name] = sub.Display
		result.Reasons = append(result.Reasons, sub.Reasons...)
		subs = append(subs, WeightedSub{Score: sub.Score, Weight: si.Weight(p.Weights)})
	}
	result.Score = Aggregate(subs)

	// OBV: informational only, no score contribution
	if obv, ok := indicator.OBV(baseline.Closes(), baseline.Volumes()); ok {
		result.Indicators["OBV"] = fmt.Sprintf("%.0f", obv[len(obv)-1])
	} else {
		result.Indicators["OBV"] = Placeholder
	}

	result.Strategies = BuildStrategies(price, store, domestic)
	result.SupportRes = BuildSR(baseline, price, domestic)
	result.TrendStatus = BuildTrend(price, store)

	// Fundamentals: turnover + analyst consensus, both degrade on failure
	e.applyFundamentals(ctx, symbol, domestic, price, baseline.Last().Volume, result)

	// Market-fear overlay
	if vixSeries, err := e.bars.FetchBars(ctx, "^VIX", "1d"); err == nil && vixSeries.Len() > 0 {
		result.VIX = ClassifyVIX(vixSeries.Last().Close)
	} else if err != nil {
		e.logger.WithError(err).Debug("VIX fetch failed")
	}

	// Narrative summary: failure is a diagnostic, never commentary
	e.applySummary(ctx, req, result)

	e.logger.WithFields(map[string]interface{}{
		"keyword": req.Keyword,
		"ticker":  symbol,
		"score":   result.Score,
	}).Info("Analysis completed")

	return result, nil
}

// collectSeries fetches every needed interval, dropping those with fewer
// than the minimum usable rows.
func (e *Engine) collectSeries(ctx context.Context, symbol string, p Params) map[string]*marketdata.BarSeries {
	needed := make(map[string]bool)
	for _, interval := range []string{p.MAInterval, p.RSIInterval, p.MACDInterval, p.StochInterval, p.BBInterval} {
		if interval != "" {
			needed[interval] = true
		}
	}
	for _, interval := range baselineIntervals {
		needed[interval] = true
	}

	store := make(map[string]*marketdata.BarSeries, len(needed))
	for interval := range needed {
		series, err := e.bars.FetchBars(ctx, symbol, interval)
		if err != nil {
			e.logger.WithError(err).WithFields(map[string]interface{}{
				"symbol":   symbol,
				"interval": interval,
			}).Debug("Bar fetch failed, dropping interval")
			continue
		}
		if series.Len() < marketdata.MinUsableBars {
			e.logger.WithFields(map[string]interface{}{
				"symbol":   symbol,
				"interval": interval,
				"bars":     series.Len(),
			}).Debug("Too few bars, dropping interval")
			continue
		}
		store[interval] = series
	}

	return store
}

// applyOverlay patches the latest close of every held series with the live
// brokerage quote and attaches investor flow. Any failure leaves the
// enrichment absent.
func (e *Engine) applyOverlay(ctx context.Context, req Request, symbol string, domestic bool, store map[string]*marketdata.BarSeries, result *Result) {
	code := strings.SplitN(symbol, ".", 2)[0]

	if domestic && e.broker != nil && !req.KIS.Empty() {
		session, err := e.broker.Authorize(ctx, req.KIS)
		if err != nil {
			e.logger.WithError(err).Warn("KIS authorization failed")
		} else {
			token := session.Token
			result.AuthInfo.Token = &token
			if !session.Expiry.IsZero() {
				expire := session.Expiry.Format("2006-01-02 15:04:05")
				result.AuthInfo.Expire = &expire
			}

			if quote, err := e.broker.GetQuote(ctx, req.KIS, session, code); err != nil {
				e.logger.WithError(err).Debug("KIS quote failed")
			} else {
				for _, series := range store {
					series.OverlayClose(quote)
				}
				result.RealTime = true
			}

			if flow, err := e.broker.GetInvestorFlow(ctx, req.KIS, session, code); err != nil {
				e.logger.WithError(err).Debug("KIS investor flow failed")
			} else {
				result.Investors = flow
			}
		}
	}

	// Naver backup: domestic symbols without a brokerage result
	if domestic && result.Investors == nil && e.fallback != nil {
		if flow, err := e.fallback.FetchLatestFlow(ctx, code); err != nil {
			e.logger.WithError(err).Debug("Naver investor fallback failed")
		} else {
			result.Investors = &kis.InvestorFlow{
				Individual:  flow.Individual,
				Foreign:     flow.Foreign,
				Institution: flow.Institution,
			}
		}
	}
}

// applyFundamentals fills turnover and analyst consensus.
func (e *Engine) applyFundamentals(ctx context.Context, symbol string, domestic bool, price, volume float64, result *Result) {
	fund, err := e.bars.FetchFundamentals(ctx, symbol)
	if err != nil {
		e.logger.WithError(err).Debug("Fundamentals fetch failed")
		result.Turnover = BuildTurnover(volume, 0)
		return
	}

	result.Turnover = BuildTurnover(volume, fund.SharesOutstanding)

	if fund.Recommendation == "" && fund.TargetMean == 0 {
		return
	}

	analyst := &Analyst{
		Recommendation: fund.Recommendation,
		TargetMean:     FmtPrice(fund.TargetMean, domestic),
		TargetLow:      FmtPrice(fund.TargetLow, domestic),
		TargetHigh:     FmtPrice(fund.TargetHigh, domestic),
		Upside:         Placeholder,
	}
	if fund.TargetMean > 0 && price > 0 {
		analyst.Upside = fmt.Sprintf("%.2f", (fund.TargetMean-price)/price*100)
	}
	result.Analyst = analyst
}

// applySummary asks the generative model for commentary. Errors surface in
// ai_error, never in ai_message.
func (e *Engine) applySummary(ctx context.Context, req Request, result *Result) {
	if e.summary == nil || req.GeminiKey == "" {
		return
	}

	text, err := e.summary.Summarize(ctx, req.GeminiKey, req.GeminiModel, buildPrompt(result))
	if err != nil {
		e.logger.WithError(err).Warn("Summary generation failed")
		result.AIError = err.Error()
		return
	}
	result.AIMessage = &text
}

// buildPrompt renders the structured result into a Korean analyst prompt.
func buildPrompt(r *Result) string {
	var sb strings.Builder
	sb.WriteString("당신은 주식 애널리스트입니다. 아래 기술적 분석 결과를 투자자에게 3문장 이내로 요약해 주세요.\n")
	fmt.Fprintf(&sb, "종목: %s (%s), 현재가: %s %s\n", r.Name, r.Ticker, r.Price, r.Currency)
	fmt.Fprintf(&sb, "종합 점수: %d/100\n", r.Score)
	if len(r.Reasons) > 0 {
		fmt.Fprintf(&sb, "근거: %s\n", strings.Join(r.Reasons, ", "))
	}
	fmt.Fprintf(&sb, "추세: %s\n", r.TrendStatus.Msg)
	fmt.Fprintf(&sb, "지지선 %s / 저항선 %s\n", r.SupportRes.Support, r.SupportRes.Resistance)
	sb.WriteString(fmt.Sprintf("분석 시각: %s\n", time.Now().Format("2006-01-02 15:04")))
	return sb.String()
}

func currencyFor(domestic bool) string {
	if domestic {
		return "KRW"
	}
	return "USD"
}
