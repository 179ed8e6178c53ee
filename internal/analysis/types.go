package analysis

import "github.com/wonny/stocklens/internal/broker/kis"

// Placeholder marks a sub-result whose computation was unavailable. The
// response shape stays stable regardless of which computations succeeded.
const Placeholder = "-"

// Weights are the caller-supplied positive multipliers per indicator
// category.
type Weights struct {
	MA    float64
	RSI   float64
	MACD  float64
	Stoch float64
	BB    float64
}

// DefaultWeights returns the facade defaults.
func DefaultWeights() Weights {
	return Weights{MA: 1.5, RSI: 1.0, MACD: 1.0, Stoch: 0.5, BB: 1.0}
}

// Params select the interval and lookback for each indicator. Different
// indicators may legitimately be evaluated on different intervals in the
// same request.
type Params struct {
	MAInterval string
	MAShort    int
	MALong     int

	RSIInterval string
	RSIPeriod   int

	MACDInterval string
	MACDFast     int
	MACDSlow     int
	MACDSignal   int

	StochInterval string
	StochK        int

	BBInterval string
	BBLength   int
	BBStd      float64

	Weights Weights
}

// DefaultParams returns the facade defaults.
func DefaultParams() Params {
	return Params{
		MAInterval: "1wk", MAShort: 50, MALong: 200,
		RSIInterval: "1d", RSIPeriod: 14,
		MACDInterval: "1wk", MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		StochInterval: "1d", StochK: 14,
		BBInterval: "1d", BBLength: 20, BBStd: 2.0,
		Weights: DefaultWeights(),
	}
}

// Request is one analysis request. Credentials and model keys are optional;
// absence disables the corresponding enrichment.
type Request struct {
	Keyword string
	Params  Params

	KIS         kis.Credentials
	GeminiKey   string
	GeminiModel string
}

// Levels holds take-profit/stop-loss for one horizon.
type Levels struct {
	TP string `json:"tp"`
	SL string `json:"sl"`
}

// Strategies holds ATR-sized trading levels for the three horizons.
type Strategies struct {
	ATR   string `json:"atr"`
	Scalp Levels `json:"scalp"` // 단타: 1 × ATR
	Swing Levels `json:"swing"` // 스윙: 2 × ATR
	Long  Levels `json:"long"`  // 장투: 3 × ATR
}

// Turnover holds volume-vs-float activity for the latest bar.
type Turnover struct {
	Rate   string `json:"rate"`
	Msg    string `json:"msg"`
	Volume string `json:"volume"`
	Shares string `json:"shares"`
}

// VIX is the market-fear overlay.
type VIX struct {
	Score string `json:"score"`
	Msg   string `json:"msg"`
}

// TrendStatus is the 2×2 weekly/daily MA20 classification.
type TrendStatus struct {
	Msg    string `json:"msg"`
	Color  string `json:"color"`
	Weekly string `json:"weekly"`
	Daily  string `json:"daily"`
}

// Analyst holds analyst consensus fields from the fundamentals source.
type Analyst struct {
	Recommendation string `json:"recommendation"`
	TargetMean     string `json:"target_mean"`
	TargetLow      string `json:"target_low"`
	TargetHigh     string `json:"target_high"`
	Upside         string `json:"upside"`
}

// AuthInfo surfaces the brokerage session used for the overlay, so callers
// can reuse the token.
type AuthInfo struct {
	Token  *string `json:"token"`
	Expire *string `json:"expire"`
}

// SR holds the support/resistance band and price position within it.
type SR struct {
	Support    string  `json:"support"`
	Resistance string  `json:"resistance"`
	Position   float64 `json:"position"`
}

// Result is the full analysis response.
type Result struct {
	Ticker      string            `json:"ticker"`
	Name        string            `json:"name"`
	Price       string            `json:"price"`
	Currency    string            `json:"currency"`
	Score       int               `json:"score"`
	Reasons     []string          `json:"reasons"`
	Indicators  map[string]string `json:"indicators"`
	Strategies  Strategies        `json:"strategies"`
	Turnover    Turnover          `json:"turnover"`
	RealTime    bool              `json:"real_time"`
	VIX         *VIX              `json:"vix"`
	TrendStatus TrendStatus       `json:"trend_status"`
	AIMessage   *string           `json:"ai_message"`
	AIError     string            `json:"ai_error,omitempty"`
	Analyst     *Analyst          `json:"analyst"`
	Investors   *kis.InvestorFlow `json:"investors"`
	AuthInfo    AuthInfo          `json:"auth_info"`
	SupportRes  SR                `json:"sr"`
}
