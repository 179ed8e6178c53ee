package kis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// Credentials carry the caller-supplied KIS app key/secret and an optional
// pre-issued access token. They arrive per request via headers and are never
// stored beyond the token cache entry they key.
type Credentials struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

// Empty reports whether no usable credentials were supplied.
func (c Credentials) Empty() bool {
	return c.AppKey == "" || c.AppSecret == ""
}

// Session is an issued access token with its expiry instant.
type Session struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expire"`
}

// Client handles communication with KIS (한국투자증권) API
// ⭐ SSOT: KIS API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.KISConfig
	limiter    *rate.Limiter

	// Token cache keyed by app key. A race between two requests refreshing
	// the same key costs one redundant auth call, nothing more.
	tokens  map[string]Session
	tokenMu sync.RWMutex
}

// NewClient creates a new KIS API client
func NewClient(cfg config.KISConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		tokens:     make(map[string]Session),
	}
}

// tokenResponse represents the OAuth token response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authorize returns a valid session for the credentials, reusing the cached
// token until expiry. A caller-supplied access token short-circuits the
// cache entirely.
func (c *Client) Authorize(ctx context.Context, creds Credentials) (Session, error) {
	if creds.AccessToken != "" {
		return Session{Token: creds.AccessToken}, nil
	}
	if creds.Empty() {
		return Session{}, fmt.Errorf("missing app key/secret")
	}

	c.tokenMu.RLock()
	if s, ok := c.tokens[creds.AppKey]; ok && time.Now().Before(s.Expiry) {
		c.tokenMu.RUnlock()
		return s, nil
	}
	c.tokenMu.RUnlock()

	// Need to refresh token
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := c.tokens[creds.AppKey]; ok && time.Now().Before(s.Expiry) {
		return s, nil
	}

	url := fmt.Sprintf("%s/oauth2/tokenP", c.cfg.BaseURL)
	body := fmt.Sprintf(`{"grant_type":"client_credentials","appkey":"%s","appsecret":"%s"}`,
		creds.AppKey, creds.AppSecret)

	resp, err := c.httpClient.Post(ctx, url, "application/json", strings.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Session{}, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return Session{}, fmt.Errorf("failed to decode token response: %w", err)
	}

	session := Session{
		Token:  tokenResp.AccessToken,
		Expiry: time.Now().Add(time.Duration(tokenResp.ExpiresIn-c.cfg.TokenMarginS) * time.Second),
	}
	c.tokens[creds.AppKey] = session

	c.logger.WithFields(map[string]interface{}{
		"expires_in": tokenResp.ExpiresIn,
	}).Info("KIS access token refreshed")

	return session, nil
}

// request makes an authenticated request to KIS API
func (c *Client) request(ctx context.Context, creds Credentials, session Session, path, trID string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s%s", c.cfg.BaseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set required headers
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", fmt.Sprintf("Bearer %s", session.Token))
	req.Header.Set("appkey", creds.AppKey)
	req.Header.Set("appsecret", creds.AppSecret)
	req.Header.Set("tr_id", trID)

	return c.httpClient.Do(req)
}

// GetQuote gets the real-time current price for a domestic stock code.
func (c *Client) GetQuote(ctx context.Context, creds Credentials, session Session, code string) (float64, error) {
	path := fmt.Sprintf("/uapi/domestic-stock/v1/quotations/inquire-price?FID_COND_MRKT_DIV_CODE=J&FID_INPUT_ISCD=%s", code)
	trID := "FHKST01010100" // 국내주식 현재가

	resp, err := c.request(ctx, creds, session, path, trID)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("API error status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Output struct {
			CurrentPrice float64 `json:"stck_prpr,string"` // 현재가
		} `json:"output"`
		RtCd  string `json:"rt_cd"`
		MsgCd string `json:"msg_cd"`
		Msg1  string `json:"msg1"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if result.RtCd != "0" {
		return 0, fmt.Errorf("API error: %s - %s", result.MsgCd, result.Msg1)
	}

	if result.Output.CurrentPrice <= 0 {
		return 0, fmt.Errorf("no price for %s", code)
	}

	return result.Output.CurrentPrice, nil
}

// InvestorFlow holds per-investor-class net volumes for the latest session.
type InvestorFlow struct {
	Individual  int64 `json:"individual"`
	Foreign     int64 `json:"foreign"`
	Institution int64 `json:"institution"`
}

// GetInvestorFlow gets per-investor-class net-buy volumes for a stock.
func (c *Client) GetInvestorFlow(ctx context.Context, creds Credentials, session Session, code string) (*InvestorFlow, error) {
	path := fmt.Sprintf("/uapi/domestic-stock/v1/quotations/inquire-investor?FID_COND_MRKT_DIV_CODE=J&FID_INPUT_ISCD=%s", code)
	trID := "FHKST01010900" // 국내주식 투자자별 매매동향

	resp, err := c.request(ctx, creds, session, path, trID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Output []struct {
			IndividualNet int64 `json:"prsn_ntby_qty,string"` // 개인 순매수
			ForeignNet    int64 `json:"frgn_ntby_qty,string"` // 외국인 순매수
			InstNet       int64 `json:"orgn_ntby_qty,string"` // 기관 순매수
		} `json:"output"`
		RtCd  string `json:"rt_cd"`
		MsgCd string `json:"msg_cd"`
		Msg1  string `json:"msg1"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.RtCd != "0" {
		return nil, fmt.Errorf("API error: %s - %s", result.MsgCd, result.Msg1)
	}

	if len(result.Output) == 0 {
		return nil, fmt.Errorf("no investor data for %s", code)
	}

	row := result.Output[0]
	return &InvestorFlow{
		Individual:  row.IndividualNet,
		Foreign:     row.ForeignNet,
		Institution: row.InstNet,
	}, nil
}
