package kis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	log := logger.NewNop()
	httpClient := httputil.New(&config.Config{}, log).DisableRetry()
	return NewClient(config.KISConfig{
		BaseURL:      baseURL,
		RatePerSec:   100,
		TokenMarginS: 60,
	}, httpClient, log)
}

func TestCredentialsEmpty(t *testing.T) {
	if !(Credentials{}).Empty() {
		t.Error("zero credentials should be empty")
	}
	if !(Credentials{AppKey: "k"}).Empty() {
		t.Error("key without secret should be empty")
	}
	if (Credentials{AppKey: "k", AppSecret: "s"}).Empty() {
		t.Error("key+secret should not be empty")
	}
}

func TestAuthorizeCachesToken(t *testing.T) {
	var authCalls int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/tokenP" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		atomic.AddInt64(&authCalls, 1)
		_, _ = w.Write([]byte(`{"access_token":"issued-token","token_type":"Bearer","expires_in":86400}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	creds := Credentials{AppKey: "key", AppSecret: "secret"}

	first, err := c.Authorize(context.Background(), creds)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if first.Token != "issued-token" {
		t.Errorf("token = %q, want issued-token", first.Token)
	}
	if first.Expiry.Before(time.Now()) {
		t.Error("expiry should be in the future")
	}

	// 두 번째 호출은 캐시 적중
	second, err := c.Authorize(context.Background(), creds)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if second.Token != first.Token {
		t.Error("cached session should return the same token")
	}
	if atomic.LoadInt64(&authCalls) != 1 {
		t.Errorf("auth endpoint hit %d times, want 1", authCalls)
	}
}

func TestAuthorizeCallerTokenShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("auth endpoint should not be hit when a token is supplied")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	session, err := c.Authorize(context.Background(), Credentials{
		AppKey:      "key",
		AppSecret:   "secret",
		AccessToken: "caller-token",
	})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if session.Token != "caller-token" {
		t.Errorf("token = %q, want caller-token", session.Token)
	}
}

func TestAuthorizeMissingCredentials(t *testing.T) {
	c := newTestClient("http://unused")
	if _, err := c.Authorize(context.Background(), Credentials{}); err == nil {
		t.Error("Authorize without credentials should fail")
	}
}

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("tr_id"); got != "FHKST01010100" {
			t.Errorf("tr_id = %q, want FHKST01010100", got)
		}
		if got := r.Header.Get("authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q, want Bearer tok", got)
		}
		_, _ = w.Write([]byte(`{"output":{"stck_prpr":"71500"},"rt_cd":"0","msg_cd":"","msg1":""}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	creds := Credentials{AppKey: "key", AppSecret: "secret"}
	session := Session{Token: "tok", Expiry: time.Now().Add(time.Hour)}

	price, err := c.GetQuote(context.Background(), creds, session, "005930")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if price != 71500 {
		t.Errorf("price = %v, want 71500", price)
	}
}

func TestGetQuoteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"stck_prpr":"0"},"rt_cd":"1","msg_cd":"EGW00123","msg1":"기간이 만료된 token 입니다"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	creds := Credentials{AppKey: "key", AppSecret: "secret"}
	session := Session{Token: "expired"}

	if _, err := c.GetQuote(context.Background(), creds, session, "005930"); err == nil {
		t.Error("rt_cd != 0 should fail")
	}
}

func TestGetInvestorFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("tr_id"); got != "FHKST01010900" {
			t.Errorf("tr_id = %q, want FHKST01010900", got)
		}
		_, _ = w.Write([]byte(`{
			"output":[{"prsn_ntby_qty":"-150000","frgn_ntby_qty":"100000","orgn_ntby_qty":"50000"}],
			"rt_cd":"0","msg_cd":"","msg1":""
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	creds := Credentials{AppKey: "key", AppSecret: "secret"}
	session := Session{Token: "tok"}

	flow, err := c.GetInvestorFlow(context.Background(), creds, session, "005930")
	if err != nil {
		t.Fatalf("GetInvestorFlow failed: %v", err)
	}

	if flow.Individual != -150000 {
		t.Errorf("Individual = %d, want -150000", flow.Individual)
	}
	if flow.Foreign != 100000 {
		t.Errorf("Foreign = %d, want 100000", flow.Foreign)
	}
	if flow.Institution != 50000 {
		t.Errorf("Institution = %d, want 50000", flow.Institution)
	}
}

func TestGetInvestorFlowEmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[],"rt_cd":"0","msg_cd":"","msg1":""}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	creds := Credentials{AppKey: "key", AppSecret: "secret"}

	if _, err := c.GetInvestorFlow(context.Background(), creds, Session{Token: "tok"}, "005930"); err == nil {
		t.Error("empty output should fail")
	}
}
