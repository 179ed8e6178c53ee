package naver

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NetFlow holds per-investor-class net volumes for the latest session.
// 증권사 자격증명 없이 수급을 조회하는 백업 소스.
type NetFlow struct {
	Individual  int64 `json:"individual"`
	Foreign     int64 `json:"foreign"`
	Institution int64 `json:"institution"`
}

var investorDateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// FetchLatestFlow fetches the most recent investor net-buy row for a
// domestic stock code from the Naver Finance foreign/institution page.
func (c *Client) FetchLatestFlow(ctx context.Context, stockCode string) (*NetFlow, error) {
	url := fmt.Sprintf("https://finance.naver.com/item/frgn.naver?code=%s", stockCode)

	resp, err := c.httpClient.GetWithHeaders(ctx, url, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    "https://finance.naver.com/",
	})
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	flow, err := parseInvestorHTML(string(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code":  stockCode,
		"foreign":     flow.Foreign,
		"institution": flow.Institution,
	}).Debug("Fetched investor flow from Naver")

	return flow, nil
}

// parseInvestorHTML extracts the first dated row from the page.
// Naver Finance HTML 구조: 두번째 type2 테이블이 데이터 테이블.
func parseInvestorHTML(html string) (*NetFlow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	tables := doc.Find("table.type2")
	if tables.Length() < 2 {
		return nil, fmt.Errorf("investor table not found")
	}

	var flow *NetFlow
	tables.Eq(1).Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return true
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !investorDateRe.MatchString(dateText) {
			return true
		}

		instNet := parseNum(cells.Eq(5).Text())
		foreignNet := parseNum(cells.Eq(6).Text())
		flow = &NetFlow{
			// 개인 = -(외국인 + 기관)
			Individual:  -(foreignNet + instNet),
			Foreign:     foreignNet,
			Institution: instNet,
		}
		return false
	})

	if flow == nil {
		return nil, fmt.Errorf("no investor rows found")
	}
	return flow, nil
}

func parseNum(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "+", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
