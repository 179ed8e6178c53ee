package symbols

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/korean"

	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// Fixed-width layout of the KIS master files (kospi_code.mst /
// kosdaq_code.mst). Each row carries the short code in ASCII at the head,
// the EUC-KR company name after the standard code, and a 228-byte numeric
// block at the tail.
const (
	masterShortCodeEnd = 9
	masterStdCodeEnd   = 21
	masterTailWidth    = 228
	masterMinRowWidth  = masterStdCodeEnd + masterTailWidth
)

// Loader downloads and parses the exchange master files into an Index.
// ⭐ SSOT: 종목 마스터 다운로드/파싱은 이 Loader에서만
type Loader struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.MasterConfig
}

// NewLoader creates a new master file loader
func NewLoader(cfg config.MasterConfig, httpClient *httputil.Client, log *logger.Logger) *Loader {
	return &Loader{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// Load downloads both master files and builds the index. A single file
// failing is tolerated; both failing degrades to the hardcoded fallback set
// so foreign tickers (and the most common domestic names) still resolve.
func (l *Loader) Load(ctx context.Context) *Index {
	idx := NewIndex()
	failures := 0

	sources := []struct {
		url    string
		suffix string
	}{
		{l.cfg.KospiURL, SuffixKospi},
		{l.cfg.KosdaqURL, SuffixKosdaq},
	}

	for _, src := range sources {
		count, err := l.loadOne(ctx, idx, src.url, src.suffix)
		if err != nil {
			l.logger.WithError(err).WithField("url", src.url).Warn("Master file load failed")
			failures++
			continue
		}
		l.logger.WithFields(map[string]interface{}{
			"suffix": src.suffix,
			"count":  count,
		}).Info("Loaded symbol master")
	}

	if failures == len(sources) {
		l.logger.Warn("All master downloads failed, using fallback entries")
		return FallbackIndex()
	}

	return idx
}

// loadOne downloads one compressed master file and merges it into idx.
func (l *Loader) loadOne(ctx context.Context, idx *Index, url, suffix string) (int, error) {
	resp, err := l.httpClient.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("download master: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download master: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read master body: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return 0, fmt.Errorf("open master zip: %w", err)
	}
	if len(zr.File) == 0 {
		return 0, fmt.Errorf("master zip is empty")
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return 0, fmt.Errorf("open master entry: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read master entry: %w", err)
	}

	return l.parseRows(idx, raw, suffix), nil
}

// parseRows decodes the fixed-width rows. Rows shorter than the minimum
// width or with undecodable fields are skipped individually; one bad row
// never aborts the load.
func (l *Loader) parseRows(idx *Index, raw []byte, suffix string) int {
	decoder := korean.EUCKR.NewDecoder()
	count := 0

	for _, row := range bytes.Split(raw, []byte("\n")) {
		row = bytes.TrimRight(row, "\r")
		if len(row) < masterMinRowWidth {
			continue
		}

		code := strings.TrimSpace(string(row[:masterShortCodeEnd]))
		// 일부 행은 단축코드 앞에 시장 구분 문자가 붙음
		if len(code) == 7 && !isSixDigits(code) {
			code = code[1:]
		}
		if !isSixDigits(code) {
			continue
		}

		nameRaw := row[masterStdCodeEnd : len(row)-masterTailWidth]
		nameBytes, err := decoder.Bytes(nameRaw)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(nameBytes))
		if name == "" {
			continue
		}

		idx.Add(Entry{Code: code, Suffix: suffix, Name: name})
		count++
	}

	return count
}
