package symbols

import (
	"errors"
	"strings"
	"unicode"
)

// Market suffixes for domestic listings
const (
	SuffixKospi  = "KS"
	SuffixKosdaq = "KQ"
)

// ErrSymbolNotFound signals that a keyword could not be resolved to a
// fetchable symbol (native-script name with no master entry).
var ErrSymbolNotFound = errors.New("symbol not found")

// Entry is one listing in the symbol master.
type Entry struct {
	Code   string // 6-digit short code
	Suffix string // market suffix (KS/KQ)
	Name   string // company name (한글)
}

// Index maps company names to short codes and back.
// 시작 시 1회 구축, 이후 read-only — 동시 읽기 안전.
type Index struct {
	byName map[string]Entry // normalized name → entry
	byCode map[string]Entry // code → entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byName: make(map[string]Entry),
		byCode: make(map[string]Entry),
	}
}

// Add registers an entry under its normalized name and code.
func (idx *Index) Add(e Entry) {
	idx.byName[Normalize(e.Name)] = e
	idx.byCode[e.Code] = e
}

// Size returns the number of listed codes.
func (idx *Index) Size() int {
	return len(idx.byCode)
}

// Resolve maps a free-text keyword (ticker, 6-digit code, or 한글 종목명) to
// an exchange-qualified symbol.
//
//   - master name hit     → {code}.{suffix}
//   - 6-digit numeric     → {keyword}.KS (domestic by convention)
//   - anything else       → upper(keyword), assumed foreign ticker
//
// A result still containing Hangul means resolution failed; fetching such a
// literal would fail far less informatively downstream, so it is rejected
// here as ErrSymbolNotFound.
func (idx *Index) Resolve(keyword string) (string, error) {
	if e, ok := idx.byName[Normalize(keyword)]; ok {
		return e.Code + "." + e.Suffix, nil
	}

	if isSixDigits(keyword) {
		return keyword + "." + SuffixKospi, nil
	}

	symbol := strings.ToUpper(strings.TrimSpace(keyword))
	if containsHangul(symbol) {
		return "", ErrSymbolNotFound
	}
	return symbol, nil
}

// NameFor returns the listed company name for a qualified symbol, or the
// symbol itself when unknown.
func (idx *Index) NameFor(symbol string) string {
	code := symbol
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		code = symbol[:i]
	}
	if e, ok := idx.byCode[code]; ok {
		return e.Name
	}
	return symbol
}

// Normalize uppercases and strips all whitespace for name matching.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// fallbackEntries seeds the index when both master downloads fail, so the
// service keeps working for the most common domestic lookups.
var fallbackEntries = []Entry{
	{Code: "005930", Suffix: SuffixKospi, Name: "삼성전자"},
	{Code: "000660", Suffix: SuffixKospi, Name: "SK하이닉스"},
	{Code: "373220", Suffix: SuffixKospi, Name: "LG에너지솔루션"},
	{Code: "035420", Suffix: SuffixKospi, Name: "NAVER"},
	{Code: "035720", Suffix: SuffixKospi, Name: "카카오"},
	{Code: "005380", Suffix: SuffixKospi, Name: "현대차"},
	{Code: "247540", Suffix: SuffixKosdaq, Name: "에코프로비엠"},
	{Code: "086520", Suffix: SuffixKosdaq, Name: "에코프로"},
}

// FallbackIndex returns an index seeded with the hardcoded entries.
func FallbackIndex() *Index {
	idx := NewIndex()
	for _, e := range fallbackEntries {
		idx.Add(e)
	}
	return idx
}
