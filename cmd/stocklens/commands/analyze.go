package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/analysis"
	"github.com/wonny/stocklens/internal/broker/kis"
	"github.com/wonny/stocklens/internal/external/naver"
	"github.com/wonny/stocklens/internal/genai"
	"github.com/wonny/stocklens/internal/marketdata"
	"github.com/wonny/stocklens/internal/symbols"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// analyzeCmd runs a one-shot analysis and prints the JSON result
var analyzeCmd = &cobra.Command{
	Use:   "analyze [keyword]",
	Short: "단일 종목 분석 실행",
	Long: `서버 없이 한 종목을 분석하고 결과 JSON을 출력합니다.

Example:
  go run ./cmd/stocklens analyze 005930
  go run ./cmd/stocklens analyze 삼성전자
  go run ./cmd/stocklens analyze AAPL --ma-interval 1d`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeMAInterval string

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeMAInterval, "ma-interval", "", "이동평균 평가 주기 (기본 1wk)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()

	loader := symbols.NewLoader(cfg.Master, httpClient, log)
	store := symbols.NewStore(cmd.Context(), loader)

	fetcher := marketdata.NewFetcher(cfg.Yahoo, httpClient, log)
	kisClient := kis.NewClient(cfg.KIS, httpClient, log)
	naverClient := naver.NewClient(httpClient, log)
	geminiClient := genai.NewClient(cfg.Gemini, httpClient, log)

	engine := analysis.NewEngine(store, fetcher, kisClient, naverClient, geminiClient, log)

	req := analysis.Request{
		Keyword: args[0],
		Params:  analysis.DefaultParams(),
	}
	if analyzeMAInterval != "" {
		req.Params.MAInterval = analyzeMAInterval
	}

	result, err := engine.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
