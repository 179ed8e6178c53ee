package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/analysis"
	"github.com/wonny/stocklens/internal/api"
	"github.com/wonny/stocklens/internal/api/handlers"
	"github.com/wonny/stocklens/internal/broker/kis"
	"github.com/wonny/stocklens/internal/external/naver"
	"github.com/wonny/stocklens/internal/genai"
	"github.com/wonny/stocklens/internal/marketdata"
	"github.com/wonny/stocklens/internal/symbols"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `분석 API 서버를 시작합니다.

이 명령어는:
- 종목 마스터 다운로드 및 인덱스 구축
- 분석 엔드포인트 제공
- 마스터 갱신 스케줄러 실행 (설정 시)

Endpoints:
  GET /health             - Health check
  GET /analyze/{keyword}  - 종목 분석
  GET /models             - 생성형 모델 목록

Example:
  go run ./cmd/stocklens api
  go run ./cmd/stocklens api --port 8000`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== stocklens API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Create HTTP clients. 외부 호출 실패는 즉시 degrade — 재시도 없음.
	httpClient := httputil.New(cfg, log).DisableRetry()

	// 4. Build symbol index (one-time bulk download)
	loader := symbols.NewLoader(cfg.Master, httpClient, log)
	store := symbols.NewStore(cmd.Context(), loader)
	log.WithField("symbols", store.Current().Size()).Info("Symbol index ready")

	// 5. Create external clients
	fetcher := marketdata.NewFetcher(cfg.Yahoo, httpClient, log)
	kisClient := kis.NewClient(cfg.KIS, httpClient, log)
	naverClient := naver.NewClient(httpClient, log)
	geminiClient := genai.NewClient(cfg.Gemini, httpClient, log)

	// 6. Create the analysis engine
	engine := analysis.NewEngine(store, fetcher, kisClient, naverClient, geminiClient, log)

	// 7. Create handlers and router
	analyzeHandler := handlers.NewAnalyzeHandler(engine, log)
	modelsHandler := handlers.NewModelsHandler(geminiClient, log)
	router := api.NewRouter(analyzeHandler, modelsHandler, cfg.CORSOrigins, log)

	// 8. Create server
	server := api.New(cfg, log, router)

	// 9. Master refresh scheduler
	var scheduler *cron.Cron
	if cfg.Master.RefreshCron != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Master.RefreshCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			store.Reload(ctx)
			log.WithField("symbols", store.Current().Size()).Info("Symbol index refreshed")
		})
		if err != nil {
			return fmt.Errorf("schedule master refresh: %w", err)
		}
		scheduler.Start()
		log.WithField("cron", cfg.Master.RefreshCron).Info("Master refresh scheduled")
	}

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET /health")
	fmt.Println("  GET /analyze/{keyword}")
	fmt.Println("  GET /models")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
