package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocklens",
	Short: "stocklens - 기술적 분석 기반 주식 스코어링 API",
	Long: `stocklens Unified CLI

티커 또는 한글 종목명을 받아 멀티 타임프레임 기술적 지표를 계산하고
하나의 기회 점수로 합산하는 분석 서버.

Usage:
  go run ./cmd/stocklens [command]

Examples:
  go run ./cmd/stocklens api
  go run ./cmd/stocklens analyze 005930
  go run ./cmd/stocklens master`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
