package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/symbols"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// masterCmd downloads the symbol master files and reports the result
var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "종목 마스터 다운로드 테스트",
	Long: `거래소 마스터 파일을 내려받아 인덱스를 구축하고 결과를 출력합니다.

Example:
  go run ./cmd/stocklens master
  go run ./cmd/stocklens master --lookup 삼성전자`,
	RunE: runMaster,
}

var masterLookup string

func init() {
	rootCmd.AddCommand(masterCmd)

	masterCmd.Flags().StringVar(&masterLookup, "lookup", "", "인덱스 구축 후 조회할 키워드")
}

func runMaster(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log)

	loader := symbols.NewLoader(cfg.Master, httpClient, log)
	idx := loader.Load(cmd.Context())

	fmt.Printf("✅ Symbol index built: %d codes\n", idx.Size())

	if masterLookup != "" {
		symbol, err := idx.Resolve(masterLookup)
		if err != nil {
			fmt.Printf("❌ %q: %v\n", masterLookup, err)
			return nil
		}
		fmt.Printf("  %q → %s (%s)\n", masterLookup, symbol, idx.NameFor(symbol))
	}

	return nil
}
