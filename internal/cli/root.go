// Package cli implements the stockroom command line.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/app/accounting"
	"github.com/stockroom-app/stockroom/internal/app/catalog"
	"github.com/stockroom-app/stockroom/internal/app/dashboard"
	"github.com/stockroom-app/stockroom/internal/daemon"
	"github.com/stockroom-app/stockroom/internal/infra/logging"
	"github.com/stockroom-app/stockroom/internal/infra/sqlite"
)

var (
	configPath string
	homeDir    string

	// cfg is loaded once per invocation by the root pre-run hook.
	cfg daemon.Config
)

var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "Inventory ledger and dashboard backend",
	Long: `stockroom tracks products, sales and purchases and serves dashboard
summaries over HTTP. Quantities change only through recorded sales and
purchases, so stock on hand always matches the ledger.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "stockroom home directory (default $STOCKROOM_HOME or ~/.stockroom)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if homeDir != "" {
		if err := os.Setenv("STOCKROOM_HOME", homeDir); err != nil {
			return err
		}
	}
	var err error
	if cfg, err = daemon.Load(configPath); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCfg := cfg.Log
	if logCfg.FileEnable && !filepath.IsAbs(logCfg.Filename) {
		logCfg.Filename = filepath.Join(daemon.Home(), logCfg.Filename)
	}
	if _, err := logging.Install(logCfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

// stack is the set of services every data command works with.
type stack struct {
	db        *sqlite.DB
	catalog   *catalog.Service
	engine    *accounting.Engine
	dashboard *dashboard.Aggregator
}

func openStack() (*stack, error) {
	db, err := sqlite.Open(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &stack{
		db:        db,
		catalog:   catalog.New(db),
		engine:    accounting.New(db),
		dashboard: dashboard.New(db),
	}, nil
}

func (s *stack) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("close ledger", zap.Error(err))
	}
	zap.L().Sync()
}
