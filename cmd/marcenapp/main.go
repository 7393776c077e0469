// Command marcenapp nests furniture parts onto stock sheets and exports cut
// plans, labels, spreadsheets, drawings and machine programs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/project"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    = model.DefaultAppConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "marcenapp",
	Short: "Sheet nesting for furniture workshops",
	Long: `marcenapp packs rectangular furniture parts onto stock sheets, one
material group at a time, and reports how many sheets a job needs and how
much of them goes to waste.

Part lists are read from CSV, Excel, JSON or DXF files, or from saved
project files (.marcen, .yaml).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := project.LoadAppConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		logger.Debug("config loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", project.DefaultConfigPath(), "Config file (JSON, YAML or TOML)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
