// Command voxdict manages a user pronunciation dictionary for a Japanese
// text-to-speech front end and keeps the morphological analyzer's active
// index in sync with it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ttsforge/voxdict/pkg/config"
	"github.com/ttsforge/voxdict/pkg/dict"
	"github.com/ttsforge/voxdict/pkg/engine"
	"github.com/ttsforge/voxdict/pkg/export"
	"github.com/ttsforge/voxdict/pkg/history"
	"github.com/ttsforge/voxdict/pkg/pipeline"
	"github.com/ttsforge/voxdict/pkg/store"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "voxdict",
	Short: "User pronunciation dictionary manager",
	Long: `voxdict maintains a persisted dictionary of pronunciation overrides and
recompiles the analyzer's user dictionary after every edit, so lookups made
through the analyzer immediately reflect the change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		if cfg.Logging.Development {
			zapCfg = zap.NewDevelopmentConfig()
		}
		level := zapcore.InfoLevel
		if err := level.Set(cfg.Logging.Level); err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// services bundles everything a command needs plus its teardown.
type services struct {
	dict     *dict.Service
	analyzer *engine.Kagome
	history  *history.Log
	close    func()
}

// newServices wires the store, pipeline, analyzer and service from the
// loaded configuration.
func newServices() (*services, error) {
	analyzer, err := engine.New(logger)
	if err != nil {
		return nil, fmt.Errorf("initialize analyzer: %w", err)
	}

	st := store.New(cfg.UserDictPath)
	pl := pipeline.New(st, export.New(cfg.BaseDictPath), analyzer, cfg.TempDir, logger)

	opts := []dict.Option{
		dict.WithLogger(logger),
		dict.WithLockTimeout(cfg.LockTimeoutDuration()),
	}
	var hist *history.Log
	if cfg.HistoryDBPath != "" {
		hist, err = history.Open(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("open history log: %w", err)
		}
		opts = append(opts, dict.WithHistory(hist))
	}

	return &services{
		dict:     dict.NewService(st, pl, opts...),
		analyzer: analyzer,
		history:  hist,
		close: func() {
			if hist != nil {
				_ = hist.Close()
			}
		},
	}, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "voxdict.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
