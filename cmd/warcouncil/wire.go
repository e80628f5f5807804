package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/athola/warcouncil/internal/adapters/file"
	redisstore "github.com/athola/warcouncil/internal/adapters/redis"
	"github.com/athola/warcouncil/internal/config"
	"github.com/athola/warcouncil/internal/council"
	"github.com/athola/warcouncil/internal/experts"
	"github.com/athola/warcouncil/internal/logging"
	"github.com/athola/warcouncil/internal/metrics"
	"github.com/athola/warcouncil/pkg/ports"
)

// app is everything a command needs, built once per invocation from config
// and the persistent flags.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    ports.SessionStore
	files    *file.Store
	executor *council.Executor
}

func wireApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.Root = root
	}

	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	m := metrics.New(prometheus.DefaultRegisterer)

	panel := experts.NewPanel(
		experts.WithLogger(logger),
		experts.WithMetrics(m),
		experts.WithTimeouts(cfg.InvokeTimeout, cfg.ProbeTimeout),
	)
	if cfg.ExpertsFile != "" {
		overrides, err := config.LoadExpertOverrides(cfg.ExpertsFile)
		if err != nil {
			return nil, err
		}
		for _, e := range overrides {
			panel.Registry.Override(e)
		}
	}

	// The file store is always built: archival and the human-readable
	// artifact layout are file concerns even when Redis holds the state.
	files := file.New(cfg.Root)
	var store ports.SessionStore = files
	if cfg.Redis.Addr != "" {
		store = redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	executor := council.New(panel, store,
		council.WithLogger(logger),
		council.WithMetrics(m),
		council.WithDelphi(cfg.Delphi.Threshold, cfg.Delphi.MaxRounds),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		files:    files,
		executor: executor,
	}, nil
}
