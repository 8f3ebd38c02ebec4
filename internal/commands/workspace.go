package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finboard/internal/config"
	"github.com/cleared-dev/finboard/internal/events"
	"github.com/cleared-dev/finboard/internal/finance"
	"github.com/cleared-dev/finboard/internal/logger"
	"github.com/cleared-dev/finboard/internal/store"
)

// workspace is an opened finboard directory: config, store and service.
type workspace struct {
	root      string
	cfg       *config.Config
	log       zerolog.Logger
	store     store.Store
	publisher events.Publisher
	svc       *finance.Service
}

func workspaceDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// loadConfig reads finboard.yaml (defaults when absent) and applies .env
// and environment overrides.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(root); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	root, err := workspaceDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	return openWith(cmd.Context(), root, cfg)
}

func openWith(ctx context.Context, root string, cfg *config.Config) (*workspace, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.New(cfg.Log.Level)

	dialect, err := store.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, dialect, cfg.DatabaseDSN(root))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.Events.URL != "" {
		amqp, err := events.DialAMQP(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.Queue)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connecting event broker: %w", err)
		}
		pub = amqp
	}

	return &workspace{
		root:      root,
		cfg:       cfg,
		log:       log,
		store:     st,
		publisher: pub,
		svc:       finance.NewService(st, pub),
	}, nil
}

// ctx returns ctx carrying the workspace logger.
func (w *workspace) ctx(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx, w.log)
}

func (w *workspace) Close() error {
	pubErr := w.publisher.Close()
	if err := w.store.Close(); err != nil {
		return err
	}
	return pubErr
}
