package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/rulecraft"
	"github.com/aretw0/rulecraft/internal/adapters/file"
	"github.com/aretw0/rulecraft/internal/config"
	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/adapters/redis"
	"github.com/aretw0/rulecraft/pkg/fetch"
	"github.com/aretw0/rulecraft/pkg/observability"
	"github.com/aretw0/rulecraft/pkg/persistence/middleware"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/aretw0/rulecraft/pkg/rules"
	"github.com/aretw0/rulecraft/pkg/selection"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app bundles what every subcommand builds from the configuration.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	assistant *rulecraft.Assistant
	metrics   *observability.Metrics
	close     func() error
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(cfg.LogLevel)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return cfg, logging.New(level), nil
}

// newApp wires the assistant from the configuration. Redis, when configured,
// holds sessions, groups and the cross-replica lock. Otherwise groups live in
// a JSON file and sessions in memory, or in files under SessionsPath.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	aliases, err := rules.LoadAliases(cfg.Rules.AliasesPath)
	if err != nil {
		return nil, err
	}

	client := fetch.NewClient(fetch.Options{
		Timeout: cfg.Fetch.Timeout,
		Token:   cfg.Fetch.GitHubToken,
	})

	machine := selection.New()
	machine.AllowAnyURL = cfg.Fetch.AllowAnyURL

	metrics := observability.NewMetrics()
	opts := []rulecraft.Option{
		rulecraft.WithLogger(logger),
		rulecraft.WithFetcher(client),
		rulecraft.WithCategoryLister(fetch.NewGitHubLister(client, cfg.Rules.CategoriesURL)),
		rulecraft.WithAliases(aliases),
		rulecraft.WithRulesBaseURL(cfg.Rules.BaseURL),
		rulecraft.WithSessionTTL(cfg.SessionTTL),
		rulecraft.WithRuleCacheTTL(cfg.Rules.CacheTTL),
		rulecraft.WithRulePrefetch(cfg.Rules.Prefetch),
		rulecraft.WithMachine(machine),
		rulecraft.WithLifecycleHooks(metrics.Hooks(logger)),
	}

	var sessions ports.SessionStore
	closer := func() error { return nil }
	if cfg.Redis.Addr != "" {
		rdb := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(cmd.Context()).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		sessions = redis.NewFromClient(rdb, redis.WithTTL(2*cfg.SessionTTL))
		opts = append(opts,
			rulecraft.WithGroupStore(redis.NewGroupStore(rdb, redis.DefaultGroupsKey)),
			rulecraft.WithLocker(redis.NewLocker(rdb, "rulecraft:")),
		)
		closer = rdb.Close
		logger.Info("Using redis storage", "addr", cfg.Redis.Addr)
	} else {
		opts = append(opts, rulecraft.WithGroupStore(file.NewGroupStore(cfg.GroupsPath)))
		if cfg.SessionsPath != "" {
			sessions = file.NewSessionStore(cfg.SessionsPath)
		}
	}

	if sessions != nil {
		if cfg.SessionKey != "" {
			seal, err := sealing(cfg)
			if err != nil {
				_ = closer()
				return nil, err
			}
			sessions = middleware.Chain(sessions, seal)
		}
		opts = append(opts, rulecraft.WithSessionStore(sessions))
	}

	a, err := rulecraft.New(opts...)
	if err != nil {
		_ = closer()
		return nil, err
	}
	if err := a.Load(cmd.Context()); err != nil {
		logger.Warn("Starting with incomplete data", "err", err)
	}

	return &app{cfg: cfg, logger: logger, assistant: a, metrics: metrics, close: closer}, nil
}

// sealing builds the encryption middleware from the configured keys.
func sealing(cfg *config.Config) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.SessionKey)
	if err != nil {
		return nil, err
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.OldSessionKeys {
		old, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("old session key: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, old)
	}
	return middleware.NewEncryptionMiddleware(enc)
}
