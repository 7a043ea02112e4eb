package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/avatar/internal/accounts"
	"github.com/memohai/avatar/internal/avatar"
	"github.com/memohai/avatar/internal/config"
	"github.com/memohai/avatar/internal/db"
	"github.com/memohai/avatar/internal/handlers"
	"github.com/memohai/avatar/internal/healthcheck"
	pingchecker "github.com/memohai/avatar/internal/healthcheck/checkers/ping"
	"github.com/memohai/avatar/internal/logger"
	"github.com/memohai/avatar/internal/media"
	"github.com/memohai/avatar/internal/metrics"
	"github.com/memohai/avatar/internal/server"
	"github.com/memohai/avatar/internal/storage/providers/localfs"
	s3provider "github.com/memohai/avatar/internal/storage/providers/s3"
	"github.com/memohai/avatar/internal/usermeta"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg config.Config) error {
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideRuntimeConfig,
			provideDBConn,
			provideMetaStore,
			provideAccountRepository,
			accounts.NewService,
			provideCatalog,
			provideStorageProvider,
			provideRedisClient,
			provideMediaService,
			provideStrategy,
			metrics.New,
			provideAvatarService,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(handlers.NewAvatarsHandler),
			provideServerHandler(handlers.NewEmbedHandler),
			provideServerHandler(handlers.NewProfileHandler),
			provideServerHandler(provideMediaHandler),
			provideHealthCheckers,
			provideServerHandler(handlers.NewHealthHandler),
			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

type runtimeConfig struct {
	JWTSecret    string
	JWTExpiresIn time.Duration
	ServerAddr   string
}

func provideRuntimeConfig(cfg config.Config) (*runtimeConfig, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	expiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expires in: %w", err)
	}
	return &runtimeConfig{
		JWTSecret:    cfg.Auth.JWTSecret,
		JWTExpiresIn: expiresIn,
		ServerAddr:   cfg.Server.Addr,
	}, nil
}

func usePostgres(cfg config.Config) bool {
	return !strings.EqualFold(strings.TrimSpace(cfg.Store.Driver), "memory")
}

// provideDBConn returns nil when the memory store is configured.
func provideDBConn(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*pgxpool.Pool, error) {
	if !usePostgres(cfg) {
		log.Warn("using in-memory store; data is lost on restart")
		return nil, nil
	}
	if cfg.Store.AutoMigrate {
		if err := db.Migrate(log, cfg.Postgres); err != nil {
			return nil, err
		}
	}
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideMetaStore(log *slog.Logger, conn *pgxpool.Pool) usermeta.Store {
	if conn == nil {
		return usermeta.NewMemoryStore()
	}
	return usermeta.NewPGStore(log, conn)
}

func provideAccountRepository(conn *pgxpool.Pool) accounts.Repository {
	if conn == nil {
		return accounts.NewMemoryRepository()
	}
	return accounts.NewPGRepository(conn)
}

func provideCatalog(conn *pgxpool.Pool) media.Catalog {
	if conn == nil {
		return media.NewMemoryCatalog()
	}
	return media.NewPGCatalog(conn)
}

func provideStorageProvider(log *slog.Logger, cfg config.Config) (media.StorageProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		provider, err := s3provider.New(ctx, cfg.Storage.S3, cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("init s3 provider: %w", err)
		}
		log.Info("media storage ready", slog.String("driver", "s3"), slog.String("bucket", cfg.Storage.S3.Bucket))
		return provider, nil
	case "", "local":
		dataRoot := strings.TrimSpace(cfg.Storage.DataRoot)
		if dataRoot == "" {
			dataRoot = config.DefaultDataRoot
		}
		provider, err := localfs.New(dataRoot, cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("init media provider: %w", err)
		}
		log.Info("media storage ready", slog.String("driver", "local"), slog.String("data_root", dataRoot))
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// provideRedisClient returns nil when no redis address is configured.
func provideRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return client.Close() }})
	return client
}

func provideMediaService(log *slog.Logger, cfg config.Config, catalog media.Catalog, provider media.StorageProvider, client *redis.Client) *media.Service {
	svc := media.NewService(log, catalog, provider)
	if client != nil {
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = config.DefaultRedisTTL * time.Second
		}
		svc.SetURLCache(media.NewRedisCache(client), ttl)
	}
	return svc
}

func provideStrategy(cfg config.Config, mediaService *media.Service) (avatar.RefStrategy, error) {
	return avatar.NewStrategy(cfg.Avatar.Strategy, mediaService)
}

func provideAvatarService(log *slog.Logger, cfg config.Config, meta usermeta.Store, accountService *accounts.Service, strategy avatar.RefStrategy, mediaService *media.Service, m *metrics.Metrics) *avatar.Service {
	svc := avatar.NewService(log, avatar.SettingsFromConfig(cfg.Avatar), meta, accountService, strategy, mediaService)
	if cfg.Metrics.Enabled {
		svc.SetObserver(m)
	}
	return svc
}

func provideAuthHandler(log *slog.Logger, accountService *accounts.Service, rc *runtimeConfig) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, accountService, rc.JWTSecret, rc.JWTExpiresIn)
}

func provideMediaHandler(log *slog.Logger, cfg config.Config, mediaService *media.Service, accountService *accounts.Service) *handlers.MediaHandler {
	maxBytes := int64(cfg.Storage.MaxUploadMB) << 20
	return handlers.NewMediaHandler(log, mediaService, accountService, maxBytes)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// provideHealthCheckers probes only the backends this process was configured with.
func provideHealthCheckers(log *slog.Logger, cfg config.Config, conn *pgxpool.Pool, client *redis.Client, provider media.StorageProvider) []healthcheck.Checker {
	var checkers []healthcheck.Checker
	if conn != nil {
		checkers = append(checkers, pingchecker.NewChecker(log, "store", "postgres", conn.Ping))
	}
	if client != nil {
		checkers = append(checkers, pingchecker.NewChecker(log, "cache", "redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}
	if p, ok := provider.(pinger); ok {
		checkers = append(checkers, pingchecker.NewChecker(log, "storage", cfg.Storage.Driver, p.Ping))
	}
	return checkers
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	RuntimeConfig  *runtimeConfig
	Config         config.Config
	Metrics        *metrics.Metrics
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	p := server.Params{
		Logger:    params.Logger,
		Addr:      params.RuntimeConfig.ServerAddr,
		JWTSecret: params.RuntimeConfig.JWTSecret,
		Handlers:  params.ServerHandlers,
	}
	if params.Config.Metrics.Enabled {
		p.Metrics = params.Metrics
		p.MetricsPath = params.Config.Metrics.Path
	}
	return server.New(p)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config, accountService *accounts.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := accountService.EnsureAdmin(ctx, cfg.Admin); err != nil {
				return err
			}
			logger.Info("avatar service listening", slog.String("addr", cfg.Server.Addr), slog.String("strategy", cfg.Avatar.Strategy))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
