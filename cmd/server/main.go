package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/resultboard/internal/announce"
	"github.com/playperu/resultboard/internal/catalog"
	"github.com/playperu/resultboard/internal/config"
	"github.com/playperu/resultboard/internal/handler/health"
	"github.com/playperu/resultboard/internal/handler/viewer"
	"github.com/playperu/resultboard/internal/hub"
	"github.com/playperu/resultboard/internal/metrics"
	"github.com/playperu/resultboard/internal/relay"
	"github.com/playperu/resultboard/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Catalog ---
	programs, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "programs", programs.Len(), "file", cfg.CatalogFile)

	// --- Hub ---
	reg := metrics.NewRegistry()
	viewers := hub.New(logger,
		hub.WithQueueSize(cfg.ViewerQueueSize),
		hub.WithWriteTimeout(cfg.ViewerWriteTimeout),
		hub.WithMetrics(metrics.NewHub(reg)),
	)

	// --- Relay ---
	checks := map[string]health.Checker{}
	var (
		publisher  announce.Publisher = relay.NewLocal(viewers)
		redisRelay *relay.Redis
	)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", "channel", cfg.RedisChannel)

		redisRelay = relay.NewRedis(rdb, cfg.RedisChannel, viewers, logger)
		publisher = redisRelay
		checks["redis"] = health.CheckerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	svc := announce.NewService(logger, publisher, metrics.NewAnnounce(reg))

	// --- HTTP Server ---
	opts := server.Options{SPADir: cfg.SPADir, AnnounceMaxBytes: cfg.AnnounceMaxBytes}
	srv := server.New(cfg.HTTPAddr, logger, programs, svc, opts, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, viewers, checks).Routes())
		r.Mount("/ws", viewer.NewHandler(logger, viewers, clockwork.NewRealClock(), cfg.ViewerPingInterval).Routes())
		r.Handle("/metrics", metrics.Handler(reg))
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	if redisRelay != nil {
		g.Go(func() error {
			return redisRelay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		err := srv.Shutdown(context.Background())
		viewers.Close()
		return err
	})

	return g.Wait()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return c, nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
