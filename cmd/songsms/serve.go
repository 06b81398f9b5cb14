package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/eduard-w/songsMS/internal/auth"
	"github.com/eduard-w/songsMS/internal/authclient"
	"github.com/eduard-w/songsMS/internal/config"
	"github.com/eduard-w/songsMS/internal/discovery"
	"github.com/eduard-w/songsMS/internal/download"
	"github.com/eduard-w/songsMS/internal/gateway"
	"github.com/eduard-w/songsMS/internal/logging"
	"github.com/eduard-w/songsMS/internal/session"
	"github.com/eduard-w/songsMS/internal/songs"
)

const shutdownTimeout = 10 * time.Second

// loadConfig reads the service configuration and applies command flags.
func loadConfig(cmd *cli.Command, service string) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(service, cmd.String("env-file"))
	if err != nil {
		return config.Config{}, nil, err
	}
	if p := cmd.String("port"); p != "" {
		cfg.Port = p
	}
	logger := logging.ForService(logging.New(os.Stderr, cfg.LogLevel), service)
	return cfg, logger, nil
}

func openRedis(cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

func buildLocator(cfg config.Config, rdb *redis.Client) (discovery.Locator, error) {
	if cfg.Locator == "redis" {
		return discovery.NewRedisLocator(rdb), nil
	}
	return discovery.LoadStaticLocator(cfg.ServicesFile, cfg.Services)
}

// register announces the service in the Redis locator and returns a func
// removing it again. Static locators need nothing.
func register(ctx context.Context, cfg config.Config, locator discovery.Locator, logger *log.Logger) func() {
	rl, ok := locator.(*discovery.RedisLocator)
	if !ok {
		return func() {}
	}
	if err := rl.Register(ctx, cfg.Service, cfg.AdvertiseURL); err != nil {
		logger.Warn("service registration failed", "err", err)
		return func() {}
	}
	logger.Info("registered", "url", cfg.AdvertiseURL)
	return func() {
		if err := rl.Deregister(context.Background(), cfg.Service); err != nil {
			logger.Warn("service deregistration failed", "err", err)
		}
	}
}

// serve runs h until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, cfg config.Config, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// deps holds what every service needs to find and reach the others.
type deps struct {
	cfg     config.Config
	log     *log.Logger
	rdb     *redis.Client
	locator discovery.Locator
}

func setup(cmd *cli.Command, service string) (*deps, error) {
	cfg, logger, err := loadConfig(cmd, service)
	if err != nil {
		return nil, err
	}
	rdb, err := openRedis(cfg)
	if err != nil {
		return nil, err
	}
	locator, err := buildLocator(cfg, rdb)
	if err != nil {
		return nil, err
	}
	return &deps{cfg: cfg, log: logger, rdb: rdb, locator: locator}, nil
}

func (d *deps) close() {
	if d.rdb != nil {
		d.rdb.Close()
	}
}

func (d *deps) middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		logging.Requests(d.log),
		middleware.Recoverer,
	}
}

func (d *deps) authClient() *authclient.Client {
	return authclient.New(d.locator, &http.Client{Timeout: d.cfg.AuthClientTimeout}, config.ServiceAuth)
}

func runAuth(ctx context.Context, cmd *cli.Command) error {
	d, err := setup(cmd, config.ServiceAuth)
	if err != nil {
		return err
	}
	defer d.close()

	pool, err := pgxpool.New(ctx, d.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pg: %w", err)
	}
	defer pool.Close()
	if err := session.AutoMigrate(ctx, pool); err != nil {
		return err
	}

	authority := session.NewAuthority(session.NewPostgresUserStore(pool), session.NewMemoryStore())
	srv := auth.NewServer(authority, d.log, d.cfg.DebugErrors)

	defer register(ctx, d.cfg, d.locator, d.log)()
	return serve(ctx, d.cfg, srv.Router(d.middlewares()...), d.log)
}

func runSongs(ctx context.Context, cmd *cli.Command) error {
	d, err := setup(cmd, config.ServiceSongs)
	if err != nil {
		return err
	}
	defer d.close()

	pool, err := pgxpool.New(ctx, d.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pg: %w", err)
	}
	defer pool.Close()
	if err := songs.AutoMigrate(ctx, pool); err != nil {
		return err
	}

	store := songs.NewPostgres(pool)
	srv := songs.NewServer(store, store, d.authClient(), d.rdb, d.log, d.cfg.DebugErrors)

	defer register(ctx, d.cfg, d.locator, d.log)()
	return serve(ctx, d.cfg, srv.Router(d.middlewares()...), d.log)
}

func runDownload(ctx context.Context, cmd *cli.Command) error {
	d, err := setup(cmd, config.ServiceDownload)
	if err != nil {
		return err
	}
	defer d.close()

	blobs, err := download.NewFileStore(d.cfg.StorageLocation)
	if err != nil {
		return err
	}
	srv := download.NewServer(blobs, d.authClient(), d.log, d.cfg.DebugErrors)

	defer register(ctx, d.cfg, d.locator, d.log)()
	return serve(ctx, d.cfg, srv.Router(d.middlewares()...), d.log)
}

func runGateway(ctx context.Context, cmd *cli.Command) error {
	d, err := setup(cmd, config.ServiceGateway)
	if err != nil {
		return err
	}
	defer d.close()

	r := gateway.NewRouter(d.locator, d.log, gateway.Options{AllowedOrigin: d.cfg.CORSAllowedOrigin})
	return serve(ctx, d.cfg, r, d.log)
}
