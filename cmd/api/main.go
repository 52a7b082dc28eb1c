package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"crudstore.app/internal/audit"
	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
	"crudstore.app/internal/config"
	"crudstore.app/internal/httpapi"
	"crudstore.app/internal/obs"
	"crudstore.app/internal/seed"
	"crudstore.app/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("crudstore-api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		users auth.Store
		items catalog.Store
		probe httpapi.ReadyProbe
	)
	if cfg.PGDSN != "" {
		store, err := pg.Open(cfg.PGDSN)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		users, items, probe = store, store, httpapi.ReadyProbe{DB: store.DB()}
		log.Info("using postgres store")
	} else {
		users, items = auth.NewMemoryStore(), catalog.NewInMemory()
		log.Warn("CRUDSTORE_PG_DSN is empty, using in-memory stores")
	}
	cached := auth.NewCachedStore(users, cfg.RoleCacheTTL)

	if cfg.SeedDemoData {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := seed.Run(seedCtx, cached, items, seed.WithHashCost(cfg.BcryptCost), seed.WithLogger(log.Named("seed")))
		cancel()
		if err != nil {
			return err
		}
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, auth.WithIssuer(cfg.JWTIssuer), auth.WithTTL(cfg.JWTTTL))
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(cached, codec,
		auth.WithLogger(log.Named("auth")), auth.WithHashCost(cfg.BcryptCost))
	if err != nil {
		return err
	}

	api, err := httpapi.New(httpapi.Options{
		Auth:           authSvc,
		Catalog:        catalog.NewService(items, log.Named("catalog")),
		Ready:          probe,
		Version:        version,
		Commit:         commit,
		Logger:         log.Named("http"),
		Audit:          audit.New(log),
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	health := httpapi.NewHealthServer(probe, 5*time.Second, log.Named("health"))
	grpcSrv := grpc.NewServer()
	health.Register(grpcSrv)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go health.Run(ctx)
	go func() {
		log.Info("grpc health listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("starting crudstore-api", zap.String("version", version), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		log.Error("server failed", zap.Error(err))
	}

	log.Info("shutting down")
	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	log.Info("stopped")
	return nil
}
