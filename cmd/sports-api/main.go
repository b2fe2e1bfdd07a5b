package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-sports-feed/internal/cache"
	"github.com/pribylovaa/go-sports-feed/internal/config"
	sfhttp "github.com/pribylovaa/go-sports-feed/internal/http"
	"github.com/pribylovaa/go-sports-feed/internal/service"
	"github.com/pribylovaa/go-sports-feed/internal/storage/breaker"
	"github.com/pribylovaa/go-sports-feed/internal/storage/postgres"
	"github.com/pribylovaa/go-sports-feed/pkg/redact"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// readinessTimeout ограничивает пинг зависимостей в /healthz.
const readinessTimeout = 2 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting sports-api", slog.String("env", cfg.Env))

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	storage, err := postgres.New(rootCtx, cfg.DB.URL)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	log.Info("storage_initialized", slog.String("db", redact.URL(cfg.DB.URL)))

	var (
		svcCache service.Cache
		redis    *cache.Redis
	)
	if cfg.Redis.Enabled() {
		redis, err = cache.New(rootCtx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			// Кэш рекомендательный: без Redis сервис работает напрямую с хранилищем.
			log.Warn("cache_init_failed",
				slog.String("redis", redact.URL(cfg.Redis.URL)),
				slog.String("err", err.Error()),
			)
		} else {
			svcCache = redis
			defer func() {
				if cerr := redis.Close(); cerr != nil {
					log.Warn("cache_close_failed", slog.String("err", cerr.Error()))
				}
			}()
			log.Info("cache_initialized",
				slog.String("redis", redact.URL(cfg.Redis.URL)),
				slog.Duration("ttl", cfg.Redis.TTL),
			)
		}
	}

	store := breaker.New(storage, cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout, log)

	svc := service.New(store, svcCache, *cfg)

	apiHandler := sfhttp.NewRouter(svc, sfhttp.Options{
		Logger:      log,
		Timeout:     cfg.Timeouts.Service,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:   cfg.RateLimit.Requests,
		RateWindow:  cfg.RateLimit.Window,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := storage.Ping(ctx); err != nil {
			log.Warn("readiness_storage_failed", slog.String("err", err.Error()))
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}

		// Кэш рекомендательный: его отказ не снимает готовность.
		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				log.Warn("readiness_cache_degraded", slog.String("err", err.Error()))
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("sports_api_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
