package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kartavya/ragchat/internal/config"
	"github.com/kartavya/ragchat/internal/handler"
	"github.com/kartavya/ragchat/internal/service/generation"
	"github.com/kartavya/ragchat/internal/service/orchestrator"
	"github.com/kartavya/ragchat/internal/service/retrieval"
	"github.com/kartavya/ragchat/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	var kv session.KV
	if cfg.Store.RedisURL != "" {
		redisKV, err := session.NewRedisKV(cfg.Store.RedisURL)
		if err != nil {
			logger.Error("invalid redis configuration", "err", err)
			os.Exit(1)
		}
		if err := redisKV.Ping(ctx); err != nil {
			logger.Error("failed to connect to redis", "err", err)
			os.Exit(1)
		}
		defer redisKV.Close()
		kv = redisKV
		logger.Info("session store backed by redis")
	} else {
		kv = session.NewMemoryKV()
		logger.Warn("REDIS_URL not set, session histories are kept in memory only")
	}

	store := session.NewStore(kv, cfg.Store.SessionTTL)
	retriever := retrieval.NewClient(cfg.Retriever.BaseURL, cfg.Retriever.Timeout)
	generator := generation.NewClient(cfg.Generator.BaseURL, cfg.Generator.Model, cfg.Generator.APIKey, cfg.Generator.Timeout)
	pipeline := orchestrator.NewService(retriever, generator, store, cfg.Retriever.DefaultTopK, logger)

	router := handler.NewRouter(pipeline, store, cfg.Server.CORSOrigin)

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *slog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("rag query service listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
