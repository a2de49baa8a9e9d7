package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gilii/internal/app"
	"gilii/internal/auth"
	"gilii/internal/config"
	"gilii/internal/ports"
	"gilii/internal/ports/redisstatus"
	"gilii/internal/room"
	"gilii/internal/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var status ports.StatusStore = ports.NopStatusStore{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			cancel()
			return err
		}
		cancel()
		status = redisstatus.New(client)
		logger.Info("room status store enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	svc := app.NewService(nil, cfg.TurnTimeout)
	registry := room.NewRegistry()
	engine := ws.NewEngine(svc, registry, auth.NewVerifier(cfg.JWTSecret), status, logger, ws.Options{
		IdleTimeout:    cfg.IdleTimeout,
		NextRoundDelay: cfg.NextRoundDelay,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go engine.RunSweeper(sweepCtx, cfg.RoomSweepInterval)

	mux := http.NewServeMux()
	mux.Handle("/ws", engine.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
