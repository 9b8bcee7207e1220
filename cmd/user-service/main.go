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

	"github.com/jcmexdev/ecommerce-orders/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-orders/internal/user/adapters/httpx"
	"github.com/jcmexdev/ecommerce-orders/internal/user/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-orders/internal/user/app"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "user-service"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repo, err := sqlite.Open(getEnv("USER_DB_PATH", "./data/users.db"))
	if err != nil {
		slog.Error("failed to open customer store", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	service := app.NewService(repo)
	router := httpx.NewRouter(httpx.NewHandler(service))

	addr := ":" + getEnv("PORT", "8081")
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("user service running", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
