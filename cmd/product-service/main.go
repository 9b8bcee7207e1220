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
	"github.com/jcmexdev/ecommerce-orders/internal/product/adapters/httpx"
	"github.com/jcmexdev/ecommerce-orders/internal/product/adapters/memrepo"
	"github.com/jcmexdev/ecommerce-orders/internal/product/adapters/redisrepo"
	"github.com/jcmexdev/ecommerce-orders/internal/product/app"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "product-service"))
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

	// REDIS_ADDR unset runs on the in-memory store (local dev, tests).
	var repo app.Repository
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		repo = redisrepo.New(addr)
		slog.Info("using redis product store", "addr", addr)
	} else {
		repo = memrepo.New()
		slog.Info("using in-memory product store")
	}

	service := app.NewService(repo)
	router := httpx.NewRouter(httpx.NewHandler(service))

	addr := ":" + getEnv("PORT", "8082")
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("product service running", "addr", addr)
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
