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

	"github.com/jcmexdev/ecommerce-orders/internal/notify"
	"github.com/jcmexdev/ecommerce-orders/internal/order/adapters/httpclient"
	"github.com/jcmexdev/ecommerce-orders/internal/order/adapters/httpx"
	"github.com/jcmexdev/ecommerce-orders/internal/order/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-orders/internal/order/app"
	"github.com/jcmexdev/ecommerce-orders/internal/order/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "order-service"))
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

	repo, err := sqlite.Open(getEnv("ORDER_DB_PATH", "./data/orders.db"))
	if err != nil {
		slog.Error("failed to open order store", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	callTimeout := 5 * time.Second
	var customers ports.CustomerClient = httpclient.NewCustomerClient(getEnv("USER_SERVICE_URL", "http://localhost:8081"), callTimeout)
	var products ports.ProductClient = httpclient.NewProductClient(getEnv("PRODUCT_SERVICE_URL", "http://localhost:8082"), callTimeout)

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		c := cache.NewRedis(redisAddr, "order-service")
		customers = httpclient.NewCachedCustomerClient(customers, c)
		products = httpclient.NewCachedProductClient(products, c)
		slog.Info("collaborator cache enabled", "addr", redisAddr)
	}

	dispatcher, closeTransport, err := buildDispatcher()
	if err != nil {
		slog.Error("failed to set up notification transport", "error", err)
		os.Exit(1)
	}
	defer closeTransport()

	// 5 workers over a queue of 100. Overflow drops events instead of
	// blocking order creation.
	notifier := notify.NewAsyncDispatcher(dispatcher, 5, 100)
	defer notifier.Close()

	workflow := app.NewWorkflow(repo, customers, products, notifier)
	router := httpx.NewRouter(httpx.NewHandler(workflow))

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("order service running", "addr", addr)
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

// buildDispatcher picks the notification transport: direct HTTP invocation of
// the mail function by default, or an AMQP exchange when NOTIFY_AMQP_URL is set.
func buildDispatcher() (notify.Dispatcher, func(), error) {
	if amqpURL := os.Getenv("NOTIFY_AMQP_URL"); amqpURL != "" {
		conn, pub, err := notify.SetupAMQP(amqpURL)
		if err != nil {
			return nil, nil, err
		}
		return pub, func() { _ = conn.Close() }, nil
	}

	fnURL := getEnv("NOTIFY_FUNCTION_URL", "http://localhost:9000/send-order-email")
	return notify.NewFunctionInvoker(fnURL, 10*time.Second), func() {}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
