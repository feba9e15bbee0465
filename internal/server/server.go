// Package server assembles the HTTP API of the ordering backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/config"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/messaging"
	"restaurant-ordering/internal/services/menu"
	"restaurant-ordering/internal/services/order"
	"restaurant-ordering/internal/services/payment"
	"restaurant-ordering/internal/store"
	"restaurant-ordering/internal/telemetry"
)

const ServiceName = "order-service"

// NewRouter mounts the menu, order and payment handlers and the health check,
// wrapped in request logging and tracing
func NewRouter(cfg config.ServerConfig, st store.Store, publisher messaging.StatusPublisher, log *logger.Logger, health map[string]web.Pinger) http.Handler {
	mux := http.NewServeMux()

	menu.NewHandler(menu.NewService(st, log), log).Register(mux)
	order.NewHandler(order.NewService(st, publisher, log), log).Register(mux)
	payment.NewHandler(payment.NewService(st, publisher, log), log).Register(mux)

	checks := map[string]web.Pinger{"store": st}
	for name, dep := range health {
		checks[name] = dep
	}
	mux.HandleFunc("GET /health", web.HealthHandler(ServiceName, log, checks))

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	return telemetry.Middleware(ServiceName, web.WithLogging(log, timeout, mux))
}

// Run serves handler on the configured port until ctx is done, then shuts down gracefully
func Run(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Order Service started on port %d", cfg.Port), requestID, map[string]interface{}{
			"port": cfg.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("graceful_shutdown", "Shutting down HTTP server", requestID, nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
