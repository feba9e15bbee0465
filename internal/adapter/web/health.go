package web

import (
	"context"
	"net/http"
	"time"

	"restaurant-ordering/internal/logger"
)

// Pinger is anything whose liveness can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports 200 while every dependency answers and 503 otherwise
func HealthHandler(service string, log *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := logger.RequestID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.Warn("health_check_failed", "Dependency is unhealthy", requestID, map[string]interface{}{
					"dependency": name,
					"error":      err.Error(),
				})
				checks[name] = "down"
				healthy = false
				continue
			}
			checks[name] = "up"
		}

		response := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   service,
			"healthy":   healthy,
			"checks":    checks,
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
			response["status"] = "unhealthy"
		}

		WriteJSON(w, log, requestID, statusCode, response)
	}
}
