package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicRecovery answers 500 for a panicking handler and records the panic on
// the request span.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				panicErr := fmt.Errorf("handler panic: %v", recovered)
				span := trace.SpanFromContext(r.Context())
				span.RecordError(panicErr)
				span.SetStatus(codes.Error, "handler panic")

				log.WithFields(log.Fields{
					"route":  routeTemplate(r),
					"method": r.Method,
					"panic":  recovered,
					"stack":  string(debug.Stack()),
				}).Error("recovered from handler panic")

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
