package middleware

import (
	"log/slog"
	"net/http"

	"github.com/openride/carpool-api/internal/api/shared"
	"github.com/openride/carpool-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that stamps each request with a
// trace ID and carries a trace-scoped logger in the context. Applied early
// in the chain so all subsequent handlers see the trace ID.
func NewTraceMiddleware(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := baseLogger.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
