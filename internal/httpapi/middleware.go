package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"storefront/internal/bootstrap/logging"
)

const traceHeader = "X-Request-Id"

// requestLogger attaches a trace id and the base logger to each request context and
// logs one line per request.
func requestLogger(baseCtx context.Context) func(http.Handler) http.Handler {
	logger := logging.Logger(baseCtx)
	attrs := logging.Attrs(logging.WithComponent(baseCtx, "httpapi"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := strings.TrimSpace(r.Header.Get(traceHeader))
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(traceHeader, traceID)

			ctx := logging.WithLogger(r.Context(), logger)
			ctx = logging.WithAttrs(ctx, attrs...)
			ctx = logging.WithTraceID(ctx, traceID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := logging.Debug
			if status >= http.StatusInternalServerError {
				level = logging.Warn
			}
			level(
				ctx,
				"http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("elapsed", time.Since(started)),
			)
		})
	}
}
