package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID honors a caller-supplied request id when it parses as a UUID and
// mints a fresh one otherwise, echoing it back on the response and binding it
// to the request's log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
