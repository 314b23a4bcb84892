package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/hngo-dev/meshmart-backend/api/responses"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	pkgredis "github.com/hngo-dev/meshmart-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type idempotencyRule struct {
	method  string
	matches func(string) bool
	ttl     time.Duration
}

// Money-moving endpoints get the long TTL; the rest of the guarded writes
// keep replay protection for a day.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matches: exactRoute("/api/v1/orders"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matches: routeEnding("/api/v1/orders/", "/pay"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matches: exactRoute("/api/v1/wallet/withdrawals"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matches: routeEnding("/api/v1/admin/withdrawals/", "/approve"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matches: routeEnding("/api/v1/admin/withdrawals/", "/reject"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPatch, matches: routeEnding("/api/v1/orders/", "/status"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matches: exactRoute("/api/v1/admin/coupons"), ttl: defaultIdempotencyTTL},
}

// storedResponse is the cached outcome of a completed request, replayed
// verbatim when the same key arrives again with the same body.
type storedResponse struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := ruleFor(r)
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if clientKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := fingerprint(body)
			scope := strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
			key := store.IdempotencyKey(scope, clientKey)

			cached, err := store.Get(r.Context(), key)
			if err != nil && !errors.Is(err, redis.Nil) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if cached != "" {
				var stored storedResponse
				if err := json.Unmarshal([]byte(cached), &stored); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if stored.RequestHash != hash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replay(w, stored)
				return
			}

			recorder := &replayRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)

			stored := storedResponse{
				Status:      recorder.statusOrOK(),
				Body:        base64.StdEncoding.EncodeToString(recorder.body.Bytes()),
				ContentType: recorder.Header().Get("Content-Type"),
				RequestHash: hash,
			}
			payload, err := json.Marshal(stored)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "marshal idempotency record", err)
				}
				return
			}
			if _, err := store.SetNX(r.Context(), key, string(payload), ttl); err != nil && logg != nil {
				logg.Error(r.Context(), "persist idempotency record", err)
			}
		})
	}
}

func ruleFor(r *http.Request) (time.Duration, bool) {
	pattern := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			pattern = p
		}
	}
	for _, rule := range idempotencyRules {
		if rule.method == r.Method && rule.matches(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func exactRoute(path string) func(string) bool {
	return func(pattern string) bool { return pattern == path }
}

func routeEnding(prefix, suffix string) func(string) bool {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

func fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, stored storedResponse) {
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.WriteHeader(stored.Status)
	if decoded, err := base64.StdEncoding.DecodeString(stored.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// replayRecorder tees the response so a copy can be cached for replay.
type replayRecorder struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *replayRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *replayRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *replayRecorder) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
