package server

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/httputil"
	"github.com/matzehuels/prodgraph/pkg/observability"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// RequestID returns the id assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggerFrom(ctx context.Context, fallback *log.Logger) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return fallback
}

// requestID keeps a client-supplied X-Request-ID or generates one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// requestLogger logs one line per request with a request-scoped logger and
// recovers from handler panics.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := logger.With("request_id", RequestID(r.Context()))
			ctx := context.WithValue(r.Context(), loggerKey, l)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l.Error("panic", "method", r.Method, "path", r.URL.Path, "panic", rec)
					if ww.Status() == 0 {
						httputil.WriteError(ww, perrors.New(perrors.ErrCodeInternal, "internal server error"))
					}
				}

				// Probes would drown out everything else.
				level := log.InfoLevel
				if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
					level = log.DebugLevel
				}
				l.Log(level, "request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", statusOf(ww),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start))
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// instrument reports requests to the HTTP observability hooks, labelled by
// route pattern rather than raw path.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			hooks.OnResponse(r.Context(), r.Method, routePattern(r), statusOf(ww), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID, "Retry-After", headerCache},
		MaxAge:         300,
	})
	return c.Handler
}

// Limiter table bounds.
const (
	limiterTableSize = 10_000
	limiterIdleTTL   = 10 * time.Minute
)

// rateLimiter is a token bucket per client address. Idle buckets expire.
type rateLimiter struct {
	rps        rate.Limit
	burst      int
	trustProxy bool

	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
}

func newRateLimiter(rps float64, burst int, trustProxy bool) *rateLimiter {
	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	return &rateLimiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		trustProxy: trustProxy,
		limiters:   expirable.NewLRU[string, *rate.Limiter](limiterTableSize, nil, limiterIdleTTL),
	}
}

func (rl *rateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters.Get(client); ok {
		return l
	}
	l := rate.NewLimiter(rl.rps, rl.burst)
	rl.limiters.Add(client, l)
	return l
}

// retryAfter is the whole number of seconds until the next token.
func (rl *rateLimiter) retryAfter() int {
	return int(math.Max(1, math.Ceil(1/float64(rl.rps))))
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := httputil.ClientIP(r, rl.trustProxy)
		if !rl.limiter(client).Allow() {
			observability.HTTP().OnRateLimited(r.Context(), "/api/v1")
			loggerFrom(r.Context(), log.Default()).Warn("rate limited", "client", client, "path", r.URL.Path)
			httputil.WriteError(w, &perrors.RateLimitedError{RetryAfter: rl.retryAfter()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
