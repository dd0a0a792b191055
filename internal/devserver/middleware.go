package devserver

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.status = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// requestLogger emits one structured log line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond),
			}
			if id := identityFrom(r.Context()); id != "" {
				attrs = append(attrs, "caller", string(id))
			}
			logger.Info("request", attrs...)
		})
	}
}

type callerLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// rateLimiter bounds requests per caller identity (per remote address for
// anonymous callers). Idle limiters are dropped lazily on access.
type rateLimiter struct {
	perSecond rate.Limit
	burst     int

	mu       sync.Mutex
	limiters map[string]*callerLimiter
	sweepAt  time.Time
}

const limiterIdleTTL = 10 * time.Minute

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	return &rateLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		limiters:  make(map[string]*callerLimiter),
		sweepAt:   time.Now().Add(limiterIdleTTL),
	}
}

func (rl *rateLimiter) allow(caller string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.sweepAt) {
		for key, cl := range rl.limiters {
			if now.Sub(cl.lastAccess) > limiterIdleTTL {
				delete(rl.limiters, key)
			}
		}
		rl.sweepAt = now.Add(limiterIdleTTL)
	}

	cl, ok := rl.limiters[caller]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(rl.perSecond, rl.burst)}
		rl.limiters[caller] = cl
	}
	cl.lastAccess = now
	return cl.limiter.Allow()
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := string(identityFrom(r.Context()))
		if caller == "" {
			caller = r.RemoteAddr
		}
		if !s.limiter.allow(caller) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError renders the SDK error envelope with its mapped HTTP status.
func writeError(w http.ResponseWriter, err error) {
	var payload *sdk.Error
	if coded, ok := err.(*sdk.Error); ok {
		payload = coded
	} else {
		payload = sdk.NewError(sdk.CodeInternal, err.Error())
	}
	writeJSON(w, payload.Code.HTTPStatus(), payload)
}
