package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/yutthachai69/newjobflow/internal/models"
	"github.com/yutthachai69/newjobflow/internal/ratelimit"
	"github.com/yutthachai69/newjobflow/internal/services"
	pkghttp "github.com/yutthachai69/newjobflow/pkg/http"
)

// RateLimit enforces a per-class fixed-window budget keyed by client IP.
// Denied requests receive 429 with Retry-After; allowed requests carry the
// remaining-budget headers.
func RateLimit(limiter *ratelimit.Limiter, class ratelimit.Class, ipConfig *pkghttp.IPConfig, events services.SecurityEventLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := pkghttp.ExtractClientIP(r, ipConfig)

			decision := limiter.Check(identity, class)
			if !decision.Allowed {
				if events != nil {
					events.LogEvent(r.Context(), models.EventRateLimitExceeded, models.Metadata{
						"identity": identity,
						"class":    string(class),
						"path":     r.URL.Path,
					})
				}
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
				pkghttp.WriteTooManyRequests(w, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit is a coarse per-IP safety net in front of the class-based
// limiter.
func GlobalRateLimit(requestsPerMinute int) func(next http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "rate limit exceeded")
		}),
	)
}
