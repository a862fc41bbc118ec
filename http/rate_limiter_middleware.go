package http

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type rateLimitResponse struct {
	errorResponse
	Limit             int     `json:"limit"`
	WindowSeconds     float64 `json:"window_seconds"`
	RetryAfterSeconds int     `json:"retry_after_seconds"`
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func RateLimitMiddleware(limiter *RateLimiter, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, wait := limiter.Allow(clientIP(r))
			if !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, requestLogger(log, r), http.StatusTooManyRequests, rateLimitResponse{
					errorResponse: errorResponse{Error: fmt.Sprintf("rate limit exceeded: %d requests per %s",
						limiter.Capacity(), limiter.Window())},
					Limit:             limiter.Capacity(),
					WindowSeconds:     limiter.Window().Seconds(),
					RetryAfterSeconds: retryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
