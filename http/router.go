package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the API routes. Logging wraps the whole router so that
// unmatched paths (404) and wrong methods (405) are logged too.
func NewRouter(
	loanHandler *LoanHandler,
	tenureHandler *TenureComparisonHandler,
	limiter *RateLimiter,
	log *logrus.Logger,
) http.Handler {
	r := mux.NewRouter()
	limited := RateLimitMiddleware(limiter, log)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.Handle("/loan/calculate", limited(http.HandlerFunc(loanHandler.CalculateLoan))).Methods(http.MethodPost)
	r.Handle("/loan/compare-tenures", limited(http.HandlerFunc(tenureHandler.CompareTenures))).Methods(http.MethodPost)
	r.Handle("/loan/history", limited(http.HandlerFunc(loanHandler.History))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, log, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, log, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return LoggingMiddleware(log)(r)
}
