package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// barChart is the series the client plots after each calculation.
// The client replaces its previous chart with this one.
type barChart struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

type calculateResponse struct {
	domain.AmortizationResult
	Chart barChart `json:"chart"`
}

func newCalculateResponse(input domain.LoanInput, result domain.AmortizationResult) calculateResponse {
	return calculateResponse{
		AmortizationResult: result,
		Chart: barChart{
			Labels: []string{"EMI", "Total Payment", "Principal"},
			Values: []decimal.Decimal{
				result.MonthlyInstallment,
				result.TotalPayment,
				input.Principal.Round(2),
			},
		},
	}
}

// writeJSON encodes into a buffer first so a failed encode never leaves a
// half-written 200 behind.
func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.WithError(err).Error("error encoding response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("error writing response")
	}
}

// writeError maps invalid input to 400 and everything else to 500.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: invalid.Error(), Field: invalid.Field})
		return
	}
	log.WithError(err).Error("request failed")
	writeJSON(w, log, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
