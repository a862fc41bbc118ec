package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/service"
)

const maxBodyBytes = 1 << 16

type LoanHandler struct {
	service *service.LoanService
	log     *logrus.Logger
}

func NewLoanHandler(service *service.LoanService, log *logrus.Logger) *LoanHandler {
	return &LoanHandler{service: service, log: log}
}

type calculateRequest struct {
	Principal         *decimal.Decimal `json:"principal"`
	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent"`
	TenureYears       *decimal.Decimal `json:"tenure_years"`
	Schedule          string           `json:"schedule"`
}

func (req calculateRequest) toInput() (domain.LoanInput, error) {
	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"principal", req.Principal},
		{"annual_rate_percent", req.AnnualRatePercent},
		{"tenure_years", req.TenureYears},
	}
	for _, f := range fields {
		if f.value == nil {
			return domain.LoanInput{}, domain.NewInvalidInput(f.name, "is required")
		}
	}
	return domain.LoanInput{
		Principal:         *req.Principal,
		AnnualRatePercent: *req.AnnualRatePercent,
		TenureYears:       *req.TenureYears,
		Schedule:          domain.ScheduleMode(strings.ToLower(strings.TrimSpace(req.Schedule))),
	}, nil
}

// CalculateLoan accepts either a JSON body or an urlencoded form post.
func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		input domain.LoanInput
		err   error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: "invalid form body"})
			return
		}
		input, err = service.ParseLoanInput(
			r.PostForm.Get("principal"),
			r.PostForm.Get("annual_rate_percent"),
			r.PostForm.Get("tenure_years"),
			r.PostForm.Get("schedule"),
		)
	default:
		var req calculateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.WithError(err).Debug("error decoding request body")
			writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		input, err = req.toInput()
	}
	if err != nil {
		writeError(w, log, err)
		return
	}

	result, err := h.service.CalculateLoan(r.Context(), input)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, newCalculateResponse(input, result))
}

// History lists recent calculations; ?limit= bounds the count.
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer", Field: "limit"})
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, map[string]any{"calculations": records})
}
