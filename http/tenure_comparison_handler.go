package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/service"
)

type TenureComparisonHandler struct {
	service *service.TenureComparisonService
	log     *logrus.Logger
}

func NewTenureComparisonHandler(service *service.TenureComparisonService, log *logrus.Logger) *TenureComparisonHandler {
	return &TenureComparisonHandler{service: service, log: log}
}

func (h *TenureComparisonHandler) CompareTenures(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)

	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		writeJSON(w, log, http.StatusUnsupportedMediaType, errorResponse{Error: "Content-Type must be application/json"})
		return
	}

	var input domain.TenureComparisonInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		log.WithError(err).Debug("error decoding request body")
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.service.CompareTenures(input)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, result)
}
