package handler

import (
	"net/http"
	"strconv"

	"github.com/imaps/imaps-backend/internal/inventory/service"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/imaps/imaps-backend/pkg/httputil"
	"github.com/imaps/imaps-backend/pkg/logger"
)

// ReportHandler handles report and change-log endpoints
type ReportHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// Summary builds the consumption and expiry report for a date range
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start_date")
	endParam := r.URL.Query().Get("end_date")
	if startParam == "" || endParam == "" {
		httputil.Error(w, errors.BadRequest("start_date and end_date are required"))
		return
	}

	start, err := parseDate(startParam)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	end, err := parseDate(endParam)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.GetReportSummary(r.Context(), start, end)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// ChangeLog lists change-log entries, most recent first. Accepts
// optional table and limit query parameters.
func (h *ReportHandler) ChangeLog(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	entries, err := h.service.ListChangeLog(r.Context(), table, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
