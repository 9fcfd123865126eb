package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/service"
	"github.com/imaps/imaps-backend/pkg/httputil"
	"github.com/imaps/imaps-backend/pkg/logger"
)

// UsageHandler handles usage event endpoints for one lot kind
type UsageHandler struct {
	service *service.Service
	kind    domain.Kind
	logger  *logger.Logger
}

// NewUsageHandler creates a usage handler for the given lot kind
func NewUsageHandler(svc *service.Service, kind domain.Kind, log *logger.Logger) *UsageHandler {
	return &UsageHandler{
		service: svc,
		kind:    kind,
		logger:  log,
	}
}

// CreateUsageRequest is the request structure for recording a usage
// event against a lot
type CreateUsageRequest struct {
	LotID        string `json:"lot_id" validate:"required,uuid"`
	QuantityUsed int    `json:"quantity_used" validate:"required,gt=0"`
	UseCategory  string `json:"use_category" validate:"required,oneof=WBC GGB Both"`
	DateUsed     string `json:"date_used" validate:"required,datetime=2006-01-02"`
}

// UpdateUsageRequest is the request structure for editing a usage
// event. The lot reference is immutable and not accepted here.
type UpdateUsageRequest struct {
	QuantityUsed int    `json:"quantity_used" validate:"required,gt=0"`
	UseCategory  string `json:"use_category" validate:"required,oneof=WBC GGB Both"`
	DateUsed     string `json:"date_used" validate:"required,datetime=2006-01-02"`
}

// List lists active usage events
func (h *UsageHandler) List(w http.ResponseWriter, r *http.Request) {
	usages, err := h.service.ListUsages(r.Context(), h.kind)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, usages)
}

// Get gets a usage event by ID
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	usage, err := h.service.GetUsage(r.Context(), h.kind, id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, usage)
}

// Create records a usage event
func (h *UsageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUsageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	dateUsed, err := parseDate(req.DateUsed)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	usage := &domain.UsageEvent{
		LotID:        lotID,
		QuantityUsed: req.QuantityUsed,
		UseCategory:  domain.UseCategory(req.UseCategory),
		DateUsed:     dateUsed,
	}

	var created *domain.UsageEvent
	if h.kind == domain.KindPackaging {
		created, err = h.service.RecordPackagingUsage(r.Context(), usage)
	} else {
		created, err = h.service.RecordIngredientUsage(r.Context(), usage)
	}
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update edits a usage event. Requires the mutation secret header.
func (h *UsageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateUsageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	dateUsed, err := parseDate(req.DateUsed)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	usage := &domain.UsageEvent{
		ID:           id,
		QuantityUsed: req.QuantityUsed,
		UseCategory:  domain.UseCategory(req.UseCategory),
		DateUsed:     dateUsed,
	}

	updated, err := h.service.UpdateUsage(r.Context(), httputil.MutationSecret(r), h.kind, usage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a usage event, crediting the consumed quantity
// back to the pool. Requires the mutation secret header.
func (h *UsageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.DeleteUsage(r.Context(), httputil.MutationSecret(r), h.kind, id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
