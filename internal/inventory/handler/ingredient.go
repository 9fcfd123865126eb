package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/service"
	"github.com/imaps/imaps-backend/pkg/httputil"
	"github.com/imaps/imaps-backend/pkg/logger"
)

// IngredientLotHandler handles ingredient lot endpoints
type IngredientLotHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewIngredientLotHandler creates a new ingredient lot handler
func NewIngredientLotHandler(svc *service.Service, log *logger.Logger) *IngredientLotHandler {
	return &IngredientLotHandler{
		service: svc,
		logger:  log,
	}
}

// IngredientLotRequest is the request structure for creating or
// updating an ingredient lot. The batch code is never part of the
// request; it is generated on create and immutable afterwards.
type IngredientLotRequest struct {
	SupplierID     string  `json:"supplier_id" validate:"required,uuid"`
	MaterialName   string  `json:"material_name" validate:"required,max=200"`
	DateDelivered  string  `json:"date_delivered" validate:"required,datetime=2006-01-02"`
	QuantityBought int     `json:"quantity_bought" validate:"gte=0"`
	UseCategory    string  `json:"use_category" validate:"required,oneof=WBC GGB Both"`
	ExpirationDate string  `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	Cost           *string `json:"cost,omitempty"`
}

func (req *IngredientLotRequest) toDomain() (*domain.IngredientLot, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, err
	}
	delivered, err := parseDate(req.DateDelivered)
	if err != nil {
		return nil, err
	}
	expiration, err := parseDate(req.ExpirationDate)
	if err != nil {
		return nil, err
	}
	cost, err := parseCost(req.Cost)
	if err != nil {
		return nil, err
	}

	return &domain.IngredientLot{
		SupplierID:     supplierID,
		MaterialName:   req.MaterialName,
		DateDelivered:  delivered,
		QuantityBought: req.QuantityBought,
		UseCategory:    domain.UseCategory(req.UseCategory),
		ExpirationDate: expiration,
		Cost:           cost,
	}, nil
}

// List lists active ingredient lots
func (h *IngredientLotHandler) List(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.ListIngredientLots(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lots)
}

// Get gets an ingredient lot by ID
func (h *IngredientLotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := h.service.GetIngredientLot(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// GetByCode gets an ingredient lot by batch code, which is how lots
// are identified on printed labels
func (h *IngredientLotHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := h.service.GetIngredientLotByCode(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Create records a received ingredient delivery
func (h *IngredientLotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req IngredientLotRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := req.toDomain()
	if err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.CreateIngredientLot(r.Context(), lot)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update updates an ingredient lot. Requires the mutation secret
// header.
func (h *IngredientLotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req IngredientLotRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := req.toDomain()
	if err != nil {
		httputil.Error(w, err)
		return
	}
	lot.ID = id

	updated, err := h.service.UpdateIngredientLot(r.Context(), httputil.MutationSecret(r), lot)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete soft-deletes an ingredient lot. Requires the mutation secret
// header.
func (h *IngredientLotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.DeleteIngredientLot(r.Context(), httputil.MutationSecret(r), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListUsages lists usage events recorded against one ingredient lot
func (h *IngredientLotHandler) ListUsages(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	usages, err := h.service.ListUsagesByLot(r.Context(), domain.KindIngredient, id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, usages)
}
