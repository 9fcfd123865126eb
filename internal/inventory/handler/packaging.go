package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/service"
	"github.com/imaps/imaps-backend/pkg/httputil"
	"github.com/imaps/imaps-backend/pkg/logger"
)

// PackagingLotHandler handles packaging lot endpoints
type PackagingLotHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewPackagingLotHandler creates a new packaging lot handler
func NewPackagingLotHandler(svc *service.Service, log *logger.Logger) *PackagingLotHandler {
	return &PackagingLotHandler{
		service: svc,
		logger:  log,
	}
}

// PackagingLotRequest is the request structure for creating or
// updating a packaging lot
type PackagingLotRequest struct {
	SupplierID     string  `json:"supplier_id" validate:"required,uuid"`
	MaterialName   string  `json:"material_name" validate:"required,max=200"`
	ContainerSize  string  `json:"container_size" validate:"max=50"`
	DateDelivered  string  `json:"date_delivered" validate:"required,datetime=2006-01-02"`
	QuantityBought int     `json:"quantity_bought" validate:"gte=0"`
	UseCategory    string  `json:"use_category" validate:"required,oneof=WBC GGB Both"`
	Cost           *string `json:"cost,omitempty"`
}

func (req *PackagingLotRequest) toDomain() (*domain.PackagingLot, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, err
	}
	delivered, err := parseDate(req.DateDelivered)
	if err != nil {
		return nil, err
	}
	cost, err := parseCost(req.Cost)
	if err != nil {
		return nil, err
	}

	return &domain.PackagingLot{
		SupplierID:     supplierID,
		MaterialName:   req.MaterialName,
		ContainerSize:  req.ContainerSize,
		DateDelivered:  delivered,
		QuantityBought: req.QuantityBought,
		UseCategory:    domain.UseCategory(req.UseCategory),
		Cost:           cost,
	}, nil
}

// List lists active packaging lots
func (h *PackagingLotHandler) List(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.ListPackagingLots(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lots)
}

// Get gets a packaging lot by ID
func (h *PackagingLotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := h.service.GetPackagingLot(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// GetByCode gets a packaging lot by batch code
func (h *PackagingLotHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := h.service.GetPackagingLotByCode(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Create records a received packaging delivery
func (h *PackagingLotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PackagingLotRequest
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

	created, err := h.service.CreatePackagingLot(r.Context(), lot)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update updates a packaging lot. Requires the mutation secret header.
func (h *PackagingLotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req PackagingLotRequest
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

	updated, err := h.service.UpdatePackagingLot(r.Context(), httputil.MutationSecret(r), lot)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a packaging lot. Requires the mutation secret
// header.
func (h *PackagingLotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.DeletePackagingLot(r.Context(), httputil.MutationSecret(r), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListUsages lists usage events recorded against one packaging lot
func (h *PackagingLotHandler) ListUsages(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	usages, err := h.service.ListUsagesByLot(r.Context(), domain.KindPackaging, id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, usages)
}
