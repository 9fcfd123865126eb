package handler

import (
	"net/http"

	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/service"
	"github.com/imaps/imaps-backend/pkg/httputil"
	"github.com/imaps/imaps-backend/pkg/logger"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(svc *service.Service, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{
		service: svc,
		logger:  log,
	}
}

// SupplierRequest is the request structure for creating or updating a
// supplier
type SupplierRequest struct {
	Code         string  `json:"code" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=200"`
	Category     string  `json:"category" validate:"required,oneof=Ingredient Packaging Both"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

func (req *SupplierRequest) toDomain() *domain.Supplier {
	return &domain.Supplier{
		Code:         req.Code,
		Name:         req.Name,
		Category:     domain.SupplierCategory(req.Category),
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	}
}

// List lists active suppliers, optionally filtered by category so lot
// forms can present only suppliers allowed to serve their kind
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	category := domain.SupplierCategory(r.URL.Query().Get("category"))

	suppliers, err := h.service.ListSuppliers(r.Context(), category)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, suppliers)
}

// Get gets a supplier by ID
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// GetByCode gets a supplier by its user-assigned code
func (h *SupplierHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.GetSupplierByCode(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// Create registers a new supplier
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.CreateSupplier(r.Context(), req.toDomain())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, supplier)
}

// Update updates a supplier. Requires the mutation secret header.
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req SupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier := req.toDomain()
	supplier.ID = id

	updated, err := h.service.UpdateSupplier(r.Context(), httputil.MutationSecret(r), supplier)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a supplier. Requires the mutation secret header.
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.DeleteSupplier(r.Context(), httputil.MutationSecret(r), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
