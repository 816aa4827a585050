package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/repository"
	"github.com/protyayrd/tweestbd-sub001/internal/service"
	"github.com/protyayrd/tweestbd-sub001/pkg/httputil"
	"github.com/protyayrd/tweestbd-sub001/pkg/validator"
)

// OfferHandler handles HTTP requests for combo offer endpoints.
type OfferHandler struct {
	service *service.OfferService
	logger  *slog.Logger
}

// NewOfferHandler creates a new combo offer HTTP handler.
func NewOfferHandler(svc *service.OfferService, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOfferRequest is the JSON request body for creating a combo offer.
type CreateOfferRequest struct {
	CategoryID      string `json:"category_id" validate:"required"`
	Name            string `json:"name" validate:"required,min=1,max=255"`
	MinimumQuantity int    `json:"minimum_quantity" validate:"required,gte=1"`
	ComboPrice      int64  `json:"combo_price" validate:"gte=0"`
	IsActive        bool   `json:"is_active"`
}

// UpdateOfferRequest is the JSON request body for updating a combo offer.
type UpdateOfferRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=255"`
	MinimumQuantity *int    `json:"minimum_quantity" validate:"omitempty,gte=1"`
	ComboPrice      *int64  `json:"combo_price" validate:"omitempty,gte=0"`
	IsActive        *bool   `json:"is_active"`
}

// --- Handlers ---

// GetActiveByCategory handles GET /api/v1/combo-offers/category/{categoryID}.
// This is the public storefront lookup; it 404s when the category has no
// active offer.
func (h *OfferHandler) GetActiveByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	offer, err := h.service.GetActiveOfferForCategory(r.Context(), categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// Create handles POST /api/v1/admin/combo-offers.
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	offer, err := h.service.CreateOffer(r.Context(), service.CreateOfferInput{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		MinimumQuantity: req.MinimumQuantity,
		ComboPrice:      req.ComboPrice,
		IsActive:        req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: offer})
}

// GetByID handles GET /api/v1/admin/combo-offers/{offerID}.
func (h *OfferHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.GetOffer(r.Context(), chi.URLParam(r, "offerID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// List handles GET /api/v1/admin/combo-offers.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.OfferFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		Page:       queryInt(r, "page", 1),
		PerPage:    queryInt(r, "per_page", 20),
	}

	if v := r.URL.Query().Get("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "is_active must be a boolean"},
			})
			return
		}
		filter.IsActive = &active
	}

	offers, total, err := h.service.ListOffers(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: httputil.NewPaginatedResponse[domain.ComboOffer](offers, total, filter.Page, filter.PerPage),
	})
}

// Update handles PUT /api/v1/admin/combo-offers/{offerID}.
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	offer, err := h.service.UpdateOffer(r.Context(), chi.URLParam(r, "offerID"), service.UpdateOfferInput{
		Name:            req.Name,
		MinimumQuantity: req.MinimumQuantity,
		ComboPrice:      req.ComboPrice,
		IsActive:        req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// Activate handles POST /api/v1/admin/combo-offers/{offerID}/activate.
func (h *OfferHandler) Activate(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.ActivateOffer(r.Context(), chi.URLParam(r, "offerID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// Deactivate handles POST /api/v1/admin/combo-offers/{offerID}/deactivate.
func (h *OfferHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.DeactivateOffer(r.Context(), chi.URLParam(r, "offerID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
