package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/service"
	"github.com/protyayrd/tweestbd-sub001/pkg/httputil"
	"github.com/protyayrd/tweestbd-sub001/pkg/validator"
)

// PricingHandler handles HTTP requests for pricing endpoints.
type PricingHandler struct {
	service *service.PricingService
	logger  *slog.Logger
}

// NewPricingHandler creates a new pricing HTTP handler.
func NewPricingHandler(svc *service.PricingService, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// QuoteItemRequest is one line item in a pricing quote request.
type QuoteItemRequest struct {
	ID                  string `json:"id"`
	ProductID           string `json:"product_id" validate:"required"`
	CategoryID          string `json:"category_id"`
	CategoryName        string `json:"category_name"`
	Size                string `json:"size"`
	Color               string `json:"color"`
	Quantity            int    `json:"quantity" validate:"gte=0"`
	UnitPrice           int64  `json:"unit_price" validate:"gte=0"`
	DiscountedUnitPrice int64  `json:"discounted_unit_price" validate:"gte=0"`
}

// QuoteRequest is the JSON request body for a pricing quote. The guest
// identity comes from the X-Guest-ID header when present; anonymous quotes
// are allowed.
type QuoteRequest struct {
	Items []QuoteItemRequest `json:"items" validate:"dive"`
}

// --- Handlers ---

// Quote handles POST /api/v1/pricing/quote. It prices the submitted cart
// snapshot against the active combo offers and returns the repriced items,
// discount summaries, and near-miss projections.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
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

	guestID := r.Header.Get("X-Guest-ID")

	result, err := h.service.CheckComboOfferEligibility(r.Context(), guestID, quoteItems(req.Items))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// PotentialSavings handles POST /api/v1/pricing/potential-savings. It
// returns only the near-miss projections without repricing the cart.
func (h *PricingHandler) PotentialSavings(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
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

	savings, err := h.service.ProjectPotentialSavings(r.Context(), quoteItems(req.Items))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: savings})
}

func quoteItems(reqs []QuoteItemRequest) []domain.LineItem {
	items := make([]domain.LineItem, len(reqs))
	for i, in := range reqs {
		items[i] = domain.LineItem{
			ID:                  in.ID,
			ProductID:           in.ProductID,
			CategoryID:          in.CategoryID,
			CategoryName:        in.CategoryName,
			Size:                in.Size,
			Color:               in.Color,
			Quantity:            in.Quantity,
			UnitPrice:           in.UnitPrice,
			DiscountedUnitPrice: in.DiscountedUnitPrice,
		}
	}
	return items
}
