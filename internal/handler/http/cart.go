package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/protyayrd/tweestbd-sub001/internal/service"
	"github.com/protyayrd/tweestbd-sub001/pkg/httputil"
	"github.com/protyayrd/tweestbd-sub001/pkg/validator"
)

// CartHandler handles HTTP requests for guest cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new guest cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ReplaceCartRequest is the JSON request body for replacing the guest cart.
type ReplaceCartRequest struct {
	Items    []CartItemRequest `json:"items" validate:"dive"`
	Currency string            `json:"currency" validate:"omitempty,len=3"`
}

// CartItemRequest is one line item in a cart replace request.
type CartItemRequest struct {
	ID                  string `json:"id"`
	ProductID           string `json:"product_id" validate:"required"`
	CategoryID          string `json:"category_id"`
	CategoryName        string `json:"category_name"`
	Size                string `json:"size"`
	Color               string `json:"color"`
	Quantity            int    `json:"quantity" validate:"required,gte=1"`
	UnitPrice           int64  `json:"unit_price" validate:"gte=0"`
	DiscountedUnitPrice int64  `json:"discounted_unit_price" validate:"gte=0"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	guestID, _ := guestIDFromContext(r.Context())

	cart, err := h.service.GetCart(r.Context(), guestID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ReplaceCart handles PUT /api/v1/cart.
func (h *CartHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	guestID, _ := guestIDFromContext(r.Context())

	var req ReplaceCartRequest
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

	items := make([]service.LineItemInput, len(req.Items))
	for i, in := range req.Items {
		items[i] = service.LineItemInput{
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

	cart, err := h.service.ReplaceCart(r.Context(), guestID, service.ReplaceCartInput{
		Items:    items,
		Currency: req.Currency,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	guestID, _ := guestIDFromContext(r.Context())

	if err := h.service.ClearCart(r.Context(), guestID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}
