package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/event"
	"github.com/protyayrd/tweestbd-sub001/internal/service"
	pkgkafka "github.com/protyayrd/tweestbd-sub001/pkg/kafka"
)

// stubCatalog serves offers from a fixed map; lookups for unknown
// categories report no offer.
type stubCatalog struct {
	offers map[string]*domain.ComboOffer
	err    error
}

func (c *stubCatalog) ActiveOffer(_ context.Context, categoryID string) (*domain.ComboOffer, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.offers[categoryID], nil
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func setupPricingRouter(cat *stubCatalog) *chi.Mux {
	svc := service.NewPricingService(cat, testEventProducer(), testLogger())
	handler := NewPricingHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/pricing", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/quote", handler.Quote)
		r.Post("/potential-savings", handler.PotentialSavings)
	})
	return r
}

func teesCatalog() *stubCatalog {
	return &stubCatalog{offers: map[string]*domain.ComboOffer{
		"cat-tees": {
			ID: "offer-001", CategoryID: "cat-tees", Name: "Buy 2 Tees",
			MinimumQuantity: 2, ComboPrice: 15000, IsActive: true,
		},
	}}
}

// ============================================================================
// POST /api/v1/pricing/quote
// ============================================================================

func TestPricingHandler_Quote_AppliesOffer(t *testing.T) {
	router := setupPricingRouter(teesCatalog())

	body := `{"items":[{"product_id":"prod-1","category_id":"cat-tees","quantity":2,"unit_price":10000}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data service.QuoteResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, int64(5000), resp.Data.TotalComboDiscount)
	require.Len(t, resp.Data.UpdatedCartItems, 1)
	assert.True(t, resp.Data.UpdatedCartItems[0].HasComboOffer)
	assert.Equal(t, int64(15000), resp.Data.UpdatedCartItems[0].FinalPriceAfterCombo)
	require.Len(t, resp.Data.AppliedOffers, 1)
	assert.Equal(t, "Buy 2 Tees", resp.Data.AppliedOffers[0].OfferName)
}

func TestPricingHandler_Quote_EmptyCart(t *testing.T) {
	router := setupPricingRouter(teesCatalog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewBufferString(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data service.QuoteResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Zero(t, resp.Data.TotalComboDiscount)
	assert.Empty(t, resp.Data.AppliedOffers)
}

func TestPricingHandler_Quote_CatalogDownFailsOpen(t *testing.T) {
	router := setupPricingRouter(&stubCatalog{err: context.DeadlineExceeded})

	body := `{"items":[{"product_id":"prod-1","category_id":"cat-tees","quantity":2,"unit_price":10000}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "catalog outage must not fail the quote")

	var resp struct {
		Data service.QuoteResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Zero(t, resp.Data.TotalComboDiscount)
	assert.False(t, resp.Data.UpdatedCartItems[0].HasComboOffer)
}

func TestPricingHandler_Quote_InvalidBody(t *testing.T) {
	router := setupPricingRouter(teesCatalog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewBufferString("{{bad"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricingHandler_Quote_ValidationError(t *testing.T) {
	router := setupPricingRouter(teesCatalog())

	// Negative unit price.
	body := `{"items":[{"product_id":"prod-1","quantity":1,"unit_price":-5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// POST /api/v1/pricing/potential-savings
// ============================================================================

func TestPricingHandler_PotentialSavings(t *testing.T) {
	router := setupPricingRouter(teesCatalog())

	body := `{"items":[{"product_id":"prod-1","category_id":"cat-tees","quantity":1,"unit_price":10000}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/potential-savings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.PotentialSaving `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "cat-tees", resp.Data[0].CategoryID)
	assert.Equal(t, 1, resp.Data[0].ItemsNeeded)
	assert.InDelta(t, 5000.0, resp.Data[0].TotalPotentialSavings, 0.001)
}
