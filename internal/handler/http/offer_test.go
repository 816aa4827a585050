package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/repository"
	"github.com/protyayrd/tweestbd-sub001/internal/service"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
	"github.com/protyayrd/tweestbd-sub001/pkg/middleware"
)

// ============================================================================
// Mock OfferRepository
// ============================================================================

type mockOfferRepository struct {
	mock.Mock
}

func (m *mockOfferRepository) Create(ctx context.Context, offer *domain.ComboOffer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockOfferRepository) GetByID(ctx context.Context, id string) (*domain.ComboOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComboOffer), args.Error(1)
}

func (m *mockOfferRepository) GetActiveByCategory(ctx context.Context, categoryID string) (*domain.ComboOffer, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComboOffer), args.Error(1)
}

func (m *mockOfferRepository) List(ctx context.Context, filter repository.OfferFilter) ([]domain.ComboOffer, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ComboOffer), args.Int(1), args.Error(2)
}

func (m *mockOfferRepository) Update(ctx context.Context, offer *domain.ComboOffer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

// ============================================================================
// Test helpers
// ============================================================================

// adminTokenValidator accepts the token "admin-token" with the admin role
// and "viewer-token" with a read-only role.
func adminTokenValidator(token string) (*middleware.Claims, error) {
	switch token {
	case "admin-token":
		return &middleware.Claims{UserID: "admin-1", Role: "admin"}, nil
	case "viewer-token":
		return &middleware.Claims{UserID: "viewer-1", Role: "viewer"}, nil
	default:
		return nil, errors.New("unknown token")
	}
}

func setupOfferRouter(repo *mockOfferRepository) *chi.Mux {
	svc := service.NewOfferService(repo, testEventProducer(), testLogger())
	handler := NewOfferHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/combo-offers/category/{categoryID}", handler.GetActiveByCategory)

		r.Route("/admin/combo-offers", func(r chi.Router) {
			r.Use(middleware.Auth(adminTokenValidator))
			r.Use(middleware.RequireRole("admin"))

			r.Post("/", handler.Create)
			r.Get("/", handler.List)
			r.Get("/{offerID}", handler.GetByID)
			r.Put("/{offerID}", handler.Update)
			r.Post("/{offerID}/activate", handler.Activate)
			r.Post("/{offerID}/deactivate", handler.Deactivate)
		})
	})
	return r
}

func activeTeesOffer() *domain.ComboOffer {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.ComboOffer{
		ID:              "offer-001",
		CategoryID:      "cat-tees",
		Name:            "Buy 2 Tees",
		MinimumQuantity: 2,
		ComboPrice:      150000,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ============================================================================
// GET /api/v1/combo-offers/category/{categoryID}
// ============================================================================

func TestOfferHandler_GetActiveByCategory_Found(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("GetActiveByCategory", mock.Anything, "cat-tees").Return(activeTeesOffer(), nil)

	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/combo-offers/category/cat-tees", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ComboOffer `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "offer-001", resp.Data.ID)
}

func TestOfferHandler_GetActiveByCategory_NotFound(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("GetActiveByCategory", mock.Anything, "cat-none").
		Return(nil, apperrors.NotFound("combo offer for category", "cat-none"))

	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/combo-offers/category/cat-none", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Admin endpoints
// ============================================================================

func TestOfferHandler_Create_Success(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	router := setupOfferRouter(repo)

	body := `{"category_id":"cat-tees","name":"Buy 2 Tees","minimum_quantity":2,"combo_price":150000,"is_active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/combo-offers", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestOfferHandler_Create_MissingToken(t *testing.T) {
	repo := new(mockOfferRepository)
	router := setupOfferRouter(repo)

	body := `{"category_id":"cat-tees","name":"x","minimum_quantity":2,"combo_price":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/combo-offers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestOfferHandler_Create_InsufficientRole(t *testing.T) {
	repo := new(mockOfferRepository)
	router := setupOfferRouter(repo)

	body := `{"category_id":"cat-tees","name":"x","minimum_quantity":2,"combo_price":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/combo-offers", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer viewer-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestOfferHandler_Create_ValidationError(t *testing.T) {
	repo := new(mockOfferRepository)
	router := setupOfferRouter(repo)

	// minimum_quantity below 1.
	body := `{"category_id":"cat-tees","name":"x","minimum_quantity":0,"combo_price":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/combo-offers", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestOfferHandler_Create_Duplicate(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("combo offer", "name", "Buy 2 Tees"))

	router := setupOfferRouter(repo)

	body := `{"category_id":"cat-tees","name":"Buy 2 Tees","minimum_quantity":2,"combo_price":150000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/combo-offers", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOfferHandler_List_Success(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.OfferFilter) bool {
		return f.Page == 2 && f.PerPage == 10 && f.CategoryID == "cat-tees" &&
			f.IsActive != nil && *f.IsActive
	})).Return([]domain.ComboOffer{*activeTeesOffer()}, 11, nil)

	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/combo-offers?page=2&per_page=10&category_id=cat-tees&is_active=true", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Data       []domain.ComboOffer `json:"data"`
			TotalCount int                 `json:"total_count"`
			TotalPages int                 `json:"total_pages"`
			HasNext    bool                `json:"has_next"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 11, resp.Data.TotalCount)
	assert.Equal(t, 2, resp.Data.TotalPages)
	assert.Len(t, resp.Data.Data, 1)
}

func TestOfferHandler_List_BadIsActive(t *testing.T) {
	repo := new(mockOfferRepository)
	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/combo-offers?is_active=banana", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List")
}

func TestOfferHandler_Update_Success(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("GetByID", mock.Anything, "offer-001").Return(activeTeesOffer(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(o *domain.ComboOffer) bool {
		return o.ComboPrice == int64(140000)
	})).Return(nil)

	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/combo-offers/offer-001", bytes.NewBufferString(`{"combo_price":140000}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestOfferHandler_Deactivate_Success(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("GetByID", mock.Anything, "offer-001").Return(activeTeesOffer(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(o *domain.ComboOffer) bool {
		return !o.IsActive
	})).Return(nil)

	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/combo-offers/offer-001/deactivate", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ComboOffer `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Data.IsActive)
}

func TestOfferHandler_GetByID_NotFound(t *testing.T) {
	repo := new(mockOfferRepository)
	repo.On("GetByID", mock.Anything, "missing").
		Return(nil, apperrors.NotFound("combo offer", "missing"))

	router := setupOfferRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/combo-offers/missing", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
