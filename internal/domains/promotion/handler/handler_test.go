package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
	"discount-campaigns-backend/internal/domains/promotion/repository"
	"discount-campaigns-backend/internal/domains/promotion/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(promos []*model.Promotion) *gin.Engine {
	repo := repository.NewMemoryRepositoryWith(promos, []*model.PromotionTypeTemplate{
		{Code: "PERCENT", Name: "Percent Discount", Schema: "{}"},
	}, nil)
	engine := service.NewEngine(repo, service.WithClock(func() time.Time {
		return time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	}))
	h := NewPromotionHandler(engine)

	router := gin.New()
	promotions := router.Group("/api/v1/promotions")
	{
		promotions.GET("", h.ListActivePromotions)
		promotions.GET("/templates", h.ListTemplates)
		promotions.GET("/:code", h.GetPromotionByCode)
		promotions.POST("/calculate", h.Calculate)
	}
	return router
}

func tenPercentCoupon() *model.Promotion {
	return &model.Promotion{
		ID:       uuid.New(),
		Code:     "COUPON10",
		Name:     "10% Coupon",
		TypeCode: "PERCENT",
		Category: model.CategoryCoupon,
		Stack:    model.StackModeExclusive,
		Priority: 1,
		Rules: []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		},
	}
}

type calculateEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		OriginalTotal decimal.Decimal `json:"original_total"`
		FinalTotal    decimal.Decimal `json:"final_total"`
		Applied       []struct {
			Code   string          `json:"code"`
			Amount decimal.Decimal `json:"amount"`
		} `json:"applied"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestCalculateEndpoint(t *testing.T) {
	router := newTestRouter([]*model.Promotion{tenPercentCoupon()})

	body := `{
		"items": [
			{ "sku": "SKU-TS", "name": "T-Shirt", "category": "Clothing", "unit_price": 500, "quantity": 1 }
		]
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promotions/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope calculateEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "500", envelope.Data.OriginalTotal.String())
	assert.Equal(t, "450", envelope.Data.FinalTotal.String())
	require.Len(t, envelope.Data.Applied, 1)
	assert.Equal(t, "COUPON10", envelope.Data.Applied[0].Code)
	assert.Equal(t, "50", envelope.Data.Applied[0].Amount.String())
}

func TestCalculateEndpointRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promotions/calculate", strings.NewReader(`{ "items": `))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope calculateEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "BAD_REQUEST", envelope.Error.Code)
}

func TestCalculateEndpointRejectsEmptyCart(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promotions/calculate", strings.NewReader(`{ "items": [] }`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope calculateEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_FAILED", envelope.Error.Code)
}

func TestGetPromotionByCode(t *testing.T) {
	router := newTestRouter([]*model.Promotion{tenPercentCoupon()})

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/promotions/COUPON10", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"COUPON10"`)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/promotions/NOPE", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListActivePromotions(t *testing.T) {
	router := newTestRouter([]*model.Promotion{tenPercentCoupon()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/promotions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"COUPON10"`)
}

func TestListTemplates(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/promotions/templates", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"PERCENT"`)
}
