package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"discount-campaigns-backend/internal/domains/catalog/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestListProducts(t *testing.T) {
	router := gin.New()
	router.GET("/api/v1/products", NewCatalogHandler(repository.NewMemoryRepository()).ListProducts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    []struct {
			Sku      string `json:"sku"`
			Category string `json:"category"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data, 6)
	assert.Equal(t, "SKU-TS", envelope.Data[0].Sku)
}
