package handler

import (
	"net/http"

	"discount-campaigns-backend/internal/domains/catalog/repository"
	"discount-campaigns-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static product catalog.
type CatalogHandler struct {
	repo repository.ProductRepository
}

func NewCatalogHandler(repo repository.ProductRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// ListProducts returns every product in the catalog.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.repo.ListProducts(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "failed to load products")
		return
	}

	response.Success(c, http.StatusOK, products)
}
