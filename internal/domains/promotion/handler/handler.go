package handler

import (
	"errors"
	"net/http"

	"discount-campaigns-backend/internal/domains/promotion/model"
	"discount-campaigns-backend/internal/domains/promotion/service"
	"discount-campaigns-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// PromotionHandler exposes the promotion domain over HTTP.
type PromotionHandler struct {
	service service.ServiceInterface
}

func NewPromotionHandler(promotionService service.ServiceInterface) *PromotionHandler {
	return &PromotionHandler{service: promotionService}
}

// Calculate evaluates the promotion catalog against the posted cart and
// returns original total, final total, and the applied discounts.
func (h *PromotionHandler) Calculate(c *gin.Context) {
	var req model.CalculateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid cart", err)
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), &req)
	if err != nil {
		response.InternalServerError(c, "failed to calculate cart total")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListActivePromotions returns the promotions active today.
func (h *PromotionHandler) ListActivePromotions(c *gin.Context) {
	promotions, err := h.service.ListActivePromotions(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "failed to load promotions")
		return
	}

	response.Success(c, http.StatusOK, promotions)
}

// GetPromotionByCode returns one promotion by its code.
func (h *PromotionHandler) GetPromotionByCode(c *gin.Context) {
	promo, err := h.service.GetPromotionByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, model.ErrPromotionNotFound) {
			response.NotFound(c, "promotion not found")
			return
		}
		response.InternalServerError(c, "failed to load promotion")
		return
	}

	response.Success(c, http.StatusOK, promo)
}

// ListTemplates returns the promotion type templates (admin form schemas).
func (h *PromotionHandler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "failed to load templates")
		return
	}

	response.Success(c, http.StatusOK, templates)
}
