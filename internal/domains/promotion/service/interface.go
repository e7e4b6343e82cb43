package service

import (
	"context"

	"discount-campaigns-backend/internal/domains/promotion/model"
)

// ServiceInterface is the promotion domain's surface for the transport layer.
type ServiceInterface interface {
	// Calculate evaluates the promotion catalog against one cart and
	// returns the discounted totals. Deterministic per clock date.
	Calculate(ctx context.Context, req *model.CalculateRequest) (*model.CalculateResult, error)

	// ListActivePromotions returns the promotions active today.
	ListActivePromotions(ctx context.Context) ([]*model.Promotion, error)

	// GetPromotionByCode looks a promotion up by its stable code.
	GetPromotionByCode(ctx context.Context, code string) (*model.Promotion, error)

	// ListTemplates returns the promotion type templates.
	ListTemplates(ctx context.Context) ([]*model.PromotionTypeTemplate, error)
}
