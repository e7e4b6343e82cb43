package repository

import (
	"context"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
)

// PromotionRepository is the read-only catalog boundary the engine consumes.
type PromotionRepository interface {
	// ListActive returns promotions whose activation window covers asOf
	// (date-only, UTC). No start/end means always active.
	ListActive(ctx context.Context, asOf time.Time) ([]*model.Promotion, error)

	// FindByCode returns the promotion with the given code, or
	// model.ErrPromotionNotFound.
	FindByCode(ctx context.Context, code string) (*model.Promotion, error)

	// ListTemplates returns the promotion type templates (admin form schemas).
	ListTemplates(ctx context.Context) ([]*model.PromotionTypeTemplate, error)

	// ResolveCampaignName maps a campaign display name to a promotion code,
	// case-insensitively. ok=false when the name is unknown.
	ResolveCampaignName(ctx context.Context, name string) (code string, ok bool, err error)
}
