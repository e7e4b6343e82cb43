package repository

import (
	"context"
	"fmt"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
	"discount-campaigns-backend/pkg/cache"
	"discount-campaigns-backend/pkg/logger"
)

// cachedRepository is a read-through cache over another repository.
// Active promotions are keyed by UTC date so a cached list can never
// leak across the day boundary that decides activation windows.
// Cache failures degrade to the inner repository.
type cachedRepository struct {
	inner PromotionRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedRepository wraps inner with a cache layer.
func NewCachedRepository(inner PromotionRepository, c cache.Cache, ttl time.Duration) PromotionRepository {
	return &cachedRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedRepository) ListActive(ctx context.Context, asOf time.Time) ([]*model.Promotion, error) {
	key := fmt.Sprintf("promotions:active:%s", asOf.UTC().Format("2006-01-02"))

	var cached []*model.Promotion
	if found, err := r.cache.Get(ctx, key, &cached); err != nil {
		logger.Warn("promotion cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	} else if found {
		return cached, nil
	}

	promos, err := r.inner.ListActive(ctx, asOf)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, promos, r.ttl); err != nil {
		logger.Warn("promotion cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return promos, nil
}

func (r *cachedRepository) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
	return r.inner.FindByCode(ctx, code)
}

func (r *cachedRepository) ListTemplates(ctx context.Context) ([]*model.PromotionTypeTemplate, error) {
	const key = "promotions:templates"

	var cached []*model.PromotionTypeTemplate
	if found, err := r.cache.Get(ctx, key, &cached); err != nil {
		logger.Warn("template cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	} else if found {
		return cached, nil
	}

	templates, err := r.inner.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, templates, r.ttl); err != nil {
		logger.Warn("template cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return templates, nil
}

func (r *cachedRepository) ResolveCampaignName(ctx context.Context, name string) (string, bool, error) {
	return r.inner.ResolveCampaignName(ctx, name)
}
