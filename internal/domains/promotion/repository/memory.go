package repository

import (
	"context"
	"strings"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"

	"github.com/google/uuid"
)

// memoryRepository serves the catalog from process memory. It is the
// default source and doubles as the seed fixture for local development.
// All data is immutable after construction, so it is safe to share
// across concurrent evaluations.
type memoryRepository struct {
	promotions []*model.Promotion
	templates  []*model.PromotionTypeTemplate
	nameToCode map[string]string // keys lowercased
}

// NewMemoryRepository returns a repository seeded with the demo catalog.
func NewMemoryRepository() PromotionRepository {
	return NewMemoryRepositoryWith(seedPromotions(), seedTemplates(), seedCampaignNames())
}

// NewMemoryRepositoryWith builds a repository over the given catalog data.
// Campaign name keys are matched case-insensitively.
func NewMemoryRepositoryWith(promotions []*model.Promotion, templates []*model.PromotionTypeTemplate, campaignNames map[string]string) PromotionRepository {
	nameToCode := make(map[string]string, len(campaignNames))
	for name, code := range campaignNames {
		nameToCode[strings.ToLower(name)] = code
	}
	return &memoryRepository{
		promotions: promotions,
		templates:  templates,
		nameToCode: nameToCode,
	}
}

func (r *memoryRepository) ListActive(_ context.Context, asOf time.Time) ([]*model.Promotion, error) {
	active := make([]*model.Promotion, 0, len(r.promotions))
	for _, p := range r.promotions {
		if p.ActiveOn(asOf) {
			active = append(active, p)
		}
	}
	return active, nil
}

func (r *memoryRepository) FindByCode(_ context.Context, code string) (*model.Promotion, error) {
	for _, p := range r.promotions {
		if strings.EqualFold(p.Code, code) {
			return p, nil
		}
	}
	return nil, model.ErrPromotionNotFound
}

func (r *memoryRepository) ListTemplates(_ context.Context) ([]*model.PromotionTypeTemplate, error) {
	return r.templates, nil
}

func (r *memoryRepository) ResolveCampaignName(_ context.Context, name string) (string, bool, error) {
	code, ok := r.nameToCode[strings.ToLower(name)]
	return code, ok, nil
}

// ---------------------------------------------------------------
// Seed catalog
// ---------------------------------------------------------------

func seedCampaignNames() map[string]string {
	return map[string]string{
		// Coupon campaigns
		"Fix amount":          "COUPON100",
		"Percentage discount": "COUPON10",
		// On Top campaigns
		"Percentage discount by item category": "ONTOP-ACC-12",
		"Discount by points":                   "POINT",
		// Seasonal campaigns
		"Special campaigns": "STEP300-40",
	}
}

func seedTemplates() []*model.PromotionTypeTemplate {
	return []*model.PromotionTypeTemplate{
		{
			Code: "PERCENT",
			Name: "Percent Discount",
			Schema: `{
				"properties": {
					"percent": {"type":"number", "minimum":1, "maximum":100},
					"maxDiscount": {"type":"number"},
					"minSpend": {"type":"number"}
				}
			}`,
		},
		{
			Code: "FIXED",
			Name: "Fixed Discount",
			Schema: `{
				"properties": {
					"amount": {"type":"number", "minimum":1},
					"minSpend": {"type":"number"}
				}
			}`,
		},
		{
			Code: "TIER_PERCENT",
			Name: "Tier % Discount",
			Schema: `{
				"properties": {
					"tiers": {
						"type":"array",
						"items": {
							"type":"object",
							"properties": {
								"min":{"type":"number"},
								"max":{"type":"number"},
								"percent":{"type":"number"}
							}
						}
					}
				}
			}`,
		},
		{
			Code: "STEP_DISCOUNT",
			Name: "Step Discount",
			Schema: `{
				"properties": {
					"step": {"type":"number"},
					"discount": {"type":"number"}
				}
			}`,
		},
		{
			Code: "POINT_DISCOUNT",
			Name: "Point Discount",
			Schema: `{
				"properties": {
					"pointValue": {"type":"number"},
					"maxPercent": {"type":"number"}
				}
			}`,
		},
		{
			Code: "BUY_X_GET_Y",
			Name: "Buy X Get Y",
			Schema: `{
				"properties": {
					"buyQty": {"type":"number"},
					"getQty": {"type":"number"},
					"sku": {"type":"string"}
				}
			}`,
		},
	}
}

func seedPromotions() []*model.Promotion {
	return []*model.Promotion{
		// Coupon 10% (exclusive), percent comes from user input.
		{
			ID:       uuid.New(),
			Code:     "COUPON10",
			Name:     "10% Coupon",
			TypeCode: "PERCENT",
			Category: model.CategoryCoupon,
			Stack:    model.StackModeExclusive,
			Priority: 1,
			Rules: []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent": {{input.percentcoupon}} }`},
			},
		},
		// Coupon 100 THB (exclusive), amount comes from user input.
		{
			ID:       uuid.New(),
			Code:     "COUPON100",
			Name:     "100 THB Coupon",
			TypeCode: "FIXED",
			Category: model.CategoryCoupon,
			Stack:    model.StackModeExclusive,
			Priority: 2,
			Rules: []model.Rule{
				{Type: model.RuleFixed, Payload: `{ "amount": {{input.amount}} }`},
			},
		},
		// On-top percent discount scoped to a category from user input.
		{
			ID:       uuid.New(),
			Code:     "ONTOP-ACC-12",
			Name:     "Accessories 12% On-Top",
			TypeCode: "PERCENT",
			Category: model.CategoryOnTop,
			Stack:    model.StackModeStackable,
			Priority: 5,
			Conditions: []model.Condition{
				{Type: model.ConditionCategoryInCart, Payload: `{ "category": "{{input.category}}" }`},
			},
			Rules: []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent": {{input.percent}} }`},
			},
		},
		// Seasonal step discount, step/discount from user input.
		{
			ID:       uuid.New(),
			Code:     "STEP300-40",
			Name:     "Step Discount 300-40",
			TypeCode: "STEP_DISCOUNT",
			Category: model.CategorySeasonal,
			Stack:    model.StackModeStackable,
			Priority: 10,
			Rules: []model.Rule{
				{Type: model.RuleStepDiscount, Payload: `{ "step": {{input.step}}, "discount": {{input.discount}} }`},
			},
		},
		// Tier discount: 500-2000 = 10%, 2001-2500 = 25%.
		{
			ID:       uuid.New(),
			Code:     "TIER-PRICE",
			Name:     "Tier Price Discount",
			TypeCode: "TIER_PERCENT",
			Category: model.CategoryOnTop,
			Stack:    model.StackModeStackable,
			Priority: 15,
			Rules: []model.Rule{
				{Type: model.RuleTier, Payload: `[
					{ "min":500, "max":2000, "percent":10 },
					{ "min":2001, "max":2500, "percent":25 }
				]`},
			},
		},
		// Point redemption, cap from user input.
		{
			ID:       uuid.New(),
			Code:     "POINT",
			Name:     "Point Discount",
			TypeCode: "POINT_DISCOUNT",
			Category: model.CategoryPoint,
			Stack:    model.StackModeStackable,
			Priority: 20,
			Rules: []model.Rule{
				{Type: model.RulePoint, Payload: `{ "pointValue": {{input.pointValue}}, "maxPercent": {{input.maxPercent}} }`},
			},
		},
		// 12.12 sale, single-day window.
		{
			ID:       uuid.New(),
			Code:     "12-12",
			Name:     "12.12 Mega Sale",
			TypeCode: "PERCENT",
			Category: model.CategorySeasonal,
			Stack:    model.StackModeStackable,
			Priority: 30,
			Conditions: []model.Condition{
				{Type: model.ConditionDateRange, Payload: `{ "start": "2025-12-12", "end": "2025-12-12" }`},
			},
			Rules: []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent":15 }`},
			},
		},
		// Wednesday discount.
		{
			ID:       uuid.New(),
			Code:     "WED-10",
			Name:     "Wednesday Discount 10%",
			TypeCode: "PERCENT",
			Category: model.CategorySeasonal,
			Stack:    model.StackModeStackable,
			Priority: 40,
			Conditions: []model.Condition{
				{Type: model.ConditionDayOfWeek, Payload: `{ "days":[3] }`},
			},
			Rules: []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent":10 }`},
			},
		},
		// Mother's Day, blocks everything else once applied.
		{
			ID:       uuid.New(),
			Code:     "MOM-20",
			Name:     "Mother's Day 20%",
			TypeCode: "PERCENT",
			Category: model.CategoryEvent,
			Stack:    model.StackModeExclusiveAll,
			Priority: 50,
			Conditions: []model.Condition{
				{Type: model.ConditionAnnualDate, Payload: `{ "month":8, "day":12 }`},
			},
			Rules: []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent":20 }`},
			},
		},
		// Buy 2 get 1 free on a single SKU.
		{
			ID:       uuid.New(),
			Code:     "BXGY-SKU",
			Name:     "Buy 2 Get 1 Free",
			TypeCode: "BUY_X_GET_Y",
			Category: model.CategoryOnTop,
			Stack:    model.StackModeStackable,
			Priority: 60,
			Rules: []model.Rule{
				{Type: model.RuleBuyXGetY, Payload: `{ "buyQty":2, "getQty":1, "sku":"SKU-ABC" }`},
			},
		},
	}
}
