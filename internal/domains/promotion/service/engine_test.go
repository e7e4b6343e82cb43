package service

import (
	"context"
	"testing"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
	"discount-campaigns-backend/internal/domains/promotion/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-02 is a Monday.
var monday = time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

func newTestEngine(promos []*model.Promotion, names map[string]string, now time.Time) *Engine {
	repo := repository.NewMemoryRepositoryWith(promos, nil, names)
	return NewEngine(repo, WithClock(func() time.Time { return now }))
}

func testPromo(code string, category model.PromotionCategory, stack model.StackMode, priority int, rules []model.Rule, conditions ...model.Condition) *model.Promotion {
	return &model.Promotion{
		ID:         uuid.New(),
		Code:       code,
		Name:       code,
		Category:   category,
		Stack:      stack,
		Priority:   priority,
		Conditions: conditions,
		Rules:      rules,
	}
}

func item(sku, category, price string, qty int) model.CartItem {
	return model.CartItem{Sku: sku, Category: category, UnitPrice: d(price), Quantity: qty}
}

func cartOf(items ...model.CartItem) *model.CalculateRequest {
	return &model.CalculateRequest{Items: items}
}

func assertConserved(t *testing.T, result *model.CalculateResult) {
	t.Helper()
	appliedSum := decimal.Zero
	for _, a := range result.Applied {
		appliedSum = appliedSum.Add(a.Amount)
	}
	assert.True(t, result.OriginalTotal.Sub(appliedSum).Equal(result.FinalTotal),
		"original %s - applied %s != final %s", result.OriginalTotal, appliedSum, result.FinalTotal)
}

func TestCalculatePercentCoupon(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("COUPON10", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

	require.NoError(t, err)
	assert.Equal(t, "500", result.OriginalTotal.String())
	assert.Equal(t, "450", result.FinalTotal.String())
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "COUPON10", result.Applied[0].Code)
	assert.Equal(t, "50", result.Applied[0].Amount.String())
	assertConserved(t, result)
}

func TestCalculateMergesUserInputs(t *testing.T) {
	promos := []*model.Promotion{
		testPromo("COUPON", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": {{input.percent}} }`},
		}),
	}

	t.Run("input provided", func(t *testing.T) {
		engine := newTestEngine(promos, nil, monday)
		req := cartOf(item("SKU-TS", "Clothing", "500", 1))
		req.UserInputs = map[string]interface{}{"percent": 10.0}

		result, err := engine.Calculate(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "450", result.FinalTotal.String())
	})

	t.Run("missing input leaves rule a no-op", func(t *testing.T) {
		engine := newTestEngine(promos, nil, monday)

		result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

		require.NoError(t, err)
		assert.Equal(t, "500", result.FinalTotal.String())
		assert.Empty(t, result.Applied)
	})
}

func TestCalculatePriorityOrdering(t *testing.T) {
	// Registered out of order on purpose; priority 1 must run before 2.
	engine := newTestEngine([]*model.Promotion{
		testPromo("SECOND", model.CategorySeasonal, model.StackModeStackable, 2, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
		testPromo("FIRST", model.CategoryCoupon, model.StackModeStackable, 1, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-LT", "Electronics", "1000", 1)))

	require.NoError(t, err)
	require.Len(t, result.Applied, 2)
	assert.Equal(t, "FIRST", result.Applied[0].Code)
	assert.Equal(t, "100", result.Applied[0].Amount.String())
	assert.Equal(t, "SECOND", result.Applied[1].Code)
	assert.Equal(t, "90", result.Applied[1].Amount.String())
	assert.Equal(t, "810", result.FinalTotal.String())
	assertConserved(t, result)
}

func TestCalculateExclusivePerCategory(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("COUPON-A", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
		testPromo("COUPON-B", model.CategoryCoupon, model.StackModeExclusive, 2, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 20 }`},
		}),
		testPromo("SEASONAL-C", model.CategorySeasonal, model.StackModeExclusive, 3, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 5 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-LT", "Electronics", "1000", 1)))

	require.NoError(t, err)
	require.Len(t, result.Applied, 2)
	assert.Equal(t, "COUPON-A", result.Applied[0].Code)
	assert.Equal(t, "SEASONAL-C", result.Applied[1].Code)
	assertConserved(t, result)
}

func TestCalculateExclusiveAll(t *testing.T) {
	t.Run("applied first blocks everything behind it", func(t *testing.T) {
		engine := newTestEngine([]*model.Promotion{
			testPromo("EVENT", model.CategoryEvent, model.StackModeExclusiveAll, 1, []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent": 20 }`},
			}),
			testPromo("STACKABLE", model.CategorySeasonal, model.StackModeStackable, 2, []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
			}),
		}, nil, monday)

		result, err := engine.Calculate(context.Background(), cartOf(item("SKU-LT", "Electronics", "1000", 1)))

		require.NoError(t, err)
		require.Len(t, result.Applied, 1)
		assert.Equal(t, "EVENT", result.Applied[0].Code)
		assert.Equal(t, "800", result.FinalTotal.String())
	})

	t.Run("skipped when anything applied before it", func(t *testing.T) {
		engine := newTestEngine([]*model.Promotion{
			testPromo("STACKABLE", model.CategorySeasonal, model.StackModeStackable, 1, []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
			}),
			testPromo("EVENT", model.CategoryEvent, model.StackModeExclusiveAll, 2, []model.Rule{
				{Type: model.RulePercent, Payload: `{ "percent": 20 }`},
			}),
		}, nil, monday)

		result, err := engine.Calculate(context.Background(), cartOf(item("SKU-LT", "Electronics", "1000", 1)))

		require.NoError(t, err)
		require.Len(t, result.Applied, 1)
		assert.Equal(t, "STACKABLE", result.Applied[0].Code)
		assert.Equal(t, "900", result.FinalTotal.String())
	})
}

func TestCalculateCampaignSelection(t *testing.T) {
	promos := []*model.Promotion{
		testPromo("COUPON10", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
		testPromo("OTHER", model.CategorySeasonal, model.StackModeStackable, 2, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 50 }`},
		}),
	}
	names := map[string]string{"Percentage discount": "COUPON10"}

	t.Run("selection narrows the candidate set", func(t *testing.T) {
		engine := newTestEngine(promos, names, monday)
		req := cartOf(item("SKU-TS", "Clothing", "500", 1))
		req.Campaigns = &model.CampaignSelections{Coupon: &model.CampaignSelection{Name: "percentage DISCOUNT"}}

		result, err := engine.Calculate(context.Background(), req)

		require.NoError(t, err)
		require.Len(t, result.Applied, 1)
		assert.Equal(t, "COUPON10", result.Applied[0].Code)
		assert.Equal(t, "450", result.FinalTotal.String())
	})

	t.Run("unresolvable selection applies nothing", func(t *testing.T) {
		engine := newTestEngine(promos, names, monday)
		req := cartOf(item("SKU-TS", "Clothing", "500", 1))
		req.Campaigns = &model.CampaignSelections{Coupon: &model.CampaignSelection{Name: "No Such Campaign"}}

		result, err := engine.Calculate(context.Background(), req)

		require.NoError(t, err)
		assert.Empty(t, result.Applied)
		assert.Equal(t, "500", result.FinalTotal.String())
	})

	t.Run("no selection evaluates the full catalog", func(t *testing.T) {
		engine := newTestEngine(promos, names, monday)

		result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

		require.NoError(t, err)
		assert.Len(t, result.Applied, 2)
		assertConserved(t, result)
	})
}

func TestCalculateCategoryScopedPromotion(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("ONTOP-ACC", model.CategoryOnTop, model.StackModeStackable, 1,
			[]model.Rule{{Type: model.RulePercent, Payload: `{ "percent": 10 }`}},
			model.Condition{Type: model.ConditionCategoryInCart, Payload: `{ "category": "Accessories" }`},
		),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(
		item("SKU-TS", "Clothing", "500", 1),
		item("SKU-W", "Accessories", "1000", 1),
	))

	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	// 10% of the Accessories subtotal only, not of the whole cart.
	assert.Equal(t, "100", result.Applied[0].Amount.String())
	assert.Equal(t, "1400", result.FinalTotal.String())
	assertConserved(t, result)
}

func TestCalculateCategoryScopedSkipsWhenCategoryAbsent(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("ONTOP-ACC", model.CategoryOnTop, model.StackModeStackable, 1,
			[]model.Rule{{Type: model.RulePercent, Payload: `{ "percent": 10 }`}},
			model.Condition{Type: model.ConditionCategoryInCart, Payload: `{ "category": "Accessories" }`},
		),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Equal(t, "500", result.FinalTotal.String())
}

func TestCalculateDateConditions(t *testing.T) {
	wedOnly := testPromo("WED-10", model.CategorySeasonal, model.StackModeStackable, 1,
		[]model.Rule{{Type: model.RulePercent, Payload: `{ "percent": 10 }`}},
		model.Condition{Type: model.ConditionDayOfWeek, Payload: `{ "days": [3] }`},
	)

	t.Run("blocks on the wrong weekday", func(t *testing.T) {
		engine := newTestEngine([]*model.Promotion{wedOnly}, nil, monday)

		result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

		require.NoError(t, err)
		assert.Empty(t, result.Applied)
	})

	t.Run("passes on the matching weekday", func(t *testing.T) {
		engine := newTestEngine([]*model.Promotion{wedOnly}, nil, wednesday)

		result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

		require.NoError(t, err)
		require.Len(t, result.Applied, 1)
		assert.Equal(t, "450", result.FinalTotal.String())
	})
}

func TestCalculateUnknownConditionBlocksPromotion(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("MYSTERY", model.CategoryCoupon, model.StackModeStackable, 1,
			[]model.Rule{{Type: model.RulePercent, Payload: `{ "percent": 10 }`}},
			model.Condition{Type: "MOON_PHASE", Payload: `{}`},
		),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Equal(t, "500", result.FinalTotal.String())
}

func TestCalculateUnknownRuleIsNoop(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("MIXED", model.CategoryCoupon, model.StackModeStackable, 1, []model.Rule{
			{Type: "TELEPORT", Payload: `{}`},
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "500", 1)))

	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "450", result.FinalTotal.String())
}

func TestCalculateFixedAmountCappedAtCartSubtotal(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("BIGFIX", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RuleFixed, Payload: `{ "amount": 1000 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-TS", "Clothing", "600", 1)))

	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "600", result.Applied[0].Amount.String())
	assert.True(t, result.FinalTotal.IsZero())
	assertConserved(t, result)
}

func TestCalculateMultiRulePromotionAggregatesOneDiscount(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("COMBO", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RuleFixed, Payload: `{ "amount": 50 }`},
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-LT", "Electronics", "1000", 1)))

	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	// Fixed 50 first, then 10% of the remaining 950.
	assert.Equal(t, "145", result.Applied[0].Amount.String())
	assert.Equal(t, "855", result.FinalTotal.String())
	assertConserved(t, result)
}

func TestCalculateStepDiscountScenario(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("STEP300-40", model.CategorySeasonal, model.StackModeStackable, 1, []model.Rule{
			{Type: model.RuleStepDiscount, Payload: `{ "step": {{input.step}}, "discount": {{input.discount}} }`},
		}),
	}, nil, monday)
	req := cartOf(
		item("SKU-TS", "Clothing", "500", 1),
		item("SKU-HAT", "Clothing", "150", 1),
	)
	req.UserInputs = map[string]interface{}{"step": 300.0, "discount": 40.0}

	result, err := engine.Calculate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "650", result.OriginalTotal.String())
	assert.Equal(t, "570", result.FinalTotal.String())
	assertConserved(t, result)
}

func TestCalculateBuyXGetYScenario(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("BXGY-SKU", model.CategoryOnTop, model.StackModeStackable, 1, []model.Rule{
			{Type: model.RuleBuyXGetY, Payload: `{ "buyQty": 2, "getQty": 1, "sku": "SKU-ABC" }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(item("SKU-ABC", "Clothing", "100", 6)))

	require.NoError(t, err)
	assert.Equal(t, "600", result.OriginalTotal.String())
	assert.Equal(t, "400", result.FinalTotal.String())
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "200", result.Applied[0].Amount.String())
}

func TestCalculateIsIdempotent(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("COUPON10", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RulePercent, Payload: `{ "percent": 10 }`},
		}),
		testPromo("STEP", model.CategorySeasonal, model.StackModeStackable, 2, []model.Rule{
			{Type: model.RuleStepDiscount, Payload: `{ "step": 300, "discount": 40 }`},
		}),
	}, nil, monday)
	req := cartOf(
		item("SKU-TS", "Clothing", "500", 1),
		item("SKU-W", "Accessories", "250", 2),
	)

	first, err := engine.Calculate(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Calculate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, first.FinalTotal.Equal(second.FinalTotal))
	assert.Equal(t, len(first.Applied), len(second.Applied))
	for i := range first.Applied {
		assert.Equal(t, first.Applied[i].Code, second.Applied[i].Code)
		assert.True(t, first.Applied[i].Amount.Equal(second.Applied[i].Amount))
	}
	assertConserved(t, first)
}

func TestCalculateAllocationSpreadsAcrossLines(t *testing.T) {
	engine := newTestEngine([]*model.Promotion{
		testPromo("FIX10", model.CategoryCoupon, model.StackModeExclusive, 1, []model.Rule{
			{Type: model.RuleFixed, Payload: `{ "amount": 10 }`},
		}),
	}, nil, monday)

	result, err := engine.Calculate(context.Background(), cartOf(
		item("A", "Clothing", "100", 1),
		item("B", "Clothing", "100", 1),
		item("C", "Clothing", "100", 1),
	))

	require.NoError(t, err)
	assert.Equal(t, "300", result.OriginalTotal.String())
	assert.Equal(t, "290", result.FinalTotal.String())
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "10", result.Applied[0].Amount.String())
	assertConserved(t, result)
}
