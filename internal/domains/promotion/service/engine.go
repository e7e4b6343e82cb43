package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
	"discount-campaigns-backend/internal/domains/promotion/repository"
	"discount-campaigns-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

// Engine evaluates the promotion catalog against one cart. The catalog
// and evaluator registries are read-only after construction, so one
// Engine is safe for concurrent requests; the only mutable state is the
// per-request line subtotal working set.
type Engine struct {
	repo       repository.PromotionRepository
	conditions map[string]ConditionEvaluator
	rules      map[string]RuleEvaluator
	now        func() time.Time
}

// EngineOption customizes Engine construction.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source. Tests pin the clock so
// date-based conditions evaluate deterministically.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine over the given catalog repository with the
// full condition and rule registries.
func NewEngine(repo repository.PromotionRepository, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:       repo,
		conditions: defaultConditionRegistry(),
		rules:      defaultRuleRegistry(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ServiceInterface = (*Engine)(nil)

// Calculate runs the evaluation pipeline:
// subtotals → candidate selection → priority order → per promotion:
// conditions, stacking, category scoping, rules, allocation.
func (e *Engine) Calculate(ctx context.Context, req *model.CalculateRequest) (*model.CalculateResult, error) {
	now := e.now().UTC()

	lines := make([]*lineState, len(req.Items))
	for i, item := range req.Items {
		lines[i] = &lineState{
			sku:      item.Sku,
			category: item.Category,
			subtotal: item.Subtotal(),
		}
	}
	originalTotal := sumSubtotals(lines, allIndexes(lines))

	candidates, err := e.selectCandidates(ctx, req, now)
	if err != nil {
		return nil, err
	}

	// Lower priority runs first; ties keep catalog order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	var applied []model.AppliedDiscount
	appliedCategories := map[model.PromotionCategory]bool{}
	exclusiveAllApplied := false

	for _, promo := range candidates {
		// An applied EXCLUSIVE_ALL promotion shuts the evaluation down
		// for everything behind it, regardless of their stack modes.
		if exclusiveAllApplied {
			break
		}

		if !e.conditionsPass(req, promo, now) {
			continue
		}

		if promo.Stack == model.StackModeExclusiveAll && len(applied) > 0 {
			continue
		}
		if promo.Stack == model.StackModeExclusive && appliedCategories[promo.Category] {
			continue
		}

		promoTotal := e.applyPromotion(req, promo, lines)
		if promoTotal.IsPositive() {
			applied = append(applied, model.AppliedDiscount{Code: promo.Code, Amount: promoTotal})
			appliedCategories[promo.Category] = true
			if promo.Stack == model.StackModeExclusiveAll {
				exclusiveAllApplied = true
			}
		}
	}

	return &model.CalculateResult{
		OriginalTotal: originalTotal,
		FinalTotal:    sumSubtotals(lines, allIndexes(lines)),
		Applied:       applied,
	}, nil
}

// ListActivePromotions returns the promotions active today.
func (e *Engine) ListActivePromotions(ctx context.Context) ([]*model.Promotion, error) {
	return e.repo.ListActive(ctx, e.now().UTC())
}

// GetPromotionByCode looks a promotion up by code.
func (e *Engine) GetPromotionByCode(ctx context.Context, code string) (*model.Promotion, error) {
	return e.repo.FindByCode(ctx, code)
}

// ListTemplates returns the promotion type templates.
func (e *Engine) ListTemplates(ctx context.Context) ([]*model.PromotionTypeTemplate, error) {
	return e.repo.ListTemplates(ctx)
}

// selectCandidates resolves the candidate promotion set. With campaign
// selections present, only the selected campaigns' promotions qualify;
// an unresolvable selection contributes nothing rather than failing.
func (e *Engine) selectCandidates(ctx context.Context, req *model.CalculateRequest, now time.Time) ([]*model.Promotion, error) {
	promos, err := e.repo.ListActive(ctx, now)
	if err != nil {
		return nil, err
	}

	names := req.Campaigns.Names()
	if len(names) == 0 {
		return promos, nil
	}

	selectedCodes := map[string]bool{}
	for _, name := range names {
		code, ok, err := e.repo.ResolveCampaignName(ctx, name)
		if err != nil {
			logger.Warn("campaign name lookup failed", map[string]interface{}{"name": name, "error": err.Error()})
			continue
		}
		if !ok {
			logger.Debug("campaign name did not resolve: " + name)
			continue
		}
		selectedCodes[strings.ToUpper(code)] = true
	}
	if len(selectedCodes) == 0 {
		return nil, nil
	}

	var selected []*model.Promotion
	for _, p := range promos {
		if selectedCodes[strings.ToUpper(p.Code)] {
			selected = append(selected, p)
		}
	}
	return selected, nil
}

// conditionsPass evaluates every condition, short-circuiting on the first
// failure. A condition type with no registered evaluator blocks the
// promotion.
func (e *Engine) conditionsPass(req *model.CalculateRequest, promo *model.Promotion, now time.Time) bool {
	for _, cond := range promo.Conditions {
		evaluator, ok := e.conditions[cond.Type]
		if !ok {
			return false
		}
		merged := MergeTemplate(cond.Payload, req.UserInputs)
		if !e.safeEvaluate(evaluator, req, merged, now, promo.Code) {
			return false
		}
	}
	return true
}

// applyPromotion runs every rule of the promotion against the line state
// and returns the promotion's total deducted amount.
func (e *Engine) applyPromotion(req *model.CalculateRequest, promo *model.Promotion, lines []*lineState) decimal.Decimal {
	scopeCategory := e.categoryScope(req, promo)

	promoTotal := decimal.Zero
	for _, rule := range promo.Rules {
		evaluator, ok := e.rules[rule.Type]
		if !ok {
			// Unknown rule kind is a no-op, not an error.
			continue
		}
		merged := MergeTemplate(rule.Payload, req.UserInputs)

		var discount decimal.Decimal
		if scopeCategory != "" {
			discount = e.applyScopedRule(req, evaluator, merged, lines, scopeCategory)
		} else {
			discount = e.applyCartRule(req, evaluator, merged, lines)
		}
		promoTotal = promoTotal.Add(discount)
	}
	return promoTotal
}

// applyScopedRule applies a rule to the subtotal of one category's lines
// and allocates the delta across those lines only.
func (e *Engine) applyScopedRule(req *model.CalculateRequest, evaluator RuleEvaluator, payload string, lines []*lineState, category string) decimal.Decimal {
	idx := categoryIndexes(lines, category)
	subtotal := sumSubtotals(lines, idx)
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	after := e.safeApply(evaluator, subtotal, req, payload)
	discount := clampDiscount(subtotal, after)
	if !discount.IsPositive() {
		return decimal.Zero
	}
	return allocate(lines, idx, discount)
}

// applyCartRule applies a rule to the whole cart. A literal fixed amount
// in the merged payload short-circuits the evaluator and is capped at the
// current cart subtotal.
func (e *Engine) applyCartRule(req *model.CalculateRequest, evaluator RuleEvaluator, payload string, lines []*lineState) decimal.Decimal {
	idx := allIndexes(lines)
	subtotal := sumSubtotals(lines, idx)

	if fixed, ok := fixedAmount(payload); ok {
		discount := fixed
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		if !discount.IsPositive() {
			return decimal.Zero
		}
		return allocate(lines, idx, discount)
	}

	after := e.safeApply(evaluator, subtotal, req, payload)
	discount := clampDiscount(subtotal, after)
	if !discount.IsPositive() {
		return decimal.Zero
	}
	return allocate(lines, idx, discount)
}

// categoryScope resolves the target category of a CATEGORY_IN_CART
// condition, if the promotion carries one. Scoped promotions apply their
// rules only to matching-category lines.
func (e *Engine) categoryScope(req *model.CalculateRequest, promo *model.Promotion) string {
	for _, cond := range promo.Conditions {
		if !strings.EqualFold(cond.Type, model.ConditionCategoryInCart) {
			continue
		}
		merged := MergeTemplate(cond.Payload, req.UserInputs)
		if category, ok := decodeCategoryPayload(merged); ok {
			return category
		}
		return ""
	}
	return ""
}

// safeEvaluate isolates a panicking condition evaluator: the promotion
// simply does not apply.
func (e *Engine) safeEvaluate(evaluator ConditionEvaluator, req *model.CalculateRequest, payload string, now time.Time, promoCode string) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("condition evaluator panicked", map[string]interface{}{
				"promotion": promoCode,
				"condition": evaluator.Type(),
				"panic":     r,
			})
			result = false
		}
	}()
	return evaluator.Evaluate(req, payload, now)
}

// safeApply isolates a panicking rule evaluator: the rule becomes a no-op.
func (e *Engine) safeApply(evaluator RuleEvaluator, current decimal.Decimal, req *model.CalculateRequest, payload string) (result decimal.Decimal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("rule evaluator panicked", map[string]interface{}{
				"rule":  evaluator.Type(),
				"panic": r,
			})
			result = current
		}
	}()
	return evaluator.Apply(current, req, payload)
}

// clampDiscount bounds the delta of one rule application to [0, before].
func clampDiscount(before, after decimal.Decimal) decimal.Decimal {
	discount := before.Sub(after)
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(before) {
		return before
	}
	return discount
}

// fixedAmount detects a literal "amount" field in a merged rule payload.
func fixedAmount(payload string) (decimal.Decimal, bool) {
	var p struct {
		Amount *decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil || p.Amount == nil {
		return decimal.Zero, false
	}
	return *p.Amount, true
}

func allIndexes(lines []*lineState) []int {
	idx := make([]int, len(lines))
	for i := range lines {
		idx[i] = i
	}
	return idx
}

func categoryIndexes(lines []*lineState, category string) []int {
	var idx []int
	for i, line := range lines {
		if strings.EqualFold(line.category, category) {
			idx = append(idx, i)
		}
	}
	return idx
}
