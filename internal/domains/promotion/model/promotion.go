package model

import (
	"time"

	"github.com/google/uuid"
)

// PromotionCategory groups promotions for stacking purposes.
type PromotionCategory string

const (
	CategoryCoupon   PromotionCategory = "COUPON"
	CategoryOnTop    PromotionCategory = "ON_TOP"
	CategorySeasonal PromotionCategory = "SEASONAL"
	CategoryPoint    PromotionCategory = "POINT"
	CategoryEvent    PromotionCategory = "EVENT"
)

// StackMode controls how a promotion combines with others in one evaluation.
type StackMode string

const (
	// StackModeStackable combines freely with anything.
	StackModeStackable StackMode = "STACKABLE"
	// StackModeExclusive allows at most one applied promotion per category.
	StackModeExclusive StackMode = "EXCLUSIVE"
	// StackModeExclusiveAll blocks this promotion once anything else applied.
	StackModeExclusiveAll StackMode = "EXCLUSIVE_ALL"
)

// Condition types.
const (
	ConditionDateRange      = "DATE_RANGE"
	ConditionDayOfWeek      = "DAY_OF_WEEK"
	ConditionAnnualDate     = "ANNUAL_DATE"
	ConditionCategoryInCart = "CATEGORY_IN_CART"
)

// Rule types.
const (
	RulePercent      = "PERCENT"
	RuleFixed        = "FIXED"
	RuleTier         = "TIER"
	RuleStepDiscount = "STEP_DISCOUNT"
	RulePoint        = "POINT"
	RuleBuyXGetY     = "BUY_X_GET_Y"
)

// Promotion is read-only catalog data for the engine. Lifecycle
// (creation/editing) belongs to the repository behind it.
type Promotion struct {
	ID       uuid.UUID         `json:"id"`
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	TypeCode string            `json:"type_code"` // template code, e.g. "TIER_PERCENT"
	Category PromotionCategory `json:"category"`
	Stack    StackMode         `json:"stack_mode"`
	Priority int               `json:"priority"` // lower runs first

	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`

	Conditions []Condition `json:"conditions,omitempty"`
	Rules      []Rule      `json:"rules"`
}

// Condition gates whether the owning promotion applies. Payload is a JSON
// template that may contain {{input.*}} placeholders.
type Condition struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// Rule is one pricing transformation. Payload is a JSON template that may
// contain {{input.*}} placeholders.
type Rule struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// PromotionTypeTemplate is the admin form schema for one rule type.
type PromotionTypeTemplate struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

// ActiveOn reports whether the promotion's activation window covers the
// given day. Comparison is date-only in UTC; missing bounds are open.
func (p *Promotion) ActiveOn(day time.Time) bool {
	y, m, d := day.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if p.StartAt != nil {
		sy, sm, sd := p.StartAt.UTC().Date()
		if time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC).After(today) {
			return false
		}
	}
	if p.EndAt != nil {
		ey, em, ed := p.EndAt.UTC().Date()
		if time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Before(today) {
			return false
		}
	}
	return true
}
