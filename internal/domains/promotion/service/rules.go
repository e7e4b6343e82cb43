package service

import (
	"encoding/json"
	"sort"
	"strings"

	"discount-campaigns-backend/internal/domains/promotion/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RuleEvaluator reduces a monetary amount according to one pricing rule.
// The payload arrives with {{input.*}} placeholders already merged.
// Apply never returns more than current or less than zero; malformed
// payloads leave the amount unchanged.
type RuleEvaluator interface {
	Type() string
	Apply(current decimal.Decimal, req *model.CalculateRequest, payload string) decimal.Decimal
}

func defaultRuleRegistry() map[string]RuleEvaluator {
	registry := map[string]RuleEvaluator{}
	for _, ev := range []RuleEvaluator{
		percentRule{},
		fixedRule{},
		tierRule{},
		stepDiscountRule{},
		pointRule{},
		buyXGetYRule{},
	} {
		registry[ev.Type()] = ev
	}
	return registry
}

func floorAtZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// PERCENT: reduce by current × percent/100.
type percentRule struct{}

func (percentRule) Type() string { return model.RulePercent }

func (percentRule) Apply(current decimal.Decimal, _ *model.CalculateRequest, payload string) decimal.Decimal {
	var p struct {
		Percent decimal.Decimal `json:"percent"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return current
	}

	discount := current.Mul(p.Percent).Div(hundred)
	return floorAtZero(current.Sub(discount))
}

// FIXED: subtract a fixed amount, floored at zero.
type fixedRule struct{}

func (fixedRule) Type() string { return model.RuleFixed }

func (fixedRule) Apply(current decimal.Decimal, _ *model.CalculateRequest, payload string) decimal.Decimal {
	var p struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return current
	}

	return floorAtZero(current.Sub(p.Amount))
}

// TIER: the first band (ascending min) containing the amount decides the
// percent; no band means no change.
type tierRule struct{}

func (tierRule) Type() string { return model.RuleTier }

type tierBand struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Percent decimal.Decimal `json:"percent"`
}

func (tierRule) Apply(current decimal.Decimal, _ *model.CalculateRequest, payload string) decimal.Decimal {
	var bands []tierBand
	if err := json.Unmarshal([]byte(payload), &bands); err != nil {
		return current
	}

	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].Min.LessThan(bands[j].Min)
	})

	for _, band := range bands {
		if current.GreaterThanOrEqual(band.Min) && current.LessThanOrEqual(band.Max) {
			discount := current.Mul(band.Percent).Div(hundred)
			return floorAtZero(current.Sub(discount))
		}
	}
	return current
}

// STEP_DISCOUNT: subtract floor(current/step) × discount.
type stepDiscountRule struct{}

func (stepDiscountRule) Type() string { return model.RuleStepDiscount }

func (stepDiscountRule) Apply(current decimal.Decimal, _ *model.CalculateRequest, payload string) decimal.Decimal {
	var p struct {
		Step     decimal.Decimal `json:"step"`
		Discount decimal.Decimal `json:"discount"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return current
	}
	if !p.Step.IsPositive() {
		return current
	}

	times := current.Div(p.Step).Floor()
	return floorAtZero(current.Sub(times.Mul(p.Discount)))
}

// POINT: redeem points × pointValue, capped at current × maxPercent/100.
// pointValue defaults to 1, maxPercent to 100; points come from the
// request's user inputs (default 0).
type pointRule struct{}

func (pointRule) Type() string { return model.RulePoint }

func (pointRule) Apply(current decimal.Decimal, req *model.CalculateRequest, payload string) decimal.Decimal {
	var p struct {
		PointValue *decimal.Decimal `json:"pointValue"`
		MaxPercent *decimal.Decimal `json:"maxPercent"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return current
	}

	pointValue := decimal.NewFromInt(1)
	if p.PointValue != nil {
		pointValue = *p.PointValue
	}
	maxPercent := hundred
	if p.MaxPercent != nil {
		maxPercent = *p.MaxPercent
	}

	points := inputNumber(req.UserInputs, "points")

	desired := points.Mul(pointValue)
	capped := current.Mul(maxPercent).Div(hundred)
	if desired.GreaterThan(capped) {
		desired = capped
	}
	return floorAtZero(current.Sub(desired))
}

// BUY_X_GET_Y: every full group of buyQty+getQty units of the target sku
// earns getQty free units, priced at the sku's listed unit price.
type buyXGetYRule struct{}

func (buyXGetYRule) Type() string { return model.RuleBuyXGetY }

func (buyXGetYRule) Apply(current decimal.Decimal, req *model.CalculateRequest, payload string) decimal.Decimal {
	var p struct {
		BuyQty int    `json:"buyQty"`
		GetQty int    `json:"getQty"`
		Sku    string `json:"sku"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return current
	}
	if p.BuyQty <= 0 || p.GetQty <= 0 || strings.TrimSpace(p.Sku) == "" {
		return current
	}

	totalQty := 0
	unitPrice := decimal.Zero
	found := false
	for _, item := range req.Items {
		if item.Sku == p.Sku {
			if !found {
				unitPrice = item.UnitPrice
				found = true
			}
			totalQty += item.Quantity
		}
	}
	if !found {
		return current
	}

	groups := totalQty / (p.BuyQty + p.GetQty)
	freeUnits := groups * p.GetQty
	if freeUnits <= 0 {
		return current
	}

	discount := unitPrice.Mul(decimal.NewFromInt(int64(freeUnits)))
	return floorAtZero(current.Sub(discount))
}

// inputNumber reads a numeric user input, tolerating the JSON and string
// shapes clients send. Unparseable values count as zero.
func inputNumber(inputs map[string]interface{}, key string) decimal.Decimal {
	value, ok := inputs[key]
	if !ok {
		return decimal.Zero
	}

	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.Zero
}
