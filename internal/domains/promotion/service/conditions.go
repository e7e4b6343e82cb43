package service

import (
	"encoding/json"
	"strings"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
)

// ConditionEvaluator decides whether a promotion applies to the current
// request. The payload arrives with {{input.*}} placeholders already
// merged. Evaluators fail open on malformed or missing payload fields;
// the engine fails closed when no evaluator exists for a condition type.
type ConditionEvaluator interface {
	Type() string
	Evaluate(req *model.CalculateRequest, payload string, today time.Time) bool
}

func defaultConditionRegistry() map[string]ConditionEvaluator {
	registry := map[string]ConditionEvaluator{}
	for _, ev := range []ConditionEvaluator{
		dateRangeCondition{},
		dayOfWeekCondition{},
		annualDateCondition{},
		categoryInCartCondition{},
	} {
		registry[ev.Type()] = ev
	}
	return registry
}

// dateOnly truncates t to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate accepts date-only or RFC3339 timestamps.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// DATE_RANGE: true when today falls within [start, end] inclusive.
// Missing bounds are unbounded.
type dateRangeCondition struct{}

func (dateRangeCondition) Type() string { return model.ConditionDateRange }

func (dateRangeCondition) Evaluate(_ *model.CalculateRequest, payload string, today time.Time) bool {
	var p struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return true
	}

	day := dateOnly(today)
	if start, ok := parseDate(p.Start); ok && day.Before(start) {
		return false
	}
	if end, ok := parseDate(p.End); ok && day.After(end) {
		return false
	}
	return true
}

// DAY_OF_WEEK: true when today's weekday (0=Sunday..6=Saturday) is in the
// set. An absent days field passes; an explicitly empty set matches nothing.
type dayOfWeekCondition struct{}

func (dayOfWeekCondition) Type() string { return model.ConditionDayOfWeek }

func (dayOfWeekCondition) Evaluate(_ *model.CalculateRequest, payload string, today time.Time) bool {
	var p struct {
		Days []int `json:"days"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return true
	}
	if p.Days == nil {
		return true
	}

	weekday := int(today.UTC().Weekday())
	for _, d := range p.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

// ANNUAL_DATE: true when today's month and day match exactly,
// year-independent.
type annualDateCondition struct{}

func (annualDateCondition) Type() string { return model.ConditionAnnualDate }

func (annualDateCondition) Evaluate(_ *model.CalculateRequest, payload string, today time.Time) bool {
	var p struct {
		Month int `json:"month"`
		Day   int `json:"day"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return true
	}

	now := today.UTC()
	return int(now.Month()) == p.Month && now.Day() == p.Day
}

// CATEGORY_IN_CART: true when any cart line's category matches,
// case-insensitively.
type categoryInCartCondition struct{}

func (categoryInCartCondition) Type() string { return model.ConditionCategoryInCart }

func (categoryInCartCondition) Evaluate(req *model.CalculateRequest, payload string, _ time.Time) bool {
	category, ok := decodeCategoryPayload(payload)
	if !ok {
		return true
	}

	for _, item := range req.Items {
		if strings.EqualFold(item.Category, category) {
			return true
		}
	}
	return false
}

// decodeCategoryPayload extracts the target category from a merged
// CATEGORY_IN_CART payload. ok=false means the payload was unparseable.
func decodeCategoryPayload(payload string) (string, bool) {
	var p struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", false
	}
	return p.Category, true
}
