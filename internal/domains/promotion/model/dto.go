package model

import (
	"errors"

	"github.com/shopspring/decimal"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CartItem is one line of the incoming cart. Immutable during evaluation.
type CartItem struct {
	Sku       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Validate validates CartItem
func (i CartItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Sku,
			validation.Required.Error("sku is required"),
		),
		validation.Field(&i.UnitPrice,
			validation.By(validateNonNegativePrice),
		),
		validation.Field(&i.Quantity,
			validation.Min(1).Error("quantity must be >= 1"),
			validation.Max(1000).Error("quantity must be <= 1000"),
		),
	)
}

// validateNonNegativePrice rejects negative unit prices. ozzo's threshold
// rules cannot compare decimal.Decimal, so the check is a custom rule.
func validateNonNegativePrice(value interface{}) error {
	price, ok := value.(decimal.Decimal)
	if !ok || price.IsNegative() {
		return errors.New("unit_price must be >= 0")
	}
	return nil
}

// Subtotal is unit price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CampaignSelection names a campaign by its display name.
type CampaignSelection struct {
	Name string `json:"name"`
}

// CampaignSelections carries the up-to-three campaign slots a shopper can pick.
type CampaignSelections struct {
	Coupon   *CampaignSelection `json:"coupon,omitempty"`
	OnTop    *CampaignSelection `json:"on_top,omitempty"`
	Seasonal *CampaignSelection `json:"seasonal,omitempty"`
}

// Names returns the non-empty selected display names in slot order.
func (s *CampaignSelections) Names() []string {
	if s == nil {
		return nil
	}
	var names []string
	for _, sel := range []*CampaignSelection{s.Coupon, s.OnTop, s.Seasonal} {
		if sel != nil && sel.Name != "" {
			names = append(names, sel.Name)
		}
	}
	return names
}

// CalculateRequest is the evaluate operation's input.
type CalculateRequest struct {
	Items      []CartItem             `json:"items"`
	UserInputs map[string]interface{} `json:"user_inputs"`
	Campaigns  *CampaignSelections    `json:"campaigns,omitempty"`
}

// Validate validates CalculateRequest
func (r CalculateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items,
			validation.Required.Error("cart must not be empty"),
			validation.Length(1, 100).Error("cart must contain 1-100 items"),
		),
	)
}

// OriginalTotal is the literal pre-discount sum of the cart.
func (r CalculateRequest) OriginalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// AppliedDiscount is one promotion's aggregated deduction.
type AppliedDiscount struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// CalculateResult is the evaluate operation's output.
type CalculateResult struct {
	OriginalTotal decimal.Decimal   `json:"original_total"`
	FinalTotal    decimal.Decimal   `json:"final_total"`
	Applied       []AppliedDiscount `json:"applied"`
}
