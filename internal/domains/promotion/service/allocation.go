package service

import (
	"github.com/shopspring/decimal"
)

// lineState is the engine's per-line working set: the remaining subtotal
// of one cart line. It only decreases during an evaluation.
type lineState struct {
	sku      string
	category string
	subtotal decimal.Decimal
}

func sumSubtotals(lines []*lineState, idx []int) decimal.Decimal {
	total := decimal.Zero
	for _, i := range idx {
		total = total.Add(lines[i].subtotal)
	}
	return total
}

// allocate distributes discount across the lines at idx proportionally to
// their current subtotals. Every share except the last is rounded to two
// decimals (half-up); the last line takes the remainder so the allocated
// sum equals discount exactly regardless of rounding drift. Each line is
// floored at zero. Returns the amount actually allocated; zero when the
// lines carry no subtotal.
func allocate(lines []*lineState, idx []int, discount decimal.Decimal) decimal.Decimal {
	total := sumSubtotals(lines, idx)
	if !total.IsPositive() || !discount.IsPositive() {
		return decimal.Zero
	}

	allocated := decimal.Zero
	for k, i := range idx {
		var share decimal.Decimal
		if k == len(idx)-1 {
			share = discount.Sub(allocated)
		} else {
			share = discount.Mul(lines[i].subtotal).Div(total).Round(2)
		}
		allocated = allocated.Add(share)

		lines[i].subtotal = lines[i].subtotal.Sub(share)
		if lines[i].subtotal.IsNegative() {
			lines[i].subtotal = decimal.Zero
		}
	}
	return allocated
}
