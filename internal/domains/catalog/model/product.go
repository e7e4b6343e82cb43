package model

import "github.com/shopspring/decimal"

// Product is one sellable item in the static catalog.
type Product struct {
	Sku      string          `json:"sku"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}
