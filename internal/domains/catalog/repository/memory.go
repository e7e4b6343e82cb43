package repository

import (
	"context"

	"discount-campaigns-backend/internal/domains/catalog/model"

	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	products []*model.Product
}

// NewMemoryRepository returns the static demo catalog.
func NewMemoryRepository() ProductRepository {
	return &memoryRepository{products: seedProducts()}
}

func (r *memoryRepository) ListProducts(_ context.Context) ([]*model.Product, error) {
	return r.products, nil
}

func seedProducts() []*model.Product {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	return []*model.Product{
		{Sku: "SKU-TS", Name: "T-Shirt", Category: "Clothing", Price: price(500)},
		{Sku: "SKU-HD", Name: "Hoodie", Category: "Clothing", Price: price(750)},
		{Sku: "SKU-LT", Name: "Laptop", Category: "Electronics", Price: price(5000)},
		{Sku: "SKU-SP", Name: "Smart Phone", Category: "Electronics", Price: price(3500)},
		{Sku: "SKU-W", Name: "Watch", Category: "Accessories", Price: price(2500)},
		{Sku: "SKU-ER", Name: "Earring", Category: "Accessories", Price: price(1500)},
	}
}
