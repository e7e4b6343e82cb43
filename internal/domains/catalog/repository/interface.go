package repository

import (
	"context"

	"discount-campaigns-backend/internal/domains/catalog/model"
)

// ProductRepository is the read-only product catalog boundary.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]*model.Product, error)
}
