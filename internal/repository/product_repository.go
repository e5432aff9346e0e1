package repository

import (
	"context"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

type ProductListFilter struct {
	CategoryID         *int64
	IncludeUnavailable bool
}

type ProductRepository interface {
	List(ctx context.Context, f ProductListFilter) ([]model.Product, error)
	FindByID(ctx context.Context, productID int64) (model.Product, error)
}
