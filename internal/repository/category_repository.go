package repository

import (
	"context"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

type CategoryRepository interface {
	// sort_order順
	List(ctx context.Context) ([]model.Category, error)
}
