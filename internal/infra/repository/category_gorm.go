package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var items []model.Category
	err := r.db.WithContext(ctx).Order("sort_order asc, id asc").Find(&items).Error
	if err != nil {
		return []model.Category{}, err
	}
	return items, nil
}
