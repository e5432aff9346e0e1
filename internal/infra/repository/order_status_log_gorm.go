package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

type OrderStatusLogGormRepository struct {
	db *gorm.DB
}

func NewOrderStatusLogGormRepository(db *gorm.DB) *OrderStatusLogGormRepository {
	return &OrderStatusLogGormRepository{db: db}
}

func (r *OrderStatusLogGormRepository) Create(ctx context.Context, log model.OrderStatusLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *OrderStatusLogGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusLog, error) {
	var logs []model.OrderStatusLog
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&logs).Error
	if err != nil {
		return []model.OrderStatusLog{}, err
	}
	return logs, nil
}
