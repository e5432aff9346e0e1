package model

import "time"

// ステータス遷移の履歴。ダッシュボード操作の追跡用。
type OrderStatusLog struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64       `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
