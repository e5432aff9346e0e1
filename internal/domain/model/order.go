package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeDriveThru OrderType = "drive_thru"
	OrderTypePickup    OrderType = "pickup"
)

// 許可されない遷移
var ErrInvalidTransition = errors.New("invalid status transition")

// 前進は一本道。delivered/cancelledからは進めない。
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Next は次のステータスを返す。終端ならErrInvalidTransition。
func (s OrderStatus) Next() (OrderStatus, error) {
	n, ok := nextStatus[s]
	if !ok {
		return "", ErrInvalidTransition
	}
	return n, nil
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo は1段階前進か、非終端からのcancelledだけ許可する。
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return !s.Terminal()
	}
	n, ok := nextStatus[s]
	return ok && n == to
}

func (t OrderType) Valid() bool {
	return t == OrderTypeDriveThru || t == OrderTypePickup
}

type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string          `gorm:"type:varchar(16);not null;uniqueIndex" json:"order_number"`
	CustomerName  string          `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(20)" json:"customer_phone"`
	CarType       string          `gorm:"type:varchar(50)" json:"car_type"`
	CarColor      string          `gorm:"type:varchar(30)" json:"car_color"`
	CarPlate      string          `gorm:"type:varchar(20)" json:"car_plate"`
	OrderType     OrderType       `gorm:"type:varchar(20);not null" json:"order_type"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
