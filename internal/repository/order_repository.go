package repository

import (
	"context"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

type OrderListFilter struct {
	Status string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 公開注文番号での解決（トラッカー用）
	FindByNumber(ctx context.Context, orderNumber string) (model.Order, error)
	// 注文番号が衝突したらErrConflict
	Create(ctx context.Context, order model.Order) (int64, error)
	// UpdateStatusIf は現在のステータスがfromのときだけtoへ更新する。
	// 行が無ければErrNotFound、fromが既に変わっていればErrConflict。
	UpdateStatusIf(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) error
	// ListKitchen は厨房優先順で返す：
	// pending→preparing→ready→それ以外、同順位は新しい順。
	ListKitchen(ctx context.Context, f OrderListFilter) ([]model.Order, error)
}
