package repository

import (
	"context"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, customerID int64) (model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (model.Customer, error)
	// 電話番号が重複したらErrConflict
	Create(ctx context.Context, customer model.Customer) (int64, error)
	UpdatePinHash(ctx context.Context, phone string, pinHash string) error
}
