package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

func memOrder(number string, status model.OrderStatus, createdAt time.Time) model.Order {
	return model.Order{
		OrderNumber:  number,
		CustomerName: "test",
		OrderType:    model.OrderTypeDriveThru,
		Status:       status,
		TotalAmount:  decimal.RequireFromString("10.00"),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestMemoryStoreRollbackOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, memOrder("CFAAAA0001", model.OrderStatusPending, time.Now()))
		assert.NoError(t, err)
		assert.NoError(t, r.OrderItems().CreateBulk(ctx, id, []model.OrderItem{{ProductID: 1, ProductName: "Espresso", Quantity: 1}}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// ヘッダも明細も残っていないこと
	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Orders().FindByNumber(ctx, "CFAAAA0001")
		assert.ErrorIs(t, err, repo.ErrNotFound)
		orders, err := r.Orders().ListKitchen(ctx, repo.OrderListFilter{})
		assert.NoError(t, err)
		assert.Empty(t, orders)
		return nil
	})
	assert.NoError(t, err)
}

func TestMemoryStoreDuplicateOrderNumber(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Orders().Create(ctx, memOrder("CFAAAA0001", model.OrderStatusPending, time.Now()))
		return err
	})
	assert.NoError(t, err)

	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Orders().Create(ctx, memOrder("CFAAAA0001", model.OrderStatusPending, time.Now()))
		return err
	})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestMemoryStoreUpdateStatusIf(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var id int64
	_ = s.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		id, err = r.Orders().Create(ctx, memOrder("CFAAAA0001", model.OrderStatusPending, time.Now()))
		return err
	})

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().UpdateStatusIf(ctx, id, model.OrderStatusPending, model.OrderStatusPreparing)
	})
	assert.NoError(t, err)

	// 観測が古い更新はConflict
	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().UpdateStatusIf(ctx, id, model.OrderStatusPending, model.OrderStatusPreparing)
	})
	assert.ErrorIs(t, err, repo.ErrConflict)

	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().UpdateStatusIf(ctx, 999, model.OrderStatusPending, model.OrderStatusPreparing)
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMemoryStoreListKitchenOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	_ = s.WithinTx(ctx, func(r repo.TxRepos) error {
		// わざと優先度の低いものから入れる
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0001", model.OrderStatusDelivered, base.Add(4*time.Second)))
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0002", model.OrderStatusReady, base.Add(1*time.Second)))
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0003", model.OrderStatusPending, base))
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0004", model.OrderStatusPreparing, base.Add(2*time.Second)))
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0005", model.OrderStatusPending, base.Add(3*time.Second)))
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0006", model.OrderStatusCancelled, base.Add(5*time.Second)))
		return nil
	})

	var numbers []string
	_ = s.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListKitchen(ctx, repo.OrderListFilter{})
		assert.NoError(t, err)
		for _, o := range orders {
			numbers = append(numbers, o.OrderNumber)
		}
		return nil
	})

	// pending(新しい順)→preparing→ready→その他(新しい順)
	assert.Equal(t, []string{
		"CFAAAA0005", "CFAAAA0003",
		"CFAAAA0004",
		"CFAAAA0002",
		"CFAAAA0006", "CFAAAA0001",
	}, numbers)
}

func TestMemoryStoreListKitchenStatusFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.WithinTx(ctx, func(r repo.TxRepos) error {
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0001", model.OrderStatusPending, time.Now()))
		_, _ = r.Orders().Create(ctx, memOrder("CFAAAA0002", model.OrderStatusReady, time.Now()))
		return nil
	})

	_ = s.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListKitchen(ctx, repo.OrderListFilter{Status: "ready"})
		assert.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, "CFAAAA0002", orders[0].OrderNumber)
		return nil
	})
}
