package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// ステータス変更は必ずここを通す。
// 前進（1段階）かキャンセルだけを受け付け、任意の値への書き換えは拒否する。
type OrderStatusUsecase struct {
	tx repo.TransactionManager
}

func NewOrderStatusUsecase(tx repo.TransactionManager) *OrderStatusUsecase {
	return &OrderStatusUsecase{tx: tx}
}

type UpdateStatusInput struct {
	Status string
}

// Update はPATCHの入口。targetが遷移表の辺でなければ422。
func (u *OrderStatusUsecase) Update(ctx context.Context, orderID int64, in UpdateStatusInput) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	target := model.OrderStatus(strings.TrimSpace(in.Status))
	if !target.Valid() {
		return NewHTTPError(http.StatusUnprocessableEntity, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		return transition(ctx, r, o, target)
	})
}

// Advance は次のステータスへ1段階進める。
func (u *OrderStatusUsecase) Advance(ctx context.Context, orderID int64) (model.OrderStatus, error) {
	if orderID <= 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var next model.OrderStatus
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		n, err := o.Status.Next()
		if err != nil {
			return NewHTTPError(http.StatusUnprocessableEntity, "invalid status transition")
		}
		if err := transition(ctx, r, o, n); err != nil {
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// Cancel は非終端の注文を取り消す。
func (u *OrderStatusUsecase) Cancel(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		return transition(ctx, r, o, model.OrderStatusCancelled)
	})
}

func findOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return o, nil
}

// 観測したステータス前提の条件付き更新。
// 先に他のスタッフの更新が入っていたら409で弾く（上書きはしない）。
func transition(ctx context.Context, r repo.TxRepos, o model.Order, target model.OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return NewHTTPError(http.StatusUnprocessableEntity, "invalid status transition")
	}

	err := r.Orders().UpdateStatusIf(ctx, o.ID, o.Status, target)
	if errors.Is(err, repo.ErrConflict) {
		return NewHTTPError(http.StatusConflict, "order status changed, reload and retry")
	}
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := r.StatusLogs().Create(ctx, model.OrderStatusLog{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   target,
		CreatedAt:  time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
