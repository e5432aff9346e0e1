package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// 注文番号衝突時の引き直し回数
const orderNumberRetries = 3

type OrderUsecase struct {
	tx     repo.TransactionManager
	numGen OrderNumberGenerator
}

func NewOrderUsecase(tx repo.TransactionManager, numGen OrderNumberGenerator) *OrderUsecase {
	return &OrderUsecase{tx: tx, numGen: numGen}
}

// カートから渡される明細スナップショット。
// 価格はカート追加時点で凍結したものを使う（カタログは読み直さない）。
type SubmitOrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Notes       string          `json:"notes"`
}

type SubmitOrderInput struct {
	CustomerName  string
	CustomerPhone string
	CarType       string
	CarColor      string
	CarPlate      string
	OrderType     string
	Notes         string
	Items         []SubmitOrderItem
}

type SubmitOrderOutput struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

type OrderItemOutput struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Notes       string          `json:"notes"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	OrderNumber   string            `json:"order_number"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	CarType       string            `json:"car_type"`
	CarColor      string            `json:"car_color"`
	CarPlate      string            `json:"car_plate"`
	OrderType     string            `json:"order_type"`
	Status        string            `json:"status"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Notes         string            `json:"notes"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Items         []OrderItemOutput `json:"items"`
}

// Submit は注文を確定する。
// 合計はサーバー側で計算し直し、ヘッダと明細を1トランザクションで書く。
func (u *OrderUsecase) Submit(ctx context.Context, in SubmitOrderInput) (SubmitOrderOutput, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "customer name required")
	}
	if len(in.Items) == 0 {
		return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	orderType := model.OrderType(strings.TrimSpace(in.OrderType))
	if !orderType.Valid() {
		return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_type")
	}

	total := decimal.Zero
	orderItems := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
		productName := strings.TrimSpace(it.ProductName)
		if productName == "" {
			return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
		if it.UnitPrice.IsNegative() {
			return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price")
		}

		// 明細の行合計もここで確定する（ヘッダ合計と必ず一致させる）
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)).Round(2)
		orderItems = append(orderItems, model.OrderItem{
			ProductID:   it.ProductID,
			ProductName: productName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  lineTotal,
			Notes:       it.Notes,
		})
		total = total.Add(lineTotal)
	}
	total = total.Round(2)

	var out SubmitOrderOutput

	// 注文番号の衝突だけ引き直す。書き込み自体の自動リトライはしない
	// （接続断はFailover側の退避で拾う）。
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		number := u.numGen.NewOrderNumber()
		now := time.Now()

		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			orderID, err := r.Orders().Create(ctx, model.Order{
				OrderNumber:   number,
				CustomerName:  name,
				CustomerPhone: strings.TrimSpace(in.CustomerPhone),
				CarType:       in.CarType,
				CarColor:      in.CarColor,
				CarPlate:      in.CarPlate,
				OrderType:     orderType,
				Status:        model.OrderStatusPending,
				TotalAmount:   total,
				Notes:         in.Notes,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			if err != nil {
				return err
			}
			if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
				return err
			}
			out = SubmitOrderOutput{OrderID: orderID, OrderNumber: number}
			return nil
		})
		if errors.Is(err, repo.ErrConflict) {
			continue
		}
		if err != nil {
			return SubmitOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return out, nil
	}

	return SubmitOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "could not allocate order number")
}

// Track は内部IDか公開注文番号のどちらでも解決する。
func (u *OrderUsecase) Track(ctx context.Context, idOrNumber string) (OrderOutput, error) {
	key := strings.TrimSpace(idOrNumber)
	if key == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var o model.Order
		var err error

		// 数字だけなら内部ID、それ以外は注文番号
		if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil && id > 0 {
			o, err = r.Orders().FindByID(ctx, id)
		} else {
			o, err = r.Orders().FindByNumber(ctx, strings.ToUpper(key))
		}
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListKitchen はダッシュボード用の一覧。対応中の注文が先に来る。
func (u *OrderUsecase) ListKitchen(ctx context.Context, status string) ([]OrderOutput, error) {
	status = strings.TrimSpace(status)
	if status != "" && !model.OrderStatus(status).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListKitchen(ctx, repo.OrderListFilter{Status: status})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Notes:       it.Notes,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CarType:       o.CarType,
		CarColor:      o.CarColor,
		CarPlate:      o.CarPlate,
		OrderType:     string(o.OrderType),
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         outItems,
	}
}
