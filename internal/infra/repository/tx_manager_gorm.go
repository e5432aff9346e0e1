package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// 1トランザクションの上限。ハングさせずPersistenceErrorとして返す。
const txTimeout = 5 * time.Second

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	statusLogs repo.OrderStatusLogRepository
	products   repo.ProductRepository
	categories repo.CategoryRepository
	customers  repo.CustomerRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository              { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository      { return r.orderItems }
func (r *txReposGorm) StatusLogs() repo.OrderStatusLogRepository { return r.statusLogs }
func (r *txReposGorm) Products() repo.ProductRepository          { return r.products }
func (r *txReposGorm) Categories() repo.CategoryRepository       { return r.categories }
func (r *txReposGorm) Customers() repo.CustomerRepository        { return r.customers }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:     NewOrderGormRepository(tx),
			orderItems: NewOrderItemGormRepository(tx),
			statusLogs: NewOrderStatusLogGormRepository(tx),
			products:   NewProductGormRepository(tx),
			categories: NewCategoryGormRepository(tx),
			customers:  NewCustomerGormRepository(tx),
		}
		return fn(r)
	})
}
