package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// MemoryStore はDB停止時の退避先。プロセス内で完結し、再起動で消える。
// 採番はローカルの連番。テストのフェイクとしてもそのまま使える。
type MemoryStore struct {
	mu sync.Mutex

	nextOrderID    int64
	nextItemID     int64
	nextLogID      int64
	nextCustomerID int64

	orders       map[int64]model.Order
	orderNumbers map[string]int64
	items        map[int64][]model.OrderItem
	logs         map[int64][]model.OrderStatusLog
	customers    map[int64]model.Customer
	phones       map[string]int64
	products     map[int64]model.Product
	categories   []model.Category
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:       map[int64]model.Order{},
		orderNumbers: map[string]int64{},
		items:        map[int64][]model.OrderItem{},
		logs:         map[int64][]model.OrderStatusLog{},
		customers:    map[int64]model.Customer{},
		phones:       map[string]int64{},
		products:     map[int64]model.Product{},
	}
}

// WithinTx は全体ロックで直列化し、fnが失敗したら変更を巻き戻す。
// 注文ヘッダと明細が中途半端に残ることはない。
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memoryTxRepos{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// カタログや顧客をテスト・デモ用に投入する
func (s *MemoryStore) SeedCategory(c model.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
}

func (s *MemoryStore) SeedProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

type memSnapshot struct {
	nextOrderID    int64
	nextItemID     int64
	nextLogID      int64
	nextCustomerID int64
	orders         map[int64]model.Order
	orderNumbers   map[string]int64
	items          map[int64][]model.OrderItem
	logs           map[int64][]model.OrderStatusLog
	customers      map[int64]model.Customer
	phones         map[string]int64
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		nextOrderID:    s.nextOrderID,
		nextItemID:     s.nextItemID,
		nextLogID:      s.nextLogID,
		nextCustomerID: s.nextCustomerID,
		orders:         make(map[int64]model.Order, len(s.orders)),
		orderNumbers:   make(map[string]int64, len(s.orderNumbers)),
		items:          make(map[int64][]model.OrderItem, len(s.items)),
		logs:           make(map[int64][]model.OrderStatusLog, len(s.logs)),
		customers:      make(map[int64]model.Customer, len(s.customers)),
		phones:         make(map[string]int64, len(s.phones)),
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.orderNumbers {
		snap.orderNumbers[k] = v
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.logs {
		snap.logs[k] = v
	}
	for k, v := range s.customers {
		snap.customers[k] = v
	}
	for k, v := range s.phones {
		snap.phones[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
	s.nextLogID = snap.nextLogID
	s.nextCustomerID = snap.nextCustomerID
	s.orders = snap.orders
	s.orderNumbers = snap.orderNumbers
	s.items = snap.items
	s.logs = snap.logs
	s.customers = snap.customers
	s.phones = snap.phones
}

// ロックはWithinTxが握っている前提
type memoryTxRepos struct {
	s *MemoryStore
}

func (r *memoryTxRepos) Orders() repo.OrderRepository              { return &memoryOrderRepo{s: r.s} }
func (r *memoryTxRepos) OrderItems() repo.OrderItemRepository      { return &memoryOrderItemRepo{s: r.s} }
func (r *memoryTxRepos) StatusLogs() repo.OrderStatusLogRepository { return &memoryStatusLogRepo{s: r.s} }
func (r *memoryTxRepos) Products() repo.ProductRepository          { return &memoryProductRepo{s: r.s} }
func (r *memoryTxRepos) Categories() repo.CategoryRepository       { return &memoryCategoryRepo{s: r.s} }
func (r *memoryTxRepos) Customers() repo.CustomerRepository        { return &memoryCustomerRepo{s: r.s} }

type memoryOrderRepo struct {
	s *MemoryStore
}

func (r *memoryOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *memoryOrderRepo) FindByNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	id, ok := r.s.orderNumbers[orderNumber]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return r.s.orders[id], nil
}

func (r *memoryOrderRepo) Create(ctx context.Context, order model.Order) (int64, error) {
	if _, dup := r.s.orderNumbers[order.OrderNumber]; dup {
		return 0, repo.ErrConflict
	}
	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	r.s.orders[order.ID] = order
	r.s.orderNumbers[order.OrderNumber] = order.ID
	return order.ID, nil
}

func (r *memoryOrderRepo) UpdateStatusIf(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Status != from {
		return repo.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	r.s.orders[orderID] = o
	return nil
}

var kitchenRank = map[model.OrderStatus]int{
	model.OrderStatusPending:   1,
	model.OrderStatusPreparing: 2,
	model.OrderStatusReady:     3,
}

func (r *memoryOrderRepo) ListKitchen(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	items := make([]model.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		items = append(items, o)
	}
	sort.Slice(items, func(i, j int) bool {
		ri, rj := rankOf(items[i].Status), rankOf(items[j].Status)
		if ri != rj {
			return ri < rj
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func rankOf(s model.OrderStatus) int {
	if r, ok := kitchenRank[s]; ok {
		return r
	}
	return 4
}

type memoryOrderItemRepo struct {
	s *MemoryStore
}

func (r *memoryOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	stored := make([]model.OrderItem, 0, len(r.s.items[orderID])+len(items))
	stored = append(stored, r.s.items[orderID]...)
	for _, it := range items {
		r.s.nextItemID++
		it.ID = r.s.nextItemID
		it.OrderID = orderID
		if it.CreatedAt.IsZero() {
			it.CreatedAt = time.Now()
		}
		stored = append(stored, it)
	}
	r.s.items[orderID] = stored
	return nil
}

func (r *memoryOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	items := r.s.items[orderID]
	out := make([]model.OrderItem, len(items))
	copy(out, items)
	return out, nil
}

type memoryStatusLogRepo struct {
	s *MemoryStore
}

func (r *memoryStatusLogRepo) Create(ctx context.Context, log model.OrderStatusLog) error {
	r.s.nextLogID++
	log.ID = r.s.nextLogID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	stored := make([]model.OrderStatusLog, 0, len(r.s.logs[log.OrderID])+1)
	stored = append(stored, r.s.logs[log.OrderID]...)
	stored = append(stored, log)
	r.s.logs[log.OrderID] = stored
	return nil
}

func (r *memoryStatusLogRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusLog, error) {
	logs := r.s.logs[orderID]
	out := make([]model.OrderStatusLog, len(logs))
	copy(out, logs)
	return out, nil
}

type memoryProductRepo struct {
	s *MemoryStore
}

func (r *memoryProductRepo) List(ctx context.Context, f repo.ProductListFilter) ([]model.Product, error) {
	items := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if !f.IncludeUnavailable && !p.IsAvailable {
			continue
		}
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *memoryProductRepo) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	p, ok := r.s.products[productID]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

type memoryCategoryRepo struct {
	s *MemoryStore
}

func (r *memoryCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	items := make([]model.Category, len(r.s.categories))
	copy(items, r.s.categories)
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

type memoryCustomerRepo struct {
	s *MemoryStore
}

func (r *memoryCustomerRepo) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	c, ok := r.s.customers[customerID]
	if !ok {
		return model.Customer{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *memoryCustomerRepo) FindByPhone(ctx context.Context, phone string) (model.Customer, error) {
	id, ok := r.s.phones[phone]
	if !ok {
		return model.Customer{}, repo.ErrNotFound
	}
	return r.s.customers[id], nil
}

func (r *memoryCustomerRepo) Create(ctx context.Context, customer model.Customer) (int64, error) {
	if _, dup := r.s.phones[customer.Phone]; dup {
		return 0, repo.ErrConflict
	}
	r.s.nextCustomerID++
	customer.ID = r.s.nextCustomerID
	now := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = now
	}
	r.s.customers[customer.ID] = customer
	r.s.phones[customer.Phone] = customer.ID
	return customer.ID, nil
}

func (r *memoryCustomerRepo) UpdatePinHash(ctx context.Context, phone string, pinHash string) error {
	id, ok := r.s.phones[phone]
	if !ok {
		return repo.ErrNotFound
	}
	c := r.s.customers[id]
	c.PinHash = pinHash
	c.UpdatedAt = time.Now()
	r.s.customers[id] = c
	return nil
}
