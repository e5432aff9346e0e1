package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	infraRepo "github.com/zozz909/cafe-drive/internal/infra/repository"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

func submitTestOrder(t *testing.T, store *infraRepo.MemoryStore) int64 {
	t.Helper()
	u := NewOrderUsecase(store, &RandomOrderNumberGenerator{})
	out, err := u.Submit(context.Background(), validSubmitInput())
	assert.NoError(t, err)
	return out.OrderID
}

func currentStatus(t *testing.T, store *infraRepo.MemoryStore, orderID int64) model.OrderStatus {
	t.Helper()
	var s model.OrderStatus
	err := store.WithinTx(context.Background(), func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(context.Background(), orderID)
		if err != nil {
			return err
		}
		s = o.Status
		return nil
	})
	assert.NoError(t, err)
	return s
}

func TestAdvanceChainToDelivered(t *testing.T) {
	store := infraRepo.NewMemoryStore()
	u := NewOrderStatusUsecase(store)
	ctx := context.Background()
	id := submitTestOrder(t, store)

	for _, want := range []model.OrderStatus{
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusDelivered,
	} {
		got, err := u.Advance(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// deliveredからはもう進めない。状態も変わらない
	_, err := u.Advance(ctx, id)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)
	assert.Equal(t, model.OrderStatusDelivered, currentStatus(t, store, id))
}

func TestCancelFromNonTerminal(t *testing.T) {
	store := infraRepo.NewMemoryStore()
	u := NewOrderStatusUsecase(store)
	ctx := context.Background()
	id := submitTestOrder(t, store)

	_, err := u.Advance(ctx, id) // preparing
	assert.NoError(t, err)

	assert.NoError(t, u.Cancel(ctx, id))
	assert.Equal(t, model.OrderStatusCancelled, currentStatus(t, store, id))

	// cancelledは吸収状態
	err = u.Cancel(ctx, id)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)
}

func TestCancelDeliveredRejected(t *testing.T) {
	store := infraRepo.NewMemoryStore()
	u := NewOrderStatusUsecase(store)
	ctx := context.Background()
	id := submitTestOrder(t, store)

	for i := 0; i < 3; i++ {
		_, err := u.Advance(ctx, id)
		assert.NoError(t, err)
	}

	err := u.Cancel(ctx, id)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)
	assert.Equal(t, model.OrderStatusDelivered, currentStatus(t, store, id))
}

func TestUpdateAcceptsOnlyMachineEdges(t *testing.T) {
	store := infraRepo.NewMemoryStore()
	u := NewOrderStatusUsecase(store)
	ctx := context.Background()
	id := submitTestOrder(t, store)

	// pending→readyの飛び越しは422
	err := u.Update(ctx, id, UpdateStatusInput{Status: "ready"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)

	// 未知の値も422
	err = u.Update(ctx, id, UpdateStatusInput{Status: "shipped"})
	he, ok = AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)

	// 正しい辺は通る
	assert.NoError(t, u.Update(ctx, id, UpdateStatusInput{Status: "preparing"}))
	assert.NoError(t, u.Update(ctx, id, UpdateStatusInput{Status: "cancelled"}))
	assert.Equal(t, model.OrderStatusCancelled, currentStatus(t, store, id))
}

func TestUpdateNotFound(t *testing.T) {
	store := infraRepo.NewMemoryStore()
	u := NewOrderStatusUsecase(store)

	err := u.Update(context.Background(), 999, UpdateStatusInput{Status: "preparing"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestStatusLogWrittenOnTransition(t *testing.T) {
	store := infraRepo.NewMemoryStore()
	u := NewOrderStatusUsecase(store)
	ctx := context.Background()
	id := submitTestOrder(t, store)

	_, err := u.Advance(ctx, id)
	assert.NoError(t, err)
	assert.NoError(t, u.Cancel(ctx, id))

	var logs []model.OrderStatusLog
	err = store.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		logs, err = r.StatusLogs().ListByOrderID(ctx, id)
		return err
	})
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, model.OrderStatusPending, logs[0].FromStatus)
	assert.Equal(t, model.OrderStatusPreparing, logs[0].ToStatus)
	assert.Equal(t, model.OrderStatusPreparing, logs[1].FromStatus)
	assert.Equal(t, model.OrderStatusCancelled, logs[1].ToStatus)
}

// =====================
// 競合（lost update）はmockで再現する
// =====================

type txManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type txReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	statusLogs repo.OrderStatusLogRepository
	products   repo.ProductRepository
	categories repo.CategoryRepository
	customers  repo.CustomerRepository
}

func (r *txReposMock) Orders() repo.OrderRepository              { return r.orders }
func (r *txReposMock) OrderItems() repo.OrderItemRepository      { return r.orderItems }
func (r *txReposMock) StatusLogs() repo.OrderStatusLogRepository { return r.statusLogs }
func (r *txReposMock) Products() repo.ProductRepository          { return r.products }
func (r *txReposMock) Categories() repo.CategoryRepository       { return r.categories }
func (r *txReposMock) Customers() repo.CustomerRepository        { return r.customers }

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	panic("not used in status tests")
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used in status tests")
}

func (m *orderRepoMock) UpdateStatusIf(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *orderRepoMock) ListKitchen(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	panic("not used in status tests")
}

func TestAdvanceStaleObservationRejected(t *testing.T) {
	orders := &orderRepoMock{}
	// 読んだ時点ではpreparingだが、更新時には他のスタッフが先に進めていた
	orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, Status: model.OrderStatusPreparing}, nil)
	orders.On("UpdateStatusIf", mock.Anything, int64(1), model.OrderStatusPreparing, model.OrderStatusReady).
		Return(repo.ErrConflict)

	tm := &txManagerMock{Repos: &txReposMock{orders: orders}}
	tm.On("WithinTx", mock.Anything).Return(nil)

	u := NewOrderStatusUsecase(tm)
	_, err := u.Advance(context.Background(), 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	orders.AssertExpectations(t)
}
