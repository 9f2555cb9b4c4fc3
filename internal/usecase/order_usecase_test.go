package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ecofinds/internal/domain/model"
	repo "ecofinds/internal/repository"
	"ecofinds/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

var _ repo.OrderRepository = (*OrderRepoMock)(nil)

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

var _ repo.OrderItemRepository = (*OrderItemRepoMock)(nil)

// TxをバイパスしてMockを直接差し込むスタブ
type txReposStub struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	products   *ProductRepoMock
}

func (s txReposStub) Orders() repo.OrderRepository         { return s.orders }
func (s txReposStub) OrderItems() repo.OrderItemRepository { return s.orderItems }
func (s txReposStub) Carts() repo.CartRepository           { return s.carts }
func (s txReposStub) CartItems() repo.CartItemRepository   { return s.cartItems }
func (s txReposStub) Products() repo.ProductRepository     { return s.products }

type txManagerStub struct {
	repos txReposStub
}

func (s txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s.repos)
}

func newTxStub() (txManagerStub, txReposStub) {
	r := txReposStub{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		products:   new(ProductRepoMock),
	}
	return txManagerStub{repos: r}, r
}

// =====================
// Checkout
// =====================

func TestOrderUsecase_Checkout_MissingIdempotencyKey(t *testing.T) {
	tx, _ := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "  "})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestOrderUsecase_Checkout_EmptyCart(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindByUserIDForUpdate", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestOrderUsecase_Checkout_EmptyCartItems(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindByUserIDForUpdate", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_SkipsUnavailableItems(t *testing.T) {
	//カート表示と同じ方針。非公開・削除済みの明細は注文から除外する
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindByUserIDForUpdate", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 10, Quantity: 2},
		{ID: 2, CartID: 5, ProductID: 11, Quantity: 1},
		{ID: 3, CartID: 5, ProductID: 12, Quantity: 1},
	}, nil)
	r.products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Title: "Mug", Price: 500, IsActive: true}, nil)
	r.products.On("FindByID", mock.Anything, int64(11)).Return(model.Product{ID: 11, IsActive: false}, nil)
	r.products.On("FindByID", mock.Anything, int64(12)).Return(model.Product{}, repo.ErrNotFound)

	r.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		//購入可能な明細だけで合計する
		return o.TotalPrice == 1000
	})).Return(int64(77), nil)
	r.orderItems.On("CreateBulk", mock.Anything, int64(77), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].ProductID == 10
	})).Return(nil)
	r.carts.On("Clear", mock.Anything, int64(5)).Return(nil)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), out.TotalPrice)
	assert.Equal(t, 1, len(out.Items))

	r.orders.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
	r.carts.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_AllItemsUnavailable(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindByUserIDForUpdate", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 10, Quantity: 1},
	}, nil)
	r.products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, IsActive: false}, nil)

	//何も買えないなら空カート扱い
	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_DuplicateKeyReturnsExistingOrder(t *testing.T) {
	//同時に同じキーで作成した負け側は、勝った注文をそのまま返す
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Order{}, false, nil).Once()
	r.carts.On("FindByUserIDForUpdate", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 10, Quantity: 1},
	}, nil)
	r.products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Title: "Mug", Price: 500, IsActive: true}, nil)

	r.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), repo.ErrDuplicateKey)
	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Order{ID: 77, UserID: 1, TotalPrice: 500}, true, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(77)).Return([]model.OrderItem{
		{OrderID: 77, ProductID: 10, TitleSnapshot: "Mug", UnitPriceSnapshot: 500, Quantity: 1},
	}, nil)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)

	//負け側は明細もクリアも書かない
	r.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	r.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_Success_SnapshotsAndClearsCart(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindByUserIDForUpdate", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 10, Quantity: 2},
		{ID: 2, CartID: 5, ProductID: 11, Quantity: 1},
	}, nil)
	r.products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Title: "Mug", Price: 500, IsActive: true}, nil)
	r.products.On("FindByID", mock.Anything, int64(11)).Return(model.Product{ID: 11, Title: "Lamp", Price: 2000, IsActive: true}, nil)

	r.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		// 500*2 + 2000*1
		return o.UserID == 1 && o.TotalPrice == 3000 && o.IdempotencyKey == "key-1"
	})).Return(int64(77), nil)

	r.orderItems.On("CreateBulk", mock.Anything, int64(77), mock.MatchedBy(func(items []model.OrderItem) bool {
		if len(items) != 2 {
			return false
		}
		//その時点のtitle/priceがスナップショットされること
		return items[0].TitleSnapshot == "Mug" && items[0].UnitPriceSnapshot == 500 && items[0].Quantity == 2
	})).Return(nil)

	r.carts.On("Clear", mock.Anything, int64(5)).Return(nil)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)
	assert.Equal(t, int64(3000), out.TotalPrice)
	assert.Equal(t, 2, len(out.Items))

	r.orders.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
	r.carts.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_IdempotentReplay(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	existing := model.Order{ID: 77, UserID: 1, TotalPrice: 3000, CreatedAt: time.Now()}
	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(existing, true, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(77)).Return([]model.OrderItem{
		{OrderID: 77, ProductID: 10, TitleSnapshot: "Mug", UnitPriceSnapshot: 500, Quantity: 2},
	}, nil)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	//同じキーなら同じ注文が返る。新規作成はしない
	assert.Equal(t, int64(77), out.ID)

	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.carts.AssertNotCalled(t, "FindByUserIDForUpdate", mock.Anything, mock.Anything)
}

// =====================
// List / Detail
// =====================

func TestOrderUsecase_ListMyOrders(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("ListByUserID", mock.Anything, int64(1)).Return([]model.Order{
		{ID: 2, UserID: 1, TotalPrice: 2000},
		{ID: 1, UserID: 1, TotalPrice: 1000},
	}, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(2)).Return([]model.OrderItem{{OrderID: 2, ProductID: 11, Quantity: 1}}, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{{OrderID: 1, ProductID: 10, Quantity: 2}}, nil)

	outs, err := uc.ListMyOrders(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))
	assert.Equal(t, int64(2), outs[0].ID)
	assert.Equal(t, 1, len(outs[0].Items))
}

func TestOrderUsecase_GetMyOrderDetail_ForeignOrderIsNotFound(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	//他人の注文は存在扱いにしない（404）
	r.orders.On("FindByID", mock.Anything, int64(9)).Return(model.Order{ID: 9, UserID: 2}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), 1, 9)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestOrderUsecase_GetMyOrderDetail_Success(t *testing.T) {
	tx, r := newTxStub()
	uc := usecase.NewOrderUsecase(tx)

	r.orders.On("FindByID", mock.Anything, int64(9)).Return(model.Order{ID: 9, UserID: 1, TotalPrice: 500}, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(9)).Return([]model.OrderItem{
		{OrderID: 9, ProductID: 10, TitleSnapshot: "Mug", UnitPriceSnapshot: 500, Quantity: 1},
	}, nil)

	out, err := uc.GetMyOrderDetail(context.Background(), 1, 9)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, "Mug", out.Items[0].Title)
}
