package checkout

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/xiebiao/bookshop/internal/application/payment"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/payment"
	"github.com/xiebiao/bookshop/internal/domain/product"
)

// ---- 内存实现 ----

type memCartStore struct {
	carts map[string]*cart.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*cart.Cart)}
}

func (s *memCartStore) Get(ctx context.Context, owner cart.Owner) (*cart.Cart, error) {
	c, ok := s.carts[owner.Key()]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c, nil
}

func (s *memCartStore) Save(ctx context.Context, c *cart.Cart) error {
	s.carts[c.Owner.Key()] = c
	return nil
}

func (s *memCartStore) Clear(ctx context.Context, owner cart.Owner) error {
	delete(s.carts, owner.Key())
	return nil
}

type memProductRepo struct {
	products map[uint]*product.Product
}

func (r *memProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (r *memProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	return nil, 0, nil
}

func (r *memProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	return nil, nil
}

func (r *memProductRepo) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

type memOrderRepo struct {
	orders map[uint]*order.Order
	nextID uint
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uint]*order.Order)}
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	for _, existing := range r.orders {
		if existing.OrderNo == o.OrderNo {
			return order.ErrOrderNoGenerate
		}
	}
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) Update(ctx context.Context, o *order.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) ListByStatus(ctx context.Context, status order.OrderStatus, page, pageSize int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

// coordinatorStub 支付协调器桩
// 捕获成功时把订单推进到Paid,模拟真实协调器的侧效应
type coordinatorStub struct {
	orders *memOrderRepo

	createErr  error
	captureErr error

	nextIntent int
	intents    map[string]uint // intentID -> orderID
}

func newCoordinatorStub(orders *memOrderRepo) *coordinatorStub {
	return &coordinatorStub{orders: orders, intents: make(map[string]uint)}
}

func (c *coordinatorStub) CreateIntent(ctx context.Context, orderID uint) (*apppayment.CreateIntentResult, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.nextIntent++
	intentID := fmt.Sprintf("PAY-%03d", c.nextIntent)
	c.intents[intentID] = orderID

	o, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == order.OrderStatusCreated {
		if err := o.MarkPending(); err != nil {
			return nil, err
		}
	}
	return &apppayment.CreateIntentResult{
		IntentID:    intentID,
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=" + intentID,
	}, nil
}

func (c *coordinatorStub) Capture(ctx context.Context, intentID string) (*apppayment.CaptureResult, error) {
	if c.captureErr != nil {
		return nil, c.captureErr
	}
	orderID, ok := c.intents[intentID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	o, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkPaid(); err != nil {
		return nil, err
	}
	return &apppayment.CaptureResult{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		OrderStatus:   o.Status,
		PaymentStatus: payment.PaymentStatusCompleted,
		TransactionID: "TXN-" + intentID,
	}, nil
}

// ---- 测试脚手架 ----

type checkoutFixture struct {
	carts        *memCartStore
	products     *memProductRepo
	orders       *memOrderRepo
	coordinator  *coordinatorStub
	orchestrator *Orchestrator
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		carts:    newMemCartStore(),
		products: &memProductRepo{products: make(map[uint]*product.Product)},
		orders:   newMemOrderRepo(),
	}
	f.coordinator = newCoordinatorStub(f.orders)
	snapshotter := cart.NewSnapshotter(f.carts, f.products)
	f.orchestrator = NewOrchestrator(snapshotter, f.carts, f.orders, f.coordinator)
	return f
}

// seedTwoItemCart 两件£12.99 + 一件£8.99 = £34.97
func (f *checkoutFixture) seedTwoItemCart(t *testing.T, owner cart.Owner) {
	t.Helper()
	f.products.products[1] = &product.Product{
		ID: 1, SKU: "SKU-001", Title: "The Go Programming Language", Price: 1299, Stock: 5, IsActive: true,
	}
	f.products.products[2] = &product.Product{
		ID: 2, SKU: "SKU-002", Title: "Learning Go", Price: 899, Stock: 3, IsActive: true,
	}

	c := &cart.Cart{Owner: owner}
	require.NoError(t, c.AddItem(1, 2))
	require.NoError(t, c.AddItem(2, 1))
	require.NoError(t, f.carts.Save(context.Background(), c))
}

// ---- StartCheckout ----

func TestStartCheckout_TwoItemCart(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfUser(7)
	f.seedTwoItemCart(t, owner)

	result, err := f.orchestrator.StartCheckout(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, int64(3497), result.Total)
	assert.Equal(t, "GBP", result.Currency)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{13}-\d{5}$`), result.OrderNo)
	assert.NotEmpty(t, result.IntentID)
	assert.Contains(t, result.ApprovalURL, result.IntentID)

	// 订单已落库,明细来自快照(当前价)
	o, err := f.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(1299), o.Items[0].UnitPrice)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, o.Total, o.CalculateTotal())

	// 此阶段购物车保留(支付未完成)
	_, err = f.carts.Get(context.Background(), owner)
	assert.NoError(t, err)
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.orchestrator.StartCheckout(context.Background(), cart.OwnerOfUser(7))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
	assert.Empty(t, f.orders.orders)
}

func TestStartCheckout_InactiveProduct(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfUser(7)
	f.seedTwoItemCart(t, owner)
	f.products.products[2].IsActive = false

	_, err := f.orchestrator.StartCheckout(context.Background(), owner)
	assert.ErrorIs(t, err, product.ErrProductInactive)
	assert.Empty(t, f.orders.orders)
}

func TestStartCheckout_IntentFailureCancelsOrder(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfUser(7)
	f.seedTwoItemCart(t, owner)
	f.coordinator.createErr = payment.ErrGatewayUnavailable

	_, err := f.orchestrator.StartCheckout(context.Background(), owner)
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)

	// Saga补偿:不留下可被后续捕获命中的半成品订单
	require.Len(t, f.orders.orders, 1)
	for _, o := range f.orders.orders {
		assert.Equal(t, order.OrderStatusCancelled, o.Status)
	}

	// 购物车保留,用户可直接重试
	_, err = f.carts.Get(context.Background(), owner)
	assert.NoError(t, err)
}

// ---- CompleteCheckout ----

func TestCompleteCheckout_ClearsCart(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfUser(7)
	f.seedTwoItemCart(t, owner)

	started, err := f.orchestrator.StartCheckout(context.Background(), owner)
	require.NoError(t, err)

	completed, err := f.orchestrator.CompleteCheckout(context.Background(), started.IntentID)
	require.NoError(t, err)
	assert.Equal(t, started.OrderID, completed.OrderID)
	assert.Equal(t, started.OrderNo, completed.OrderNo)

	o, err := f.orders.FindByID(context.Background(), started.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, o.Status)

	// 支付成功后清空购物车
	_, err = f.carts.Get(context.Background(), owner)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestCompleteCheckout_FailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfUser(7)
	f.seedTwoItemCart(t, owner)

	started, err := f.orchestrator.StartCheckout(context.Background(), owner)
	require.NoError(t, err)

	f.coordinator.captureErr = payment.ErrGatewayTimeout
	_, err = f.orchestrator.CompleteCheckout(context.Background(), started.IntentID)
	assert.ErrorIs(t, err, payment.ErrGatewayTimeout)

	// 失败时购物车刻意保留
	c, err := f.carts.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, c.TotalQuantity())
}

func TestCompleteCheckout_UnknownIntent(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfUser(7)
	f.seedTwoItemCart(t, owner)
	_, err := f.orchestrator.StartCheckout(context.Background(), owner)
	require.NoError(t, err)

	_, err = f.orchestrator.CompleteCheckout(context.Background(), "PAY-does-not-exist")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestCheckout_GuestFlow(t *testing.T) {
	f := newCheckoutFixture()
	owner := cart.OwnerOfGuest("g-7f3a")
	f.seedTwoItemCart(t, owner)

	started, err := f.orchestrator.StartCheckout(context.Background(), owner)
	require.NoError(t, err)

	o, err := f.orders.FindByID(context.Background(), started.OrderID)
	require.NoError(t, err)
	assert.True(t, o.IsGuestOrder())
	assert.Equal(t, "g-7f3a", o.GuestToken)

	_, err = f.orchestrator.CompleteCheckout(context.Background(), started.IntentID)
	require.NoError(t, err)

	// 游客购物车按令牌清空
	_, err = f.carts.Get(context.Background(), owner)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}
