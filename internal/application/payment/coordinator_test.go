package payment

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/payment"
	"github.com/xiebiao/bookshop/internal/domain/product"
)

// ---- 内存仓储(带事务快照回滚) ----

type memStore struct {
	products map[uint]*product.Product
	orders   map[uint]*order.Order
	payments map[uint]*payment.Payment
	ledger   []*inventory.LedgerEntry

	nextOrderID   uint
	nextPaymentID uint
	nextLedgerID  uint
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uint]*product.Product),
		orders:   make(map[uint]*order.Order),
		payments: make(map[uint]*payment.Payment),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.nextOrderID = s.nextOrderID
	c.nextPaymentID = s.nextPaymentID
	c.nextLedgerID = s.nextLedgerID
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	for id, p := range s.payments {
		cp := *p
		c.payments[id] = &cp
	}
	c.ledger = append([]*inventory.LedgerEntry(nil), s.ledger...)
	return c
}

func cloneOrder(o *order.Order) *order.Order {
	co := *o
	co.Items = append([]order.OrderItem(nil), o.Items...)
	return &co
}

// memTx 模拟事务边界:执行失败时把整个存储回滚到执行前的快照
type memTx struct {
	store *memStore
}

func (t *memTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := t.store.clone()
	if err := fn(ctx); err != nil {
		*t.store = *snapshot
		return err
	}
	return nil
}

type memProductRepo struct {
	store *memStore
}

func (r *memProductRepo) Create(ctx context.Context, p *product.Product) error {
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (r *memProductRepo) Update(ctx context.Context, p *product.Product) error {
	if _, ok := r.store.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	return nil, 0, nil
}

func (r *memProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	var result []*product.Product
	for _, p := range r.store.products {
		if p.IsActive && p.IsLowStock() {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memProductRepo) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

type memOrderRepo struct {
	store *memStore
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	for _, existing := range r.store.orders {
		if existing.OrderNo == o.OrderNo {
			return order.ErrOrderNoGenerate
		}
	}
	r.store.nextOrderID++
	o.ID = r.store.nextOrderID
	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	for _, o := range r.store.orders {
		if o.OrderNo == orderNo {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) Update(ctx context.Context, o *order.Order) error {
	if _, ok := r.store.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var result []*order.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			result = append(result, cloneOrder(o))
		}
	}
	return result, int64(len(result)), nil
}

func (r *memOrderRepo) ListByStatus(ctx context.Context, status order.OrderStatus, page, pageSize int) ([]*order.Order, int64, error) {
	var result []*order.Order
	for _, o := range r.store.orders {
		if o.Status == status {
			result = append(result, cloneOrder(o))
		}
	}
	return result, int64(len(result)), nil
}

type memPaymentRepo struct {
	store      *memStore
	failCreate error // 注入落库失败(降级路径测试)
}

func (r *memPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.store.payments {
		if existing.IntentID == p.IntentID {
			return payment.ErrDuplicatePayment
		}
	}
	r.store.nextPaymentID++
	p.ID = r.store.nextPaymentID
	cp := *p
	r.store.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	p, ok := r.store.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) FindByIntentID(ctx context.Context, intentID string) (*payment.Payment, error) {
	for _, p := range r.store.payments {
		if p.IntentID == intentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *memPaymentRepo) FindByOrderID(ctx context.Context, orderID uint) ([]*payment.Payment, error) {
	var result []*payment.Payment
	for _, p := range r.store.payments {
		if p.OrderID == orderID {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *memPaymentRepo) FindActiveByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	all, _ := r.FindByOrderID(ctx, orderID)
	for _, p := range all {
		if p.Status == payment.PaymentStatusPending || p.Status == payment.PaymentStatusCompleted {
			return p, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *memPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	if _, ok := r.store.payments[p.ID]; !ok {
		return payment.ErrPaymentNotFound
	}
	cp := *p
	r.store.payments[p.ID] = &cp
	return nil
}

type memLedgerRepo struct {
	store *memStore
}

func (r *memLedgerRepo) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	r.store.nextLedgerID++
	entry.ID = r.store.nextLedgerID
	ce := *entry
	r.store.ledger = append(r.store.ledger, &ce)
	return nil
}

func (r *memLedgerRepo) ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*inventory.LedgerEntry, int64, error) {
	var result []*inventory.LedgerEntry
	for _, e := range r.store.ledger {
		if e.ProductID == productID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memLedgerRepo) ListByReference(ctx context.Context, referenceType string, referenceID uint) ([]*inventory.LedgerEntry, error) {
	var result []*inventory.LedgerEntry
	for _, e := range r.store.ledger {
		if e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *memLedgerRepo) ListRecent(ctx context.Context, limit int) ([]*inventory.LedgerEntry, error) {
	if len(r.store.ledger) <= limit {
		return r.store.ledger, nil
	}
	return r.store.ledger[len(r.store.ledger)-limit:], nil
}

// ---- 网关桩 ----

type gatewayStub struct {
	createCalls  int
	captureCalls int
	getCalls     int

	createErr  error
	captureErr error
	getStatus  payment.IntentStatus // GetIntent返回的状态(对账测试)
}

func (g *gatewayStub) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	id := fmt.Sprintf("PAY-%03d", g.createCalls)
	return &payment.Intent{
		IntentID:    id,
		Status:      payment.IntentStatusCreated,
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=" + id,
	}, nil
}

func (g *gatewayStub) Capture(ctx context.Context, intentID string) (*payment.CaptureResult, error) {
	g.captureCalls++
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	return &payment.CaptureResult{
		IntentID:      intentID,
		Status:        payment.IntentStatusCompleted,
		TransactionID: "TXN-" + intentID,
		PayerEmail:    "buyer@example.com",
		PayerName:     "Ada Lovelace",
	}, nil
}

func (g *gatewayStub) GetIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	g.getCalls++
	status := g.getStatus
	if status == "" {
		status = payment.IntentStatusCreated
	}
	intent := &payment.Intent{IntentID: intentID, Status: status}
	if status == payment.IntentStatusCompleted {
		intent.TransactionID = "TXN-" + intentID
		intent.PayerEmail = "buyer@example.com"
		intent.PayerName = "Ada Lovelace"
	}
	return intent, nil
}

type eventRecorder struct {
	published []string
}

func (e *eventRecorder) Publish(routingKey string, message interface{}) error {
	e.published = append(e.published, routingKey)
	return nil
}

func (e *eventRecorder) count(routingKey string) int {
	n := 0
	for _, key := range e.published {
		if key == routingKey {
			n++
		}
	}
	return n
}

// ---- 测试脚手架 ----

type fixture struct {
	store       *memStore
	products    *memProductRepo
	orders      *memOrderRepo
	payments    *memPaymentRepo
	ledger      *memLedgerRepo
	gateway     *gatewayStub
	events      *eventRecorder
	coordinator *Coordinator
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:    store,
		products: &memProductRepo{store: store},
		orders:   &memOrderRepo{store: store},
		payments: &memPaymentRepo{store: store},
		ledger:   &memLedgerRepo{store: store},
		gateway:  &gatewayStub{},
		events:   &eventRecorder{},
	}
	adjuster := inventory.NewAdjuster(f.products, f.ledger)
	f.coordinator = NewCoordinator(f.orders, f.payments, adjuster, f.gateway, &memTx{store: store}, f.events)
	return f
}

func (f *fixture) seedProduct(t *testing.T, id uint, title string, price int64, stock int) {
	t.Helper()
	f.store.products[id] = &product.Product{
		ID:       id,
		SKU:      fmt.Sprintf("SKU-%03d", id),
		Title:    title,
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
}

func (f *fixture) seedOrder(t *testing.T, userID uint, items ...order.OrderItem) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.GenerateOrderNo(), userID, "", items)
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

// startIntent 走真实CreateIntent流程,落下Pending支付
func (f *fixture) startIntent(t *testing.T, orderID uint) string {
	t.Helper()
	result, err := f.coordinator.CreateIntent(context.Background(), orderID)
	require.NoError(t, err)
	require.False(t, result.Degraded)
	return result.IntentID
}

// twoItemOrder 两件£12.99 + 一件£8.99 = £34.97
func (f *fixture) twoItemOrder(t *testing.T) *order.Order {
	t.Helper()
	f.seedProduct(t, 1, "The Go Programming Language", 1299, 5)
	f.seedProduct(t, 2, "Learning Go", 899, 3)
	return f.seedOrder(t, 7,
		order.OrderItem{ProductID: 1, Title: "The Go Programming Language", Quantity: 2, UnitPrice: 1299},
		order.OrderItem{ProductID: 2, Title: "Learning Go", Quantity: 1, UnitPrice: 899},
	)
}

// ---- CreateIntent ----

func TestCreateIntent_PersistsPendingPaymentBeforeReturn(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)

	result, err := f.coordinator.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.IntentID)
	assert.Contains(t, result.ApprovalURL, result.IntentID)
	assert.False(t, result.Degraded)

	// 返回前支付记录必须已落库,金额与订单一致
	p, err := f.payments.FindByIntentID(context.Background(), result.IntentID)
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentStatusPending, p.Status)
	assert.Equal(t, int64(3497), p.Amount)
	assert.Equal(t, o.ID, p.OrderID)

	// 订单推进到待支付
	saved, err := f.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPending, saved.Status)
}

func TestCreateIntent_ReusesExistingPendingIntent(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	first := f.startIntent(t, o.ID)

	// 重复发起不应再调网关,直接复用
	result, err := f.coordinator.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, first, result.IntentID)
	assert.Equal(t, 1, f.gateway.createCalls)
}

func TestCreateIntent_RejectsPaidOrder(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)
	_, err := f.coordinator.Capture(context.Background(), intentID)
	require.NoError(t, err)

	_, err = f.coordinator.CreateIntent(context.Background(), o.ID)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
}

func TestCreateIntent_DegradedWhenPersistFails(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	f.payments.failCreate = fmt.Errorf("connection refused")

	// 网关成功但本地落库失败:交易不能丢,降级返回并触发对账
	result, err := f.coordinator.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.NotEmpty(t, result.IntentID)
	assert.NotEmpty(t, result.ApprovalURL)
	assert.Equal(t, 1, f.events.count(EventReconciliationRequired))
}

// ---- Capture ----

func TestCapture_SettlesOrderAndStock(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)

	result, err := f.coordinator.Capture(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, result.OrderStatus)
	assert.Equal(t, payment.PaymentStatusCompleted, result.PaymentStatus)
	assert.Equal(t, "TXN-"+intentID, result.TransactionID)

	// 订单总额不变式:Paid订单 Total == Σ qty × price
	saved, err := f.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, saved.Status)
	assert.Equal(t, int64(3497), saved.Total)
	assert.Equal(t, saved.Total, saved.CalculateTotal())

	// 每行一条出库流水,带符号差值与订单行数量一致
	entries, err := f.ledger.ListByReference(context.Background(), "Order", o.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, inventory.ChangeTypeStockOut, e.ChangeType)
	}

	// 库存按行扣减
	p1, _ := f.products.FindByID(context.Background(), 1)
	p2, _ := f.products.FindByID(context.Background(), 2)
	assert.Equal(t, 3, p1.Stock)
	assert.Equal(t, 2, p2.Stock)

	assert.Equal(t, 1, f.events.count(EventOrderPaid))
}

func TestCapture_PublishesLowStockEvent(t *testing.T) {
	f := newFixture()
	// 出库后库存5→3,正好到达阈值3触发告警;另一件2→1仍高于阈值0,不告警
	f.seedProduct(t, 1, "The Go Programming Language", 1299, 5)
	f.seedProduct(t, 2, "Learning Go", 899, 2)
	f.store.products[1].LowStockThreshold = 3
	o := f.seedOrder(t, 7,
		order.OrderItem{ProductID: 1, Title: "The Go Programming Language", Quantity: 2, UnitPrice: 1299},
		order.OrderItem{ProductID: 2, Title: "Learning Go", Quantity: 1, UnitPrice: 899},
	)
	intentID := f.startIntent(t, o.ID)

	_, err := f.coordinator.Capture(context.Background(), intentID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.events.count(EventStockLow))
}

func TestCapture_IdempotentOnDuplicateWebhook(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)

	first, err := f.coordinator.Capture(context.Background(), intentID)
	require.NoError(t, err)

	// 重复webhook:返回同一终态,不再调网关,不产生新流水
	second, err := f.coordinator.Capture(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, order.OrderStatusPaid, second.OrderStatus)
	assert.Equal(t, 1, f.gateway.captureCalls)

	entries, err := f.ledger.ListByReference(context.Background(), "Order", o.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	p1, _ := f.products.FindByID(context.Background(), 1)
	assert.Equal(t, 3, p1.Stock)
}

func TestCapture_UnknownIntentID(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	f.startIntent(t, o.ID)

	_, err := f.coordinator.Capture(context.Background(), "PAY-does-not-exist")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)

	// 不产生任何变更
	saved, _ := f.orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.OrderStatusPending, saved.Status)
	assert.Empty(t, f.store.ledger)
	p1, _ := f.products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, p1.Stock)
}

func TestCapture_InsufficientStockAbortsSettlement(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, 1, "The Go Programming Language", 1299, 5)
	f.seedProduct(t, 2, "Learning Go", 899, 0) // 捕获前被其他订单清空
	o := f.seedOrder(t, 7,
		order.OrderItem{ProductID: 1, Title: "The Go Programming Language", Quantity: 2, UnitPrice: 1299},
		order.OrderItem{ProductID: 2, Title: "Learning Go", Quantity: 1, UnitPrice: 899},
	)
	intentID := f.startIntent(t, o.ID)

	_, err := f.coordinator.Capture(context.Background(), intentID)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// 整体回滚:第一行的扣减也不保留,订单不进Paid
	saved, _ := f.orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.OrderStatusPending, saved.Status)
	p1, _ := f.products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, p1.Stock)
	assert.Empty(t, f.store.ledger)

	// 网关侧已扣款:必须触发对账
	assert.Equal(t, 1, f.events.count(EventReconciliationRequired))
}

func TestCapture_TimeoutIsNotFailure(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)
	f.gateway.captureErr = payment.ErrGatewayTimeout

	_, err := f.coordinator.Capture(context.Background(), intentID)
	assert.ErrorIs(t, err, payment.ErrGatewayTimeout)

	// 结果未知:支付不得标记为失败,等待重试或对账
	p, err := f.payments.FindByIntentID(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentStatusPending, p.Status)

	saved, _ := f.orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.OrderStatusPending, saved.Status)
	assert.Empty(t, f.store.ledger)
}

func TestCapture_RejectedMarksPaymentFailed(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)
	f.gateway.captureErr = payment.ErrGatewayRejected

	_, err := f.coordinator.Capture(context.Background(), intentID)
	assert.ErrorIs(t, err, payment.ErrGatewayRejected)

	// 确定性拒绝:支付进Failed,订单停在Pending可重新发起
	p, err := f.payments.FindByIntentID(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentStatusFailed, p.Status)

	saved, _ := f.orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.OrderStatusPending, saved.Status)
	assert.Empty(t, f.store.ledger)
}

func TestCapture_LastUnitOnlyOneOrderSucceeds(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, 1, "The Go Programming Language", 1299, 1)

	first := f.seedOrder(t, 7, order.OrderItem{ProductID: 1, Title: "The Go Programming Language", Quantity: 1, UnitPrice: 1299})
	second := f.seedOrder(t, 8, order.OrderItem{ProductID: 1, Title: "The Go Programming Language", Quantity: 1, UnitPrice: 1299})
	firstIntent := f.startIntent(t, first.ID)
	secondIntent := f.startIntent(t, second.ID)

	_, err := f.coordinator.Capture(context.Background(), firstIntent)
	require.NoError(t, err)

	// 最后一件已被第一单拿走,第二单捕获必须硬中止
	_, err = f.coordinator.Capture(context.Background(), secondIntent)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	p1, _ := f.products.FindByID(context.Background(), 1)
	assert.Equal(t, 0, p1.Stock)
	entries, _ := f.ledger.ListByReference(context.Background(), "Order", first.ID)
	assert.Len(t, entries, 1)
	entries, _ = f.ledger.ListByReference(context.Background(), "Order", second.ID)
	assert.Empty(t, entries)
}

// ---- ReconcileByOrder ----

func TestReconcileByOrder_SettlesPendingPaymentCapturedAtGateway(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)

	// 网关侧已COMPLETED(捕获回调丢失),本地仍Pending
	f.gateway.getStatus = payment.IntentStatusCompleted

	result, err := f.coordinator.ReconcileByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, result.OrderStatus)
	assert.Equal(t, payment.PaymentStatusCompleted, result.PaymentStatus)

	// 补齐侧效应时不重复调用网关Capture
	assert.Equal(t, 0, f.gateway.captureCalls)

	// 补齐的支付记录带上网关侧交易参照,不能留空
	assert.Equal(t, "TXN-"+intentID, result.TransactionID)

	p, _ := f.payments.FindByIntentID(context.Background(), intentID)
	assert.Equal(t, payment.PaymentStatusCompleted, p.Status)
	assert.Equal(t, "TXN-"+intentID, p.TransactionID)
	p1, _ := f.products.FindByID(context.Background(), 1)
	assert.Equal(t, 3, p1.Stock)
}

func TestReconcileByOrder_AlreadyCompleted(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	intentID := f.startIntent(t, o.ID)
	_, err := f.coordinator.Capture(context.Background(), intentID)
	require.NoError(t, err)

	result, err := f.coordinator.ReconcileByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentStatusCompleted, result.PaymentStatus)
	assert.Equal(t, 0, f.gateway.getCalls)
}

func TestReconcileByOrder_NoPayments(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)

	_, err := f.coordinator.ReconcileByOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestReconcileByOrder_GatewayStillPending(t *testing.T) {
	f := newFixture()
	o := f.twoItemOrder(t)
	f.startIntent(t, o.ID)
	f.gateway.getStatus = payment.IntentStatusCreated

	// 网关侧也未完成:无可补齐的支付
	_, err := f.coordinator.ReconcileByOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)

	p1, _ := f.products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, p1.Stock)
}
