package order

import (
	"time"
)

// OrderStatus 订单状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 状态值1-9递增,主干流转方向与数值方向一致
type OrderStatus int

const (
	OrderStatusCreated    OrderStatus = 1 // 已创建(订单落库,未发起支付)
	OrderStatusPending    OrderStatus = 2 // 待支付(支付意向已创建)
	OrderStatusPaid       OrderStatus = 3 // 已支付
	OrderStatusProcessing OrderStatus = 4 // 处理中
	OrderStatusPacked     OrderStatus = 5 // 已打包
	OrderStatusShipped    OrderStatus = 6 // 已发货
	OrderStatusDelivered  OrderStatus = 7 // 已送达(终态)
	OrderStatusCancelled  OrderStatus = 8 // 已取消(终态)
	OrderStatusRefunded   OrderStatus = 9 // 已退款(终态)
)

// String 实现Stringer接口(方便日志输出)
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusCreated:
		return "已创建"
	case OrderStatusPending:
		return "待支付"
	case OrderStatusPaid:
		return "已支付"
	case OrderStatusProcessing:
		return "处理中"
	case OrderStatusPacked:
		return "已打包"
	case OrderStatusShipped:
		return "已发货"
	case OrderStatusDelivered:
		return "已送达"
	case OrderStatusCancelled:
		return "已取消"
	case OrderStatusRefunded:
		return "已退款"
	default:
		return "未知状态"
	}
}

// IsTerminal 是否终态
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根,OrderItem是子实体
// 2. Total冗余存储(避免重复计算,防止改价攻击);
//    不变式:Total == sum(Quantity × UnitPrice)
// 3. UserID为0表示游客订单,此时GuestToken非空
// 4. 订单永不删除(审计追溯),取消通过状态表达
type Order struct {
	ID           uint
	OrderNo      string      // 订单号(业务主键,全局唯一)
	UserID       uint        // 买家用户ID(游客为0)
	GuestToken   string      // 游客令牌(登录用户为空)
	Total        int64       // 订单总金额(便士),冗余字段
	Currency     string      // 货币代码(默认GBP)
	Status       OrderStatus // 订单状态
	Items        []OrderItem // 订单明细(聚合内的子实体)
	CancelReason string      // 取消原因
	CancelledAt  *time.Time  // 取消时间
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem 订单明细项
// 设计说明:
// 1. 不是独立聚合根,必须通过Order访问
// 2. UnitPrice记录"快照时的价格",商家改价不影响历史订单
// 3. 不直接关联Product对象,只保存ProductID(避免跨聚合引用)
// 4. 订单进入Paid后明细不可变
type OrderItem struct {
	ID        uint
	OrderID   uint   // 所属订单ID
	ProductID uint   // 商品ID
	Title     string // 快照时的商品名
	Quantity  int    // 购买数量
	UnitPrice int64  // 快照时单价(便士)
}

// DefaultCurrency 默认货币
const DefaultCurrency = "GBP"

// NewOrder 创建新订单(工厂方法)
// 业务规则:
// - 明细不能为空(返回ErrEmptyOrder)
// - 每行数量必须>=1
// - 总金额由明细计算,不信任外部传入
func NewOrder(orderNo string, userID uint, guestToken string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	o := &Order{
		OrderNo:    orderNo,
		UserID:     userID,
		GuestToken: guestToken,
		Currency:   DefaultCurrency,
		Status:     OrderStatusCreated,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	o.Total = o.CalculateTotal()
	return o, nil
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机设计,防止非法状态跳转
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		// 已创建→待支付(意向已建)/已支付(捕获成功)/已取消
		OrderStatusCreated: {OrderStatusPending, OrderStatusPaid, OrderStatusCancelled},
		// 待支付→已支付/已取消
		OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
		// 已支付→处理中/已打包/已取消(需退款)/已退款
		OrderStatusPaid: {OrderStatusProcessing, OrderStatusPacked, OrderStatusCancelled, OrderStatusRefunded},
		// 处理中→已打包/已取消/已退款
		OrderStatusProcessing: {OrderStatusPacked, OrderStatusCancelled, OrderStatusRefunded},
		// 已打包→已发货/已取消/已退款
		OrderStatusPacked: {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
		// 已发货→已送达/已取消/已退款
		OrderStatusShipped: {OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded},
		// 终态无后续状态
		OrderStatusDelivered: {},
		OrderStatusCancelled: {},
		OrderStatusRefunded:  {},
	}

	allowedTargets, exists := transitions[o.Status]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target OrderStatus) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPending 标记待支付(支付意向创建成功后)
func (o *Order) MarkPending() error {
	return o.TransitionTo(OrderStatusPending)
}

// MarkPaid 标记已支付(支付捕获成功)
// 幂等:订单已是Paid时重复调用是no-op而非错误,
// 容忍网关webhook的重复投递
func (o *Order) MarkPaid() error {
	if o.Status == OrderStatusPaid {
		return nil
	}
	return o.TransitionTo(OrderStatusPaid)
}

// Pack 打包(仓库操作,前提:库存已扣减)
func (o *Order) Pack() error {
	return o.TransitionTo(OrderStatusPacked)
}

// Ship 发货(前提:物流单已创建)
func (o *Order) Ship() error {
	return o.TransitionTo(OrderStatusShipped)
}

// Deliver 确认送达
func (o *Order) Deliver() error {
	return o.TransitionTo(OrderStatusDelivered)
}

// Cancel 取消订单
// 守卫规则由应用层校验:存在Completed支付时必须走退款路径
func (o *Order) Cancel(reason string) error {
	if err := o.TransitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelReason = reason
	o.CancelledAt = &now
	return nil
}

// Refund 标记已退款(前提:库存回补已执行)
func (o *Order) Refund() error {
	return o.TransitionTo(OrderStatusRefunded)
}

// CalculateTotal 计算订单总金额
// 用于创建时生成Total,以及校验冗余字段是否被篡改
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
// 权限校验,防止用户访问他人订单
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID != 0 && o.UserID == userID
}

// IsGuestOrder 是否游客订单
func (o *Order) IsGuestOrder() bool {
	return o.UserID == 0
}
