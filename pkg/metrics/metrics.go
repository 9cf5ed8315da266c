// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型速查：
// - Counter（计数器）：只增不减（请求总数、结算总数、错误总数）
// - Gauge（仪表盘）：可增可减的瞬时值（处理中请求数、熔断器状态）
// - Histogram（直方图）：观测值的分布，自动计算分位数（耗时、金额）
//
// 命名规范：
// - Counter以`_total`结尾
// - Histogram以单位结尾（`_seconds`、`_pence`）
// - 避免高基数标签（不要用order_no/user_id作为标签）
//
// 使用示例：
//
//	metrics.InitMetrics()
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/checkout）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 结算业务指标

	// CheckoutsStartedTotal 发起结算总数（Counter）
	CheckoutsStartedTotal prometheus.Counter

	// CheckoutsCompletedTotal 完成结算总数（Counter）
	CheckoutsCompletedTotal prometheus.Counter

	// CheckoutsFailedTotal 结算失败总数（Counter）
	// 标签：reason（empty_cart/insufficient_stock/gateway/internal）
	CheckoutsFailedTotal *prometheus.CounterVec

	// CheckoutDuration 结算耗时（Histogram）
	CheckoutDuration prometheus.Histogram

	// OrderAmountPence 订单金额分布（Histogram，单位便士）
	OrderAmountPence prometheus.Histogram

	// 支付指标

	// PaymentCapturesTotal 支付捕获总数（Counter）
	// 标签：result（completed/duplicate/timeout/rejected/reconciliation）
	PaymentCapturesTotal *prometheus.CounterVec

	// PaymentCaptureDuration 支付捕获耗时（Histogram）
	PaymentCaptureDuration prometheus.Histogram

	// GatewayRequestsTotal 网关请求总数（Counter）
	// 标签：operation（create/capture/get）、result（success/timeout/rejected/error）
	GatewayRequestsTotal *prometheus.CounterVec

	// 库存指标

	// StockAdjustmentsTotal 库存流水总数（Counter）
	// 标签：change_type（StockIn/StockOut/Adjustment/Return/Damaged）
	StockAdjustmentsTotal *prometheus.CounterVec

	// LowStockProducts 当前低库存商品数（Gauge）
	LowStockProducts prometheus.Gauge

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数（Counter）
	// 标签：result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿执行总数（Counter）
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数（Counter）
	// 标签：queue（队列名称）、result（success/failure）
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry。
//
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 结算业务指标
	CheckoutsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkouts_started_total",
			Help: "发起结算总数",
		},
	)

	CheckoutsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkouts_completed_total",
			Help: "完成结算总数（支付捕获成功）",
		},
	)

	CheckoutsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_failed_total",
			Help: "结算失败总数",
		},
		[]string{"reason"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "checkout_duration_seconds",
			Help: "结算耗时（秒）",
			// 结算涉及数据库事务+网关调用，耗时偏长
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	OrderAmountPence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "order_amount_pence",
			Help: "订单金额分布（便士）",
			// 桶设置：£5、£10、£25、£50、£100、£250
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000},
		},
	)

	// 支付指标
	PaymentCapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_captures_total",
			Help: "支付捕获总数",
		},
		[]string{"result"},
	)

	PaymentCaptureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_capture_duration_seconds",
			Help:    "支付捕获耗时（秒）",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "支付网关请求总数",
		},
		[]string{"operation", "result"},
	)

	// 库存指标
	StockAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "库存流水总数",
		},
		[]string{"change_type"},
	)

	LowStockProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "low_stock_products",
			Help: "当前低库存商品数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// Saga指标
	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
