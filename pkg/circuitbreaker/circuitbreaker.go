// Package circuitbreaker 实现熔断器模式（Circuit Breaker Pattern）
//
// 熔断器核心思想：
// 1. 监控外部调用的成功率
// 2. 当失败率超过阈值时，快速失败（打开熔断器）
// 3. 过一段时间后尝试恢复（半开状态）
//
// 本项目中用于保护支付网关调用：网关不稳定时快速失败，
// 避免结算请求堆积等待超时。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	// StateClosed 关闭状态（正常）
	// - 所有请求正常通过
	// - 统计失败次数/失败率
	// - 达到阈值时转为OPEN
	StateClosed State = iota

	// StateOpen 打开状态（熔断）
	// - 所有请求快速失败，不调用服务
	// - 过一段时间（timeout）后转为HALF_OPEN
	// - 目的：给下游服务恢复时间
	StateOpen

	// StateHalfOpen 半开状态（探测）
	// - 允许部分请求通过（探测下游是否恢复）
	// - 如果请求成功，转为CLOSED
	// - 如果请求失败，转回OPEN
	StateHalfOpen
)

// String 状态转字符串（便于日志）
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许的最大请求数
	// 建议值：1-5（允许少量请求探测）
	MaxRequests uint32

	// Interval 统计时间窗口
	// 建议值：10s-60s
	Interval time.Duration

	// Timeout 熔断超时时间（OPEN状态持续时间）
	// 过了这个时间，转为HALF_OPEN尝试恢复
	Timeout time.Duration

	// ReadyToTrip 判断是否应该打开熔断器
	//
	// 常见策略：
	// 1. 连续失败：counts.ConsecutiveFailures >= 5
	// 2. 错误率：counts.FailureRate() > 0.5 (50%)
	ReadyToTrip func(counts Counts) bool
}

// Counts 统计数据
type Counts struct {
	Requests             uint32 // 总请求数
	TotalSuccesses       uint32 // 总成功数
	TotalFailures        uint32 // 总失败数
	ConsecutiveSuccesses uint32 // 连续成功数
	ConsecutiveFailures  uint32 // 连续失败数
}

// FailureRate 计算失败率
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

// Reset 重置统计
func (c *Counts) Reset() {
	c.Requests = 0
	c.TotalSuccesses = 0
	c.TotalFailures = 0
	c.ConsecutiveSuccesses = 0
	c.ConsecutiveFailures = 0
}

// onSuccess 记录成功
func (c *Counts) onSuccess() {
	// 注意：Requests已经在beforeRequest中递增，这里不再重复
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0 // 重置连续失败
}

// onFailure 记录失败
func (c *Counts) onFailure() {
	// 注意：Requests已经在beforeRequest中递增，这里不再重复
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0 // 重置连续成功
}

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name          string        // 熔断器名称（用于日志）
	maxRequests   uint32        // 半开状态最大请求数
	interval      time.Duration // 统计时间窗口
	timeout       time.Duration // 熔断超时时间
	readyToTrip   func(counts Counts) bool
	state         State                                   // 当前状态
	generation    uint64                                  // 生成号（每次状态切换递增）
	counts        Counts                                  // 统计数据
	expiry        time.Time                               // 过期时间（用于重置统计窗口）
	mu            sync.Mutex                              // 保护并发访问
	onStateChange func(name string, from State, to State) // 状态变化回调
}

// ErrOpenState 熔断器打开错误
var ErrOpenState = errors.New("circuit breaker is open")

// NewCircuitBreaker 创建熔断器
//
// 示例：
//
//	cb := NewCircuitBreaker("paypal-gateway", Config{
//	    MaxRequests: 3,
//	    Interval:    10 * time.Second,
//	    Timeout:     30 * time.Second,
//	    ReadyToTrip: func(counts Counts) bool {
//	        return counts.ConsecutiveFailures >= 5
//	    },
//	})
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:          name,
		maxRequests:   config.MaxRequests,
		interval:      config.Interval,
		timeout:       config.Timeout,
		readyToTrip:   config.ReadyToTrip,
		state:         StateClosed,
		counts:        Counts{},
		expiry:        time.Now().Add(config.Interval),
		onStateChange: func(name string, from State, to State) {}, // 默认空回调
	}

	return cb
}

// SetStateChangeCallback 设置状态变化回调
//
// 用途：记录日志、发送告警、更新监控指标
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.onStateChange = fn
}

// Execute 执行请求（核心方法）
//
// 返回业务错误或熔断器错误(ErrOpenState)。
//
// 示例：
//
//	err := cb.Execute(func() error {
//	    return gateway.CaptureIntent(ctx, intentID)
//	})
func (cb *CircuitBreaker) Execute(req func() error) error {
	// 步骤1：before request（检查是否允许执行）
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	// 步骤2：执行实际请求
	err = req()

	// 步骤3：after request（记录结果，更新状态）
	cb.afterRequest(generation, err == nil)

	return err
}

// beforeRequest 请求前检查
//
// 返回当前生成号（用于afterRequest）；熔断器打开时返回ErrOpenState。
func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	if state == StateOpen {
		// 熔断器打开，快速失败
		return generation, ErrOpenState
	} else if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		// 半开状态，已达到最大请求数
		return generation, ErrOpenState
	}

	// 允许请求通过
	cb.counts.Requests++
	return generation, nil
}

// afterRequest 请求后处理
func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	// 检查生成号是否匹配（防止状态已切换）
	if generation != before {
		return
	}

	if success {
		cb.onSuccess(state, now)
	} else {
		cb.onFailure(state, now)
	}
}

// onSuccess 处理成功请求
func (cb *CircuitBreaker) onSuccess(state State, now time.Time) {
	cb.counts.onSuccess()

	if state == StateHalfOpen {
		// 半开状态下成功，转为关闭状态
		cb.setState(StateClosed, now)
	}
}

// onFailure 处理失败请求
func (cb *CircuitBreaker) onFailure(state State, now time.Time) {
	cb.counts.onFailure()

	switch state {
	case StateClosed:
		// 关闭状态下失败，检查是否应该熔断
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		// 半开状态下失败，立即转回打开状态
		cb.setState(StateOpen, now)
	}
}

// currentState 获取当前状态
//
// 处理状态过期逻辑：
// - CLOSED状态：统计窗口过期时重置计数
// - OPEN状态：超时后转为HALF_OPEN
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		// 检查统计窗口是否过期
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			// 重置统计窗口
			cb.counts.Reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		// 检查是否应该转为半开状态
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}

	return cb.state, cb.generation
}

// setState 设置状态
func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.Reset()

	// 设置过期时间
	switch state {
	case StateClosed:
		cb.expiry = now.Add(cb.interval)
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{} // 半开状态没有过期时间
	}

	// 触发回调
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State 获取当前状态（只读）
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, _ := cb.currentState(now)
	return state
}

// Counts 获取当前统计数据（只读）
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}
