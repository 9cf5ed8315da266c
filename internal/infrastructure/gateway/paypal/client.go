package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/payment"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Client PayPal支付网关客户端
// 设计说明:
// 1. 实现domain/payment/gateway.go的Gateway接口
// 2. 使用Checkout Orders v2 API:
//    创建意向 POST /v2/checkout/orders
//    捕获     POST /v2/checkout/orders/{id}/capture
//    查询     GET  /v2/checkout/orders/{id}
// 3. OAuth2 client_credentials获取access token,本地缓存到过期前1分钟
// 4. 所有出站请求经过熔断器;错误映射契约:
//    超时 → ErrGatewayTimeout(结果未知,不可当作失败)
//    4xx  → ErrGatewayRejected(确定性拒绝)
//    熔断 → ErrGatewayUnavailable
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	returnURL    string
	cancelURL    string
	httpClient   *http.Client
	breaker      *circuitbreaker.CircuitBreaker

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient 创建PayPal客户端
func NewClient(cfg config.PayPalConfig) *Client {
	breaker := circuitbreaker.NewCircuitBreaker("paypal-gateway", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			// 连续5次失败或失败率超60%(至少10个样本)时熔断
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && counts.FailureRate() >= 0.6)
		},
	})

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		returnURL:    cfg.ReturnURL,
		cancelURL:    cfg.CancelURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		breaker:      breaker,
	}
}

// 确保实现Gateway接口
var _ payment.Gateway = (*Client)(nil)

// ---------- 网关接口实现 ----------

// createOrderRequest PayPal创建订单请求体
type createOrderRequest struct {
	Intent        string            `json:"intent"`
	PurchaseUnits []purchaseUnit    `json:"purchase_units"`
	PaymentSource map[string]paypal `json:"payment_source"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	InvoiceID   string `json:"invoice_id,omitempty"`
	Amount      amount `json:"amount"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypal struct {
	ExperienceContext experienceContext `json:"experience_context"`
}

type experienceContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

// orderResponse PayPal订单响应(创建/查询/捕获共用)
type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	Payer struct {
		EmailAddress string `json:"email_address"`
		Name         struct {
			GivenName string `json:"given_name"`
			Surname   string `json:"surname"`
		} `json:"name"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CreateIntent 在网关创建支付意向
func (c *Client) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: req.OrderNo,
			InvoiceID:   req.OrderNo,
			Amount: amount{
				CurrencyCode: req.Currency,
				Value:        formatAmount(req.Amount),
			},
		}},
		PaymentSource: map[string]paypal{
			"paypal": {ExperienceContext: experienceContext{
				ReturnURL: firstNonEmpty(req.ReturnURL, c.returnURL),
				CancelURL: firstNonEmpty(req.CancelURL, c.cancelURL),
			}},
		},
	}

	var resp orderResponse
	err := c.do(ctx, "create_intent", http.MethodPost, "/v2/checkout/orders", body, &resp)
	if err != nil {
		return nil, err
	}

	intent := &payment.Intent{
		IntentID: resp.ID,
		Status:   normalizeStatus(resp.Status),
	}
	for _, link := range resp.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			intent.ApprovalURL = link.Href
			break
		}
	}

	return intent, nil
}

// Capture 捕获支付(实际扣款动作)
func (c *Client) Capture(ctx context.Context, intentID string) (*payment.CaptureResult, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(intentID))

	var resp orderResponse
	err := c.do(ctx, "capture", http.MethodPost, path, struct{}{}, &resp)
	if err != nil {
		return nil, err
	}

	return &payment.CaptureResult{
		IntentID:      resp.ID,
		Status:        normalizeStatus(resp.Status),
		TransactionID: completedCaptureID(&resp),
		PayerEmail:    resp.Payer.EmailAddress,
		PayerName:     payerName(&resp),
	}, nil
}

// GetIntent 查询意向当前状态(对账用)
func (c *Client) GetIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s", url.PathEscape(intentID))

	var resp orderResponse
	err := c.do(ctx, "get_intent", http.MethodGet, path, nil, &resp)
	if err != nil {
		return nil, err
	}

	return &payment.Intent{
		IntentID:      resp.ID,
		Status:        normalizeStatus(resp.Status),
		TransactionID: completedCaptureID(&resp),
		PayerEmail:    resp.Payer.EmailAddress,
		PayerName:     payerName(&resp),
	}, nil
}

// ---------- HTTP底层 ----------

// do 发送请求(经过熔断器),统一做鉴权、错误映射和指标上报
func (c *Client) do(ctx context.Context, operation, method, path string, reqBody, respBody interface{}) error {
	err := c.breaker.Execute(func() error {
		return c.doOnce(ctx, method, path, reqBody, respBody)
	})

	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrOpenState):
		outcome = "circuit_open"
		err = payment.ErrGatewayUnavailable
	case isTimeout(err):
		outcome = "timeout"
		err = payment.ErrGatewayTimeout
	case apperrors.IsAppError(err):
		outcome = "rejected"
	default:
		outcome = "error"
		err = apperrors.Wrap(err, "支付网关请求失败")
	}

	metrics.IncCounterVec(metrics.GatewayRequestsTotal, map[string]string{
		"operation": operation,
		"result":    outcome,
	})
	return err
}

// doOnce 发送单次HTTP请求
func (c *Client) doOnce(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return apperrors.Wrap(err, "序列化网关请求失败")
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apperrors.Wrap(err, "构造网关请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err // 超时等传输层错误,由do统一映射
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, "读取网关响应失败")
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// 确定性拒绝:参数错误、意向不存在、不可捕获等
		return payment.ErrGatewayRejected
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("网关返回%d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return apperrors.Wrap(err, "解析网关响应失败")
		}
	}

	return nil
}

// tokenResponse OAuth2令牌响应
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getAccessToken 获取access token(带本地缓存)
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 提前1分钟刷新,避免边界过期
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", apperrors.Wrap(err, "构造令牌请求失败")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("获取网关令牌失败: HTTP %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", apperrors.Wrap(err, "解析令牌响应失败")
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)

	return c.accessToken, nil
}

// ---------- 辅助函数 ----------

// formatAmount 便士 → "34.97"格式
func formatAmount(pence int64) string {
	return fmt.Sprintf("%d.%02d", pence/100, pence%100)
}

// completedCaptureID 从响应中提取已完成捕获的交易号
func completedCaptureID(resp *orderResponse) string {
	for _, pu := range resp.PurchaseUnits {
		for _, capture := range pu.Payments.Captures {
			if capture.Status == "COMPLETED" {
				return capture.ID
			}
		}
	}
	return ""
}

func payerName(resp *orderResponse) string {
	return strings.TrimSpace(resp.Payer.Name.GivenName + " " + resp.Payer.Name.Surname)
}

// normalizeStatus 网关原始状态 → 领域状态
func normalizeStatus(s string) payment.IntentStatus {
	switch s {
	case "CREATED", "PAYER_ACTION_REQUIRED":
		return payment.IntentStatusCreated
	case "APPROVED", "SAVED":
		return payment.IntentStatusApproved
	case "COMPLETED":
		return payment.IntentStatusCompleted
	case "VOIDED":
		return payment.IntentStatusVoided
	default:
		return payment.IntentStatus(s)
	}
}

// isTimeout 判断是否为超时类错误
// 超时意味着"结果未知",调用方不能当作确定失败处理
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
