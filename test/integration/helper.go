package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 这些测试跑在真实服务上:先启动API(依赖MySQL/Redis),再执行 go test ./test/integration/...
// 服务不可达时整组跳过,不会在CI里误报失败

const (
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// BaseURL API基础URL,可用环境变量覆盖
func BaseURL() string {
	if v := os.Getenv("BOOKSHOP_TEST_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080/api/v1"
}

// RequireServer 服务不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(BaseURL(), "/api/v1") + "/ping")
	if err != nil {
		t.Skipf("API服务不可达,跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProductData 商品响应数据
type ProductData struct {
	ID          uint   `json:"id"`
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	PricePounds string `json:"price_pounds"`
	Stock       int    `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

// CartData 购物车响应数据
type CartData struct {
	Lines []struct {
		ProductID uint  `json:"product_id"`
		Quantity  int   `json:"quantity"`
		UnitPrice int64 `json:"unit_price"`
		LineTotal int64 `json:"line_total"`
	} `json:"lines"`
	Total int64 `json:"total"`
}

// CheckoutData 发起结账响应数据
type CheckoutData struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Total       int64  `json:"total"`
	TotalPounds string `json:"total_pounds"`
	Currency    string `json:"currency"`
	IntentID    string `json:"intent_id"`
	ApprovalURL string `json:"approval_url"`
}

// reqOption 请求选项
type reqOption func(*http.Request)

// WithToken 携带Bearer令牌
func WithToken(token string) reqOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithGuestToken 携带游客令牌
func WithGuestToken(token string) reqOption {
	return func(r *http.Request) {
		r.Header.Set("X-Guest-Token", token)
	}
}

// DoJSON 发送JSON请求并解析统一响应
func DoJSON(t *testing.T, method, url string, body interface{}, opts ...reqOption) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "序列化请求体失败")
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err, "创建请求失败")
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "请求失败: %s %s", method, url)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析响应失败: %s", string(raw))
	return &result
}

// PostJSON POST请求
func PostJSON(t *testing.T, url string, body interface{}, opts ...reqOption) *Response {
	return DoJSON(t, http.MethodPost, url, body, opts...)
}

// GetJSON GET请求
func GetJSON(t *testing.T, url string, opts ...reqOption) *Response {
	return DoJSON(t, http.MethodGet, url, nil, opts...)
}

// RegisterTestUser 注册并登录一个测试用户,返回用户ID和访问令牌
func RegisterTestUser(t *testing.T, prefix string) (uint, string) {
	t.Helper()

	email := fmt.Sprintf("%s_%d@test.local", prefix, time.Now().UnixNano())
	password := "Passw0rd123"

	resp := PostJSON(t, BaseURL()+"/users/register", map[string]interface{}{
		"email":    email,
		"password": password,
		"nickname": prefix,
	})
	require.Equal(t, 0, resp.Code, "注册应该成功: %s", resp.Message)

	var reg RegisterData
	require.NoError(t, json.Unmarshal(resp.Data, &reg))

	resp = PostJSON(t, BaseURL()+"/users/login", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, 0, resp.Code, "登录应该成功: %s", resp.Message)

	var login LoginData
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	return reg.ID, login.AccessToken
}

// AdminToken 用环境变量里的管理员账号登录
// 商品上架需要admin角色,测试环境需预置该账号;未配置时跳过
func AdminToken(t *testing.T) string {
	t.Helper()

	email := os.Getenv("BOOKSHOP_TEST_ADMIN_EMAIL")
	password := os.Getenv("BOOKSHOP_TEST_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("未配置BOOKSHOP_TEST_ADMIN_EMAIL/PASSWORD,跳过需要管理员的测试")
	}

	resp := PostJSON(t, BaseURL()+"/users/login", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, 0, resp.Code, "管理员登录应该成功: %s", resp.Message)

	var login LoginData
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	return login.AccessToken
}

// PublishTestProduct 上架一个测试商品,返回商品ID
func PublishTestProduct(t *testing.T, adminToken, title string, price int64, stock int) uint {
	t.Helper()

	resp := PostJSON(t, BaseURL()+"/products", map[string]interface{}{
		"sku":           fmt.Sprintf("SKU-%d", time.Now().UnixNano()),
		"title":         title,
		"author":        "测试作者",
		"price":         price,
		"initial_stock": stock,
	}, WithToken(adminToken))
	require.Equal(t, 0, resp.Code, "上架商品应该成功: %s", resp.Message)

	var p ProductData
	require.NoError(t, json.Unmarshal(resp.Data, &p))
	require.NotZero(t, p.ID)
	return p.ID
}
