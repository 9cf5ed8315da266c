package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/payment"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// newTestServer 模拟PayPal API的测试服务器
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 令牌端点统一处理
		if r.URL.Path == "/v1/oauth2/token" {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "test-client-id", user)
			assert.Equal(t, "test-secret", pass)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "test-token",
				"expires_in":   3600,
			})
			return
		}
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		handler(w, r)
	}))
}

func newTestClient(serverURL string) *Client {
	return NewClient(config.PayPalConfig{
		BaseURL:      serverURL,
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		Timeout:      2 * time.Second,
		ReturnURL:    "https://shop.example/checkout/return",
		CancelURL:    "https://shop.example/checkout/cancel",
	})
}

func TestClient_CreateIntent(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/checkout/orders", r.URL.Path)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "CAPTURE", req.Intent)
		require.Len(t, req.PurchaseUnits, 1)
		assert.Equal(t, "GBP", req.PurchaseUnits[0].Amount.CurrencyCode)
		assert.Equal(t, "34.97", req.PurchaseUnits[0].Amount.Value)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "INTENT-001",
			"status": "CREATED",
			"links": []map[string]string{
				{"rel": "self", "href": "https://paypal.example/orders/INTENT-001"},
				{"rel": "approve", "href": "https://paypal.example/approve/INTENT-001"},
			},
		})
	})
	defer server.Close()

	intent, err := newTestClient(server.URL).CreateIntent(context.Background(), payment.CreateIntentRequest{
		OrderNo:  "ORD-1700000000000-12345",
		Amount:   3497,
		Currency: "GBP",
	})
	require.NoError(t, err)

	assert.Equal(t, "INTENT-001", intent.IntentID)
	assert.Equal(t, payment.IntentStatusCreated, intent.Status)
	assert.Equal(t, "https://paypal.example/approve/INTENT-001", intent.ApprovalURL)
}

func TestClient_Capture(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/checkout/orders/INTENT-001/capture", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "INTENT-001",
			"status": "COMPLETED",
			"payer": map[string]interface{}{
				"email_address": "buyer@example.com",
				"name":          map[string]string{"given_name": "Ada", "surname": "Lovelace"},
			},
			"purchase_units": []map[string]interface{}{{
				"payments": map[string]interface{}{
					"captures": []map[string]string{
						{"id": "TXN-42", "status": "COMPLETED"},
					},
				},
			}},
		})
	})
	defer server.Close()

	result, err := newTestClient(server.URL).Capture(context.Background(), "INTENT-001")
	require.NoError(t, err)

	assert.Equal(t, payment.IntentStatusCompleted, result.Status)
	assert.Equal(t, "TXN-42", result.TransactionID)
	assert.Equal(t, "buyer@example.com", result.PayerEmail)
	assert.Equal(t, "Ada Lovelace", result.PayerName)
}

func TestClient_GetIntent(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "INTENT-001",
			"status": "APPROVED",
		})
	})
	defer server.Close()

	intent, err := newTestClient(server.URL).GetIntent(context.Background(), "INTENT-001")
	require.NoError(t, err)
	assert.Equal(t, payment.IntentStatusApproved, intent.Status)
	assert.Empty(t, intent.TransactionID)
}

func TestClient_GetIntent_CapturedOrderCarriesTransaction(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "INTENT-001",
			"status": "COMPLETED",
			"payer": map[string]interface{}{
				"email_address": "buyer@example.com",
				"name":          map[string]string{"given_name": "Ada", "surname": "Lovelace"},
			},
			"purchase_units": []map[string]interface{}{{
				"payments": map[string]interface{}{
					"captures": []map[string]string{
						{"id": "TXN-42", "status": "COMPLETED"},
					},
				},
			}},
		})
	})
	defer server.Close()

	// 对账查询要能拿到捕获明细,补齐本地支付记录的交易参照
	intent, err := newTestClient(server.URL).GetIntent(context.Background(), "INTENT-001")
	require.NoError(t, err)
	assert.Equal(t, payment.IntentStatusCompleted, intent.Status)
	assert.Equal(t, "TXN-42", intent.TransactionID)
	assert.Equal(t, "buyer@example.com", intent.PayerEmail)
	assert.Equal(t, "Ada Lovelace", intent.PayerName)
}

func TestClient_Rejected(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})
	defer server.Close()

	_, err := newTestClient(server.URL).Capture(context.Background(), "INTENT-001")
	assert.ErrorIs(t, err, payment.ErrGatewayRejected)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(config.PayPalConfig{
		BaseURL:      server.URL,
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		Timeout:      50 * time.Millisecond,
	})

	_, err := client.Capture(context.Background(), "INTENT-001")
	assert.ErrorIs(t, err, payment.ErrGatewayTimeout)
}

func TestClient_CircuitOpens(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	client := newTestClient(server.URL)

	// 连续5次失败触发熔断
	for i := 0; i < 5; i++ {
		_, err := client.Capture(context.Background(), "INTENT-001")
		require.Error(t, err)
		assert.NotErrorIs(t, err, payment.ErrGatewayUnavailable)
	}

	_, err := client.Capture(context.Background(), "INTENT-001")
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "34.97", formatAmount(3497))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "10.00", formatAmount(1000))
}
