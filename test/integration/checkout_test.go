package integration

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 结账链路集成测试
// 覆盖:加购、价格快照、发起结账、空购物车拒绝、游客流程
// 捕获侧(webhook回调)依赖真实支付网关回调,不在这里覆盖,见应用层单测

func TestCheckoutStart(t *testing.T) {
	RequireServer(t)
	admin := AdminToken(t)

	// 两件商品:12.99*2 + 8.99*1 = 34.97
	p1 := PublishTestProduct(t, admin, "《Go程序设计》", 1299, 10)
	p2 := PublishTestProduct(t, admin, "《领域驱动设计》", 899, 10)

	_, token := RegisterTestUser(t, "checkout")

	resp := PostJSON(t, BaseURL()+"/cart/items", map[string]interface{}{
		"product_id": p1, "quantity": 2,
	}, WithToken(token))
	require.Equal(t, 0, resp.Code, "加购应该成功: %s", resp.Message)

	resp = PostJSON(t, BaseURL()+"/cart/items", map[string]interface{}{
		"product_id": p2, "quantity": 1,
	}, WithToken(token))
	require.Equal(t, 0, resp.Code)

	t.Run("购物车按当前价计算合计", func(t *testing.T) {
		resp := GetJSON(t, BaseURL()+"/cart", WithToken(token))
		require.Equal(t, 0, resp.Code)

		var cart CartData
		require.NoError(t, json.Unmarshal(resp.Data, &cart))
		assert.Len(t, cart.Lines, 2)
		assert.Equal(t, int64(3497), cart.Total, "合计应该是34.97")
	})

	t.Run("发起结账生成订单和支付意向", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/checkout", nil, WithToken(token))
		require.Equal(t, 0, resp.Code, "发起结账应该成功: %s", resp.Message)

		var data CheckoutData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotZero(t, data.OrderID)
		assert.Regexp(t, `^ORD-\d{13}-\d{5}$`, data.OrderNo)
		assert.Equal(t, int64(3497), data.Total, "订单金额应该是34.97")
		assert.Equal(t, "34.97", data.TotalPounds)
		assert.Equal(t, "GBP", data.Currency)
		assert.NotEmpty(t, data.IntentID, "应该返回支付意向ID")

		t.Logf("✓ 结账发起成功 订单号=%s 金额=%s", data.OrderNo, data.TotalPounds)
	})

	t.Run("未完成支付时购物车保留", func(t *testing.T) {
		resp := GetJSON(t, BaseURL()+"/cart", WithToken(token))
		require.Equal(t, 0, resp.Code)

		var cart CartData
		require.NoError(t, json.Unmarshal(resp.Data, &cart))
		assert.Len(t, cart.Lines, 2, "结账发起不清空购物车,支付成功才清")
	})
}

func TestCheckoutEmptyCart(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "emptycart")

	resp := PostJSON(t, BaseURL()+"/checkout", nil, WithToken(token))
	assert.NotEqual(t, 0, resp.Code, "空购物车应该拒绝结账")
}

func TestCheckoutGuestFlow(t *testing.T) {
	RequireServer(t)
	admin := AdminToken(t)

	p := PublishTestProduct(t, admin, "《游客购买测试》", 1500, 5)
	guest := fmt.Sprintf("g-%d", time.Now().UnixNano())

	resp := PostJSON(t, BaseURL()+"/cart/items", map[string]interface{}{
		"product_id": p, "quantity": 1,
	}, WithGuestToken(guest))
	require.Equal(t, 0, resp.Code, "游客加购应该成功: %s", resp.Message)

	resp = PostJSON(t, BaseURL()+"/checkout", nil, WithGuestToken(guest))
	require.Equal(t, 0, resp.Code, "游客结账应该成功: %s", resp.Message)

	var data CheckoutData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.OrderNo)

	t.Run("游客可按订单号查询", func(t *testing.T) {
		resp := GetJSON(t, BaseURL()+"/orders/guest/"+data.OrderNo, WithGuestToken(guest))
		assert.Equal(t, 0, resp.Code, "游客订单查询应该成功: %s", resp.Message)
	})

	t.Run("令牌不匹配被拒", func(t *testing.T) {
		resp := GetJSON(t, BaseURL()+"/orders/guest/"+data.OrderNo, WithGuestToken("g-other"))
		assert.NotEqual(t, 0, resp.Code)
	})
}

func TestStockAdjustRequiresRole(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "norole")

	resp := PostJSON(t, BaseURL()+"/warehouse/stock/adjust", map[string]interface{}{
		"product_id":  1,
		"change_type": "StockIn",
		"quantity":    1,
		"reason":      "越权测试",
	}, WithToken(token))
	assert.NotEqual(t, 0, resp.Code, "customer角色不应能调整库存")
}
