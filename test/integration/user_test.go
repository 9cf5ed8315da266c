package integration

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegister(t *testing.T) {
	RequireServer(t)

	email := fmt.Sprintf("reg_%d@test.local", time.Now().UnixNano())

	t.Run("正常注册", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/users/register", map[string]interface{}{
			"email":    email,
			"password": "Passw0rd123",
			"nickname": "集成测试",
		})
		require.Equal(t, 0, resp.Code, "注册应该成功: %s", resp.Message)

		var data RegisterData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotZero(t, data.ID)
		assert.Equal(t, email, data.Email)
		assert.Equal(t, "customer", data.Role, "新用户默认是customer角色")
	})

	t.Run("重复邮箱注册失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/users/register", map[string]interface{}{
			"email":    email,
			"password": "Passw0rd123",
			"nickname": "集成测试",
		})
		assert.NotEqual(t, 0, resp.Code, "重复邮箱应该被拒绝")
	})

	t.Run("弱密码被拒绝", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/users/register", map[string]interface{}{
			"email":    fmt.Sprintf("weak_%d@test.local", time.Now().UnixNano()),
			"password": "123",
			"nickname": "集成测试",
		})
		assert.NotEqual(t, 0, resp.Code)
	})
}

func TestUserLogin(t *testing.T) {
	RequireServer(t)

	email := fmt.Sprintf("login_%d@test.local", time.Now().UnixNano())
	resp := PostJSON(t, BaseURL()+"/users/register", map[string]interface{}{
		"email":    email,
		"password": "Passw0rd123",
		"nickname": "登录测试",
	})
	require.Equal(t, 0, resp.Code)

	t.Run("正常登录", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/users/login", map[string]interface{}{
			"email":    email,
			"password": "Passw0rd123",
		})
		require.Equal(t, 0, resp.Code, "登录应该成功: %s", resp.Message)

		var data LoginData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.RefreshToken)
	})

	t.Run("密码错误", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/users/login", map[string]interface{}{
			"email":    email,
			"password": "WrongPassword",
		})
		assert.NotEqual(t, 0, resp.Code, "错误密码应该登录失败")
	})

	t.Run("登录后可访问受保护接口", func(t *testing.T) {
		_, token := RegisterTestUser(t, "protected")
		resp := GetJSON(t, BaseURL()+"/orders", WithToken(token))
		assert.Equal(t, 0, resp.Code, "携带令牌访问订单列表应该成功: %s", resp.Message)
	})

	t.Run("无令牌访问受保护接口被拒", func(t *testing.T) {
		resp := GetJSON(t, BaseURL()+"/orders")
		assert.NotEqual(t, 0, resp.Code)
	})
}
