package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明:
// 1. 从Header提取Token并验证
// 2. 检查Token黑名单(已登出的Token强制失效)
// 3. 将用户信息(含角色)注入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.Abort()
			return
		}

		isBlacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.ErrorWithCode(c, 50000, "验证Token失败")
			c.Abort()
			return
		}
		if isBlacklisted {
			response.ErrorWithCode(c, 40102, "Token已失效,请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		injectClaims(c, claims, tokenString)
		c.Next()
	}
}

// RequireRole 要求指定角色(admin始终放行)
// 用法:
//
//	warehouse := v1.Group("/warehouse")
//	warehouse.Use(auth.RequireAuth(), auth.RequireRole(user.RoleWarehouse))
func (m *AuthMiddleware) RequireRole(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := user.Role(GetRole(c))
		if current != role && current != user.RoleAdmin {
			response.ErrorWithCode(c, 40300, "没有权限执行此操作")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选登录
// 有Token则验证并注入用户信息,没有则作为匿名(游客)继续
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := m.jwtManager.ParseToken(parts[1]); err == nil {
				injectClaims(c, claims, parts[1])
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.ErrorWithCode(c, 40100, "请先登录")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.ErrorWithCode(c, 40101, "Token格式错误")
		return "", false
	}
	return parts[1], true
}

func injectClaims(c *gin.Context, claims *jwt.Claims, token string) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("name", claims.Name)
	c.Set("role", claims.Role)
	c.Set("access_token", token)
}

// GetUserID 从Context获取当前登录用户ID(未登录为0)
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetRole 从Context获取当前用户角色
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}

// GetAccessToken 从Context获取原始Access Token(登出时用)
func GetAccessToken(c *gin.Context) string {
	if token, exists := c.Get("access_token"); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// MustGetUserID 从Context获取用户ID(已通过RequireAuth的Handler使用)
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
