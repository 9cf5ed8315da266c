package user

import (
	"time"
)

// Role 用户角色
// 买家/仓库操作员/管理员,接口层按角色做访问控制
type Role string

const (
	RoleCustomer  Role = "customer"  // 买家
	RoleWarehouse Role = "warehouse" // 仓库操作员(库存/打包/发货)
	RoleAdmin     Role = "admin"     // 管理员
)

// IsValid 角色是否合法
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleWarehouse || r == RoleAdmin
}

// User 用户实体(聚合根)
// 设计说明:
// 1. 密码已加密存储(bcrypt),不暴露明文
// 2. 领域实体不依赖GORM tag(infrastructure层处理映射)
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole 是否具有指定角色(admin隐含所有角色权限)
func (u *User) HasRole(role Role) bool {
	return u.Role == role || u.Role == RoleAdmin
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
