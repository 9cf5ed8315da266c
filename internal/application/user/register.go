package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// RegisterUseCase 用户注册用例
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
	}
}

// Execute 执行注册
// 返回应用层DTO而非领域实体,领域模型变更不影响API契约
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// RegisterResponse 注册响应(不返回密码字段)
type RegisterResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}
