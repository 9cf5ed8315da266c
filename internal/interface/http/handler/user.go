package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// UserHandler 用户HTTP处理器
// Handler只负责HTTP:解析请求、调用应用层、返回响应
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新用户账号
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.UserResponse{
		ID:       result.ID,
		Email:    result.Email,
		Nickname: result.Nickname,
		Role:     result.Role,
	})
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码,返回JWT Token对
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse}
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		User: dto.UserResponse{
			ID:       result.User.ID,
			Email:    result.User.Email,
			Nickname: result.User.Nickname,
			Role:     result.User.Role,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并将当前Token加入黑名单
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	token := middleware.GetAccessToken(c)

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
