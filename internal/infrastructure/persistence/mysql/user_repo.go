package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如邮箱重复),转换为业务错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 邮箱唯一性由数据库UNIQUE索引保证(而非应用层SELECT再INSERT)
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:    u.Email,
		Password: u.Password,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// Update 更新用户信息
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model := &UserModel{
		ID:       u.ID,
		Email:    u.Email,
		Password: u.Password,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新用户失败")
	}

	u.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除用户(软删除)
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&UserModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除用户失败")
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Email:     model.Email,
		Password:  model.Password,
		Nickname:  model.Nickname,
		Role:      user.Role(model.Role),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
