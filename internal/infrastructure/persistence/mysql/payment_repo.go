package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/payment"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// paymentRepository 支付仓储实现(MySQL)
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

// Create 创建支付意向记录
// IntentID唯一冲突转换为ErrDuplicatePayment
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return payment.ErrDuplicatePayment
		}
		return apperrors.Wrap(err, "创建支付记录失败")
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找支付记录
func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	return toPaymentEntity(&model), nil
}

// FindByIntentID 根据网关意向ID查找支付记录
func (r *paymentRepository) FindByIntentID(ctx context.Context, intentID string) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).Where("intent_id = ?", intentID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	return toPaymentEntity(&model), nil
}

// FindByOrderID 查找订单的全部支付记录(新的在前)
func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID uint) ([]*payment.Payment, error) {
	var models []PaymentModel
	err := getDB(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	payments := make([]*payment.Payment, len(models))
	for i := range models {
		payments[i] = toPaymentEntity(&models[i])
	}

	return payments, nil
}

// FindActiveByOrderID 查找订单的有效支付记录(Pending或Completed)
// 不存在时返回ErrPaymentNotFound
func (r *paymentRepository) FindActiveByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).
		Where("order_id = ? AND status IN ?", orderID,
			[]int{int(payment.PaymentStatusPending), int(payment.PaymentStatusCompleted)}).
		Order("created_at DESC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	return toPaymentEntity(&model), nil
}

// Update 更新支付记录
func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	result := getDB(ctx, r.db).Model(&PaymentModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":         int(p.Status),
		"transaction_id": p.TransactionID,
		"payer_email":    p.PayerEmail,
		"payer_name":     p.PayerName,
		"processed_at":   p.ProcessedAt,
		"updated_at":     p.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新支付记录失败")
	}

	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

// toPaymentModel 领域实体 → GORM模型
func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID,
		IntentID:      p.IntentID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        int(p.Status),
		TransactionID: p.TransactionID,
		PaymentMethod: p.PaymentMethod,
		PayerEmail:    p.PayerEmail,
		PayerName:     p.PayerName,
		ApprovalURL:   p.ApprovalURL,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// toPaymentEntity GORM模型 → 领域实体
func toPaymentEntity(model *PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:            model.ID,
		IntentID:      model.IntentID,
		OrderID:       model.OrderID,
		Amount:        model.Amount,
		Currency:      model.Currency,
		Status:        payment.PaymentStatus(model.Status),
		TransactionID: model.TransactionID,
		PaymentMethod: model.PaymentMethod,
		PayerEmail:    model.PayerEmail,
		PayerName:     model.PayerName,
		ApprovalURL:   model.ApprovalURL,
		ProcessedAt:   model.ProcessedAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
