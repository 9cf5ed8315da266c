package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	p, err := NewPayment("PAYPAL-INTENT-001", 1, 3497, "GBP", "https://paypal.example/approve/001")
	require.NoError(t, err)

	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.Equal(t, MethodPayPal, p.PaymentMethod)
	assert.Equal(t, int64(3497), p.Amount)
	assert.Nil(t, p.ProcessedAt)
}

func TestNewPayment_InvalidAmount(t *testing.T) {
	_, err := NewPayment("PAYPAL-INTENT-001", 1, 0, "GBP", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPayment("PAYPAL-INTENT-001", 1, -100, "GBP", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPayment_Complete(t *testing.T) {
	p, err := NewPayment("PAYPAL-INTENT-001", 1, 3497, "GBP", "")
	require.NoError(t, err)

	require.NoError(t, p.Complete("TXN-123", "buyer@example.com", "测试买家"))
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.Equal(t, "TXN-123", p.TransactionID)
	assert.Equal(t, "buyer@example.com", p.PayerEmail)
	require.NotNil(t, p.ProcessedAt)
}

func TestPayment_CompleteIdempotent(t *testing.T) {
	p, err := NewPayment("PAYPAL-INTENT-001", 1, 3497, "GBP", "")
	require.NoError(t, err)

	require.NoError(t, p.Complete("TXN-123", "buyer@example.com", "测试买家"))
	first := *p.ProcessedAt

	// 重复捕获回调是no-op,不覆盖首次结果
	require.NoError(t, p.Complete("TXN-456", "other@example.com", "其他人"))
	assert.Equal(t, "TXN-123", p.TransactionID)
	assert.Equal(t, first, *p.ProcessedAt)
}

func TestPayment_StatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"待捕获→已完成", PaymentStatusPending, PaymentStatusCompleted, true},
		{"待捕获→失败", PaymentStatusPending, PaymentStatusFailed, true},
		{"待捕获→已作废", PaymentStatusPending, PaymentStatusCancelled, true},
		{"待捕获→已退款", PaymentStatusPending, PaymentStatusRefunded, false},
		{"已完成→已退款", PaymentStatusCompleted, PaymentStatusRefunded, true},
		{"已完成→失败", PaymentStatusCompleted, PaymentStatusFailed, false},
		{"失败→已完成", PaymentStatusFailed, PaymentStatusCompleted, false},
		{"已作废→已完成", PaymentStatusCancelled, PaymentStatusCompleted, false},
		{"已退款→已完成", PaymentStatusRefunded, PaymentStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{Status: tt.from}
			assert.Equal(t, tt.allowed, p.CanTransitionTo(tt.to))

			err := p.TransitionTo(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, p.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
				assert.Equal(t, tt.from, p.Status)
			}
		})
	}
}

func TestPayment_FailThenComplete(t *testing.T) {
	p, err := NewPayment("PAYPAL-INTENT-001", 1, 3497, "GBP", "")
	require.NoError(t, err)

	require.NoError(t, p.Fail())
	// 失败是终态,不能再完成
	assert.ErrorIs(t, p.Complete("TXN-123", "", ""), ErrInvalidPaymentStatus)
}

func TestPayment_CanRefund(t *testing.T) {
	p, err := NewPayment("PAYPAL-INTENT-001", 1, 3497, "GBP", "")
	require.NoError(t, err)
	assert.False(t, p.CanRefund())

	require.NoError(t, p.Complete("TXN-123", "", ""))
	assert.True(t, p.CanRefund())

	require.NoError(t, p.Refund())
	assert.False(t, p.CanRefund())
	assert.True(t, p.Status.IsTerminal())
}
