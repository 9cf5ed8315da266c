package order

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNo_Format(t *testing.T) {
	no := GenerateOrderNo()

	// ORD-毫秒时间戳-5位随机数
	matched, err := regexp.MatchString(`^ORD-\d{13}-\d{5}$`, no)
	require.NoError(t, err)
	assert.True(t, matched, "订单号格式不正确: %s", no)
}

func TestGenerateOrderNo_Timestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	no := GenerateOrderNo()
	after := time.Now().UnixMilli()

	parts := strings.Split(no, "-")
	require.Len(t, parts, 3)

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, before)
	assert.LessOrEqual(t, ts, after)
}

func TestGenerateOrderNo_RandomSuffix(t *testing.T) {
	// 同一毫秒内连续生成大概率不同(5位随机后缀)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GenerateOrderNo()] = true
	}
	assert.Greater(t, len(seen), 90, "随机后缀区分度不足")
}
