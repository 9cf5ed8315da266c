package order

import (
	"fmt"
	"math/rand"
	"time"
)

// MaxOrderNoRetries 订单号生成的最大重试次数
// 时间戳+随机数的碰撞概率非零:创建订单时命中唯一索引冲突
// 则重新生成,超过次数返回ErrOrderNoGenerate而非无限循环
const MaxOrderNoRetries = 3

// GenerateOrderNo 生成订单号
// 格式:ORD-毫秒时间戳-5位随机数
// 示例:ORD-1700000000000-48213
//
// 设计原则:
// 1. 全局唯一(数据库唯一索引兜底+调用方重试)
// 2. 时间有序(便于排查和归档)
// 3. 不可预测(随机后缀,防止恶意遍历)
func GenerateOrderNo() string {
	timestamp := time.Now().UnixMilli()
	random := rand.Intn(90000) + 10000 // 5位随机数(10000-99999)
	return fmt.Sprintf("ORD-%d-%d", timestamp, random)
}
