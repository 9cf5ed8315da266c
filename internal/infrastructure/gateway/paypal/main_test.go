package paypal

import (
	"os"
	"testing"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// 指标变量由InitMetrics注册,测试进程和服务进程一样需要先初始化
func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}
