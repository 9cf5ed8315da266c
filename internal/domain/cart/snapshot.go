package cart

// SnapshotLine 快照行:下单时的(商品,数量,单价)
// UnitPrice是快照时刻商品的当前价格(便士),
// 之后商品改价不影响本次快照
type SnapshotLine struct {
	ProductID uint
	Title     string // 快照时的商品名(订单展示用)
	Quantity  int
	UnitPrice int64 // 快照时单价(便士)
}

// Snapshot 购物车快照(不可变值对象)
// 设计说明:
// 1. 把可变购物车冻结成订单将使用的行项目
// 2. 快照本身不修改购物车:清空发生在下游订单
//    支付成功之后,避免支付失败丢失购物车
type Snapshot struct {
	Owner Owner
	Lines []SnapshotLine
}

// Total 快照总金额(便士)
func (s *Snapshot) Total() int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// IsEmpty 快照是否为空
func (s *Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
