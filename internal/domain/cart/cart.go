package cart

import (
	"fmt"
	"time"
)

// Owner 购物车归属
// 设计说明:
// 购物车属于一个登录用户或一个游客令牌,二者取其一。
// 用一个值类型统一两种情况,避免领域层到处处理可空外键。
type Owner struct {
	UserID     uint   // 登录用户ID(游客为0)
	GuestToken string // 游客令牌(登录用户为空)
}

// OwnerOfUser 登录用户的购物车归属
func OwnerOfUser(userID uint) Owner {
	return Owner{UserID: userID}
}

// OwnerOfGuest 游客的购物车归属
func OwnerOfGuest(token string) Owner {
	return Owner{GuestToken: token}
}

// IsGuest 是否游客
func (o Owner) IsGuest() bool {
	return o.UserID == 0
}

// Key 归属的唯一键(存储层用)
func (o Owner) Key() string {
	if o.IsGuest() {
		return "guest:" + o.GuestToken
	}
	return fmt.Sprintf("user:%d", o.UserID)
}

// Item 购物车条目
// 只记录商品ID和数量,不记录价格:
// 价格在快照时读取商品当前价,加入购物车时不锁价
type Item struct {
	ProductID uint
	Quantity  int // 必须>=1
}

// Cart 购物车(暂存区,非事务性)
// 生命周期:首次加购时创建,订单完成支付后清空
type Cart struct {
	Owner     Owner
	Items     []Item
	UpdatedAt time.Time
}

// IsEmpty 购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity 商品总件数
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// AddItem 加入商品(同商品累加数量)
func (c *Cart) AddItem(productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateQuantity 修改商品数量(0表示移除)
func (c *Cart) UpdateQuantity(productID uint, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity == 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotInCart
}
