package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// CartStore 购物车存储(Redis实现)
// 设计说明:
// 1. 购物车是高频读写的临时状态,放Redis而非MySQL
// 2. Key设计:cart:user:{id} / cart:guest:{token}
//    (Owner.Key已经生成user:{id}形式,这里加cart:前缀)
// 3. 整车JSON序列化存储,购物车条目数有限,不需要Hash逐项操作
// 4. 游客车TTL短(7天),用户车TTL长(30天),每次写入刷新
type CartStore struct {
	client   *redis.Client
	guestTTL time.Duration
	userTTL  time.Duration
}

// NewCartStore 创建购物车存储
func NewCartStore(client *redis.Client, guestTTL, userTTL time.Duration) cart.Store {
	return &CartStore{
		client:   client,
		guestTTL: guestTTL,
		userTTL:  userTTL,
	}
}

func cartKey(owner cart.Owner) string {
	return fmt.Sprintf("cart:%s", owner.Key())
}

// Get 读取购物车
// 不存在时返回cart.ErrCartNotFound
func (s *CartStore) Get(ctx context.Context, owner cart.Owner) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "读取购物车失败")
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, apperrors.Wrap(err, "解析购物车数据失败")
	}

	return &c, nil
}

// Save 保存购物车(整车覆盖写,刷新TTL)
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return apperrors.Wrap(err, "序列化购物车失败")
	}

	ttl := s.userTTL
	if c.Owner.IsGuest() {
		ttl = s.guestTTL
	}

	if err := s.client.Set(ctx, cartKey(c.Owner), data, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "保存购物车失败")
	}

	return nil
}

// Clear 清空购物车(结账完成后调用)
func (s *CartStore) Clear(ctx context.Context, owner cart.Owner) error {
	if err := s.client.Del(ctx, cartKey(owner)).Err(); err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}
