package cache

import (
	"context"
	"encoding/json"
	"time"

	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const (
	productListKey = "products:all"
	productListTTL = 60 * time.Second
)

// 商品一覧のRedisキャッシュ。
// 書き込み系のたびにInvalidateされる前提なので短いTTLで十分。
type ProductListCache struct {
	client *redis.Client
}

func NewProductListCache(addr string) (*ProductListCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ProductListCache{client: client}, nil
}

func (c *ProductListCache) Close() error {
	return c.client.Close()
}

// Get はキャッシュがあれば一覧を返す。なければok=false。
// キャッシュ側の失敗はミス扱いにして呼び出し側を止めない。
func (c *ProductListCache) Get(ctx context.Context) ([]model.Product, bool) {
	data, err := c.client.Get(ctx, productListKey).Bytes()
	if err != nil {
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *ProductListCache) Set(ctx context.Context, products []model.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	c.client.Set(ctx, productListKey, data, productListTTL)
}

func (c *ProductListCache) Invalidate(ctx context.Context) {
	c.client.Del(ctx, productListKey)
}
