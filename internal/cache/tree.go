package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"freeark_web/internal/building"

	"github.com/go-redis/redis/v8"
)

const treeKey = "building:tree"

// TreeCache 缓存由 owners 表构建出的楼栋树。
type TreeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTreeCache(rdb *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{rdb: rdb, ttl: ttl}
}

// Get 未命中时返回 (nil, nil)。
func (c *TreeCache) Get(ctx context.Context) (*building.Result, error) {
	data, err := c.rdb.Get(ctx, treeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tree cache: %w", err)
	}

	var res building.Result
	if err := json.Unmarshal(data, &res); err != nil {
		// 内容损坏按未命中处理，下次 Set 会覆盖
		return nil, nil
	}
	if res.Tree == nil {
		res.Tree = []*building.Node{}
	}
	return &res, nil
}

func (c *TreeCache) Set(ctx context.Context, res *building.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	if err := c.rdb.Set(ctx, treeKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set tree cache: %w", err)
	}
	return nil
}

func (c *TreeCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, treeKey).Err(); err != nil {
		return fmt.Errorf("invalidate tree cache: %w", err)
	}
	return nil
}
