package database

import (
	"context"
	"fmt"
	"time"

	"freeark_web/pkg/log"

	"github.com/go-redis/redis/v8"
)

// OpenRedis 创建客户端并 Ping 一次确认连通。
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}
