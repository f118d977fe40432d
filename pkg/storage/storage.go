// Package storage 提供生成产物的写入目标：本地文件或 S3 兼容的对象存储。
package storage

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("storage key is required")

// Sink 写入一个完整的产物。实现必须保证失败时不留下半截内容。
type Sink interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Location 返回 key 对应的可读位置，用于日志。
	Location(key string) string
}
