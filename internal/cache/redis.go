package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/giftvault/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "gv"

// store 持有 redis 客户端与 key 前缀，未启用时为 nil，
// 所有包级函数在未启用时按无缓存模式降级。
type store struct {
	rdb    *redis.Client
	prefix string
}

var active *store

// InitRedis 初始化 Redis 客户端，cfg 未启用时保持无缓存模式。
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		active = nil
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	active = &store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", host, port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return active != nil && active.rdb != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil。
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return active.rdb
}

// Close 关闭 Redis 连接
func Close() error {
	if !Enabled() {
		return nil
	}
	err := active.rdb.Close()
	active = nil
	return err
}

// GetJSON 获取 JSON 缓存，miss 与未启用都返回 false。
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := active.rdb.Get(ctx, active.key(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return active.rdb.Set(ctx, active.key(key), payload, ttl).Err()
}

// SetNX 不存在则写入，返回是否写入成功
// 缓存未启用时视为写入成功，上层据此退化为无去重模式。
func SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	return active.rdb.SetNX(ctx, active.key(key), value, ttl).Result()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return active.rdb.Del(ctx, active.key(key)).Err()
}

func (s *store) key(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.prefix
	}
	return fmt.Sprintf("%s:%s", s.prefix, trimmed)
}
