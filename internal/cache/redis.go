package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kharido-next/internal/config"

	"github.com/redis/go-redis/v9"
)

const initPingTimeout = 3 * time.Second

var store struct {
	client *redis.Client
	prefix string
}

// InitRedis 初始化 Redis 客户端并做一次连通性探测
// 未启用时所有缓存操作都静默降级为未命中。
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		store.client = nil
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
		prefix = "kh"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  initPingTimeout,
		ReadTimeout:  initPingTimeout,
		WriteTimeout: initPingTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), initPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	store.client = client
	store.prefix = prefix
	return nil
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return store.client != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	return store.client
}

// GetJSON 读取 JSON 缓存，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := store.client.Get(ctx, namespacedKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化后写入缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.client.Set(ctx, namespacedKey(key), payload, ttl).Err()
}

// Del 删除缓存键
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return store.client.Del(ctx, namespacedKey(key)).Err()
}

func namespacedKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return store.prefix
	}
	return store.prefix + ":" + trimmed
}
