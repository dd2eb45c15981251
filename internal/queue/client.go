package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	defaultConcurrency = 10
	enqueueMaxRetry    = 5
	enqueueTimeout     = 30 * time.Second
)

// Client 队列客户端封装，未启用时入队为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 构造队列客户端，未配置时返回禁用实例
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg))}, nil
}

// Enabled 返回队列是否可用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 释放底层连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderConfirmed 推送订单确认通知任务
func (c *Client) EnqueueOrderConfirmed(payload OrderConfirmedPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderConfirmedTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(enqueueMaxRetry),
		asynq.Timeout(enqueueTimeout),
	}
	options = append(options, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig 生成队列服务端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{constants.QueueDefault: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
