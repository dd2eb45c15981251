package worker

import (
	"context"
	"errors"
	"time"

	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/queue"

	"github.com/hibiken/asynq"
)

// 结账会话的过期清理随 worker 进程运行
const sessionSweepInterval = time.Minute

// Service 队列消费与周期任务服务
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 构造队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	svc := &Service{
		server:   asynq.NewServer(opt, serverCfg),
		mux:      asynq.NewServeMux(),
		consumer: consumer,
	}
	consumer.Register(svc.mux)
	return svc, nil
}

// Name 返回服务标识
func (s *Service) Name() string { return "worker" }

// Start 启动队列消费与会话清理循环
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.checkoutService() != nil {
		go s.runSessionSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止消费
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

func (s *Service) checkoutService() checkoutSweeper {
	if s == nil || s.consumer == nil || s.consumer.CheckoutService == nil {
		return nil
	}
	return s.consumer.CheckoutService
}

type checkoutSweeper interface {
	ExpireStaleSessions(now time.Time) int
}

func (s *Service) runSessionSweepLoop(ctx context.Context) {
	svc := s.checkoutService()
	if svc == nil {
		return
	}
	sweep := func() {
		if expired := svc.ExpireStaleSessions(time.Now()); expired > 0 {
			logger.Infow("worker_checkout_sessions_expired", "count", expired)
		}
	}
	sweep()

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
