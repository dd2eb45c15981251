package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可托管的后台服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 托管一组服务，任一服务退出即触发整体停机
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器，nil 服务被忽略
func NewRunner(services ...Service) *Runner {
	kept := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			kept = append(kept, svc)
		}
	}
	return &Runner{services: kept}
}

// RunWithOptions 挂接系统信号后运行服务组
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx, cancel := signalContext(opts.Signals)
	defer cancel()
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

func signalContext(signals []os.Signal) (context.Context, context.CancelFunc) {
	if len(signals) == 0 {
		return context.WithCancel(context.Background())
	}
	return signal.NotifyContext(context.Background(), signals...)
}

type serviceExit struct {
	name string
	err  error
}

// Run 并发启动全部服务并阻塞到首个退出或上下文取消
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(r.services))
	for _, svc := range r.services {
		go func(svc Service) {
			if log != nil {
				log.Infow("service_start", "service", svc.Name())
			}
			exits <- serviceExit{name: svc.Name(), err: svc.Start(runCtx)}
		}(svc)
	}

	var cause error
	select {
	case <-runCtx.Done():
		cause = runCtx.Err()
	case first := <-exits:
		cause = first.err
		if log != nil {
			log.Infow("service_exit", "service", first.name, "error", first.err)
		}
	}
	cancel()

	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	// 逆序停机：先停入口流量，再停后台消费
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(stopCtx); err != nil && log != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}

	if errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}
