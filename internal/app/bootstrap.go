package app

import (
	"errors"
	"fmt"

	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/provider"
	"github.com/kharido-next/internal/router"
	"github.com/kharido-next/internal/worker"
)

// BuildRunner 按运行模式组装服务组
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if mode != ModeWorker {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}
	// all 模式下队列未启用时只跑 HTTP；显式 worker 模式则视为配置错误
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	if len(services) == 0 {
		return nil, errors.New("no services initialized")
	}
	return NewRunner(services...), nil
}

// Run 启动全部服务并阻塞至退出信号
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return cfg.Server.Host + ":" + cfg.Server.Port
}
