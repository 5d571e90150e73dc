package app

import (
	"errors"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/router"
	"github.com/giftvault/internal/worker"
)

// BuildRunner 按运行模式组装服务：API、队列消费者或两者同进程。
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		services = append(services, buildAPIService(cfg, container))
	}
	if mode == ModeAll || mode == ModeWorker {
		workerService, err := buildWorkerService(cfg, container)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

func buildAPIService(cfg *config.Config, container *provider.Container) Service {
	engine := router.SetupRouter(cfg, container)
	return NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine)
}

func buildWorkerService(cfg *config.Config, container *provider.Container) (Service, error) {
	consumer := worker.NewConsumer(container)
	return worker.NewService(&cfg.Queue, consumer)
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
	)
	return RunWithOptions(runner, opts)
}
