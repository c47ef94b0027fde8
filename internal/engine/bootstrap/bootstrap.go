// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/membership/internal/engine/config"
	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/internal/pkg/queue"
	"github.com/go-arcade/membership/pkg/cron"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/metrics"
	"github.com/go-arcade/membership/pkg/pprof"
	"github.com/go-arcade/membership/pkg/safe"
	"github.com/go-arcade/membership/pkg/trace"
	"github.com/google/wire"
	"github.com/hibiken/asynq"
)

// RenewalJobName 续费任务在调度器中的名称, 也是 cron 指标的 job 标签
const RenewalJobName = "membership_renewal"

const queueStatsInterval = 15 * time.Second

// ProviderSet 提供应用层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideCron,
	NewApp,
)

type App struct {
	HttpServer *http.Server
	Services   *service.Services
	Queue      *queue.Client
	Cron       *cron.Cron
	Metrics    *metrics.Server
	QueueStats *metrics.QueueMetricsCollector // 队列或指标未启用时为 nil
	Pprof      *pprof.Server
	Tracing    *trace.Tracing
	Logger     *log.Logger
	AppConf    *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

// ProvideCron 创建调度器, 续费任务自带分布式锁, 这里不再加锁
func ProvideCron(logger *log.Logger) *cron.Cron {
	c := cron.New()
	c.ErrorLog = logger
	return c
}

func NewApp(
	httpServer *http.Server,
	services *service.Services,
	queueClient *queue.Client,
	queueServer *queue.Server,
	scheduler *cron.Cron,
	metricsServer *metrics.Server,
	pprofServer *pprof.Server,
	tracing *trace.Tracing,
	logger *log.Logger,
	appConf *config.AppConfig,
) (*App, func(), error) {
	app := &App{
		HttpServer: httpServer,
		Services:   services,
		Queue:      queueClient,
		Cron:       scheduler,
		Metrics:    metricsServer,
		Pprof:      pprofServer,
		Tracing:    tracing,
		Logger:     logger,
		AppConf:    appConf,
	}

	renewal := appConf.Renewal
	renewal.SetDefaults()
	if renewal.Enable {
		if err := scheduler.AddFunc(renewal.Spec, RenewalJob(services.Renewal), RenewalJobName); err != nil {
			return nil, nil, err
		}
		log.Infow("renewal job scheduled", "spec", renewal.Spec)
	}

	if queueClient != nil {
		queueClient.RegisterHandler(queue.TaskTypeCardDelivery, queue.NewCardDeliveryHandler(services.Cards))
	}

	var inspector *asynq.Inspector
	if queueServer != nil && metricsServer != nil && metricsServer.Enabled() {
		inspector = queueServer.Inspector()
		stats, err := metrics.NewQueueMetricsCollector(inspector, metricsServer.GetRegistry(),
			queue.Critical, queue.Default, queue.Low)
		if err != nil {
			_ = inspector.Close()
			return nil, nil, err
		}
		app.QueueStats = stats
	}

	cleanup := func() {
		if scheduler.Running() {
			scheduler.Stop()
		}
		if app.QueueStats != nil {
			app.QueueStats.Stop()
		}
		if inspector != nil {
			_ = inspector.Close()
		}
		if queueClient != nil {
			queueClient.Shutdown()
		}
	}
	return app, cleanup, nil
}

// RenewalJob 以当前日期执行一次续费扫描
func RenewalJob(renewals *service.RenewalService) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		report, err := renewals.RunDueRenewals(ctx, time.Now())
		if err != nil {
			return err
		}
		if report.InvoiceFailed > 0 || report.Failed > 0 {
			log.Warnw("renewal sweep finished with failures",
				"date", report.Date, "invoiceFailed", report.InvoiceFailed, "failed", report.Failed)
		}
		return nil
	}
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	return initApp(configFile)
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	logger := app.Logger.Log

	if err := app.Metrics.Start(); err != nil {
		logger.Errorw("metrics server failed to start", "error", err)
	}
	if err := app.Pprof.Start(); err != nil {
		logger.Errorw("pprof server failed to start", "error", err)
	}
	if app.Queue != nil {
		if err := app.Queue.Start(); err != nil {
			logger.Errorw("queue worker failed to start", "error", err)
		}
	}
	app.Cron.Start()
	if app.QueueStats != nil {
		app.QueueStats.Start(queueStatsInterval)
	}

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	safe.Go(func() {
		if err := app.HttpServer.Start(); err != nil {
			logger.Errorw("HTTP listener failed", "error", err)
			quit <- syscall.SIGTERM
		}
	})

	sig := <-quit
	logger.Infof("Received signal: %v, shutting down gracefully...", sig)

	// 先停止接收请求, 再停止后台任务
	_ = app.HttpServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Metrics.Stop(shutdownCtx); err != nil {
		logger.Warnw("metrics server shutdown error", "error", err)
	}
	if err := app.Pprof.Stop(shutdownCtx); err != nil {
		logger.Warnw("pprof server shutdown error", "error", err)
	}

	cleanup()
	logger.Info("Server shutdown complete")
}
