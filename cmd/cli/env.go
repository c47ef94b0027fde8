package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/membership/internal/engine/config"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/internal/pkg/card"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/internal/pkg/queue"
	"github.com/go-arcade/membership/internal/pkg/storage"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/database"
	"github.com/go-arcade/membership/pkg/log"
)

// env 命令行共用的运行环境, 不启动 HTTP 与任务队列, 会员卡同步投递
type env struct {
	conf     config.AppConfig
	repos    *repo.Repositories
	services *service.Services
	cleanups []func()
}

func (e *env) Close() {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i]()
	}
}

func newEnv() (*env, error) {
	conf, err := config.LoadConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	e := &env{conf: conf}

	logger, err := log.ProvideLogger(&conf.Log)
	if err != nil {
		return nil, err
	}
	manager, closeDB, err := database.ProvideManager(conf.Database, logger)
	if err != nil {
		return nil, err
	}
	e.cleanups = append(e.cleanups, closeDB)
	e.repos = repo.NewRepositories(database.ProvideIDatabase(manager))

	client, err := cache.ProvideRedis(conf.Redis)
	if err != nil {
		e.Close()
		return nil, err
	}
	if client != nil {
		e.cleanups = append(e.cleanups, func() { _ = client.Close() })
	}
	icache := cache.ProvideICache(client)

	notifier, closeNotify, err := notify.ProvideNotifyManager(conf.Notify)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.cleanups = append(e.cleanups, closeNotify)

	renderer, err := card.ProvideRenderer(conf.Card)
	if err != nil {
		e.Close()
		return nil, err
	}
	store, err := storage.ProvideStorage(conf.Storage)
	if err != nil {
		e.Close()
		return nil, err
	}

	httpConf := conf.Http
	httpConf.SetDefaults()
	// 不启动 asynq worker, 会员卡同步投递; 不采集指标
	var queueServer *queue.Server
	e.services, err = service.ProvideServices(e.repos, icache, cache.ProvideLocker(icache),
		cache.ProvideLocalCache(conf.LocalCache), notifier, renderer, queueServer, store, nil,
		httpConf.Auth, conf.Membership, conf.Renewal, conf.Billing)
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// withEnv 打开运行环境执行 fn, 结束后释放资源
func withEnv(fn func(ctx context.Context, e *env) error) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(context.Background(), e)
}

func printJSON(v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}
