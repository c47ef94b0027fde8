//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/membership/internal/engine/bootstrap"
	"github.com/go-arcade/membership/internal/engine/config"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/engine/router"
	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/internal/pkg/card"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/internal/pkg/queue"
	"github.com/go-arcade/membership/internal/pkg/storage"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/database"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/metrics"
	"github.com/go-arcade/membership/pkg/pprof"
	"github.com/go-arcade/membership/pkg/trace"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 基础设施
		log.ProviderSet,
		trace.ProviderSet,
		database.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		pprof.ProviderSet,
		storage.ProviderSet,
		notify.ProviderSet,
		card.ProviderSet,
		queue.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		http.ProviderSet,
		// 应用层
		bootstrap.ProviderSet,
	))
}
