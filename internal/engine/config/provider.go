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

package config

import (
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

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideHttpAuth,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideLocalCacheConfig,
	ProvideStorageConfig,
	ProvideNotifyConfig,
	ProvideQueueConfig,
	ProvideCardConfig,
	ProvideTraceConfig,
	ProvideMetricsConfig,
	ProvidePprofConfig,
	ProvideMembershipConfig,
	ProvideRenewalConfig,
	ProvideBillingConfig,
)

// ProvideConf 提供应用配置
func ProvideConf(configPath string) *AppConfig {
	c := NewConf(configPath)
	return &c
}

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(appConf *AppConfig) http.Http {
	httpConfig := appConf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

// ProvideHttpAuth 提供门户登录令牌配置
func ProvideHttpAuth(httpConfig http.Http) http.Auth {
	return httpConfig.Auth
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

// ProvideRedisConfig 提供 Redis 配置
func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideLocalCacheConfig(appConf *AppConfig) cache.LocalConfig {
	return appConf.LocalCache
}

// ProvideStorageConfig 提供对象存储配置
func ProvideStorageConfig(appConf *AppConfig) storage.Conf {
	return appConf.Storage
}

func ProvideNotifyConfig(appConf *AppConfig) notify.Conf {
	return appConf.Notify
}

func ProvideQueueConfig(appConf *AppConfig) queue.Conf {
	return appConf.Queue
}

func ProvideCardConfig(appConf *AppConfig) card.Conf {
	return appConf.Card
}

// ProvideTraceConfig 提供链路追踪配置
func ProvideTraceConfig(appConf *AppConfig) trace.Conf {
	traceConfig := appConf.Trace
	traceConfig.SetDefaults()
	return traceConfig
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	metricsConfig := appConf.Metrics
	metricsConfig.SetDefaults()
	return metricsConfig
}

// ProvidePprofConfig 提供 Pprof 配置
func ProvidePprofConfig(appConf *AppConfig) pprof.PprofConfig {
	pprofConfig := appConf.Pprof
	pprofConfig.SetDefaults()
	return pprofConfig
}

// ProvideMembershipConfig 提供会员业务配置, 默认值在 service.NewServices 中补齐
func ProvideMembershipConfig(appConf *AppConfig) service.MembershipConf {
	return appConf.Membership
}

func ProvideRenewalConfig(appConf *AppConfig) service.RenewalConf {
	return appConf.Renewal
}

func ProvideBillingConfig(appConf *AppConfig) service.BillingConf {
	return appConf.Billing
}
