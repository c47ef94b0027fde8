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
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
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
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀, 如 MEMBERSHIP_DATABASE_DSN 覆盖 database.dsn
const EnvPrefix = "MEMBERSHIP"

type AppConfig struct {
	Log        log.Conf
	Http       http.Http
	Database   database.Database
	Redis      cache.Redis
	LocalCache cache.LocalConfig
	Storage    storage.Conf
	Notify     notify.Conf
	Queue      queue.Conf
	Card       card.Conf
	Trace      trace.Conf
	Metrics    metrics.MetricsConfig
	Pprof      pprof.PprofConfig
	Membership service.MembershipConf
	Renewal    service.RenewalConf
	Billing    service.BillingConf
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

// NewConf 只加载一次, 加载失败直接 panic
func NewConf(confDir string) AppConfig {
	once.Do(func() {
		c, err := LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		mu.Lock()
		cfg = c
		mu.Unlock()
	})
	return Current()
}

// Current 返回最近一次成功加载的配置
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {
	var c AppConfig

	config := viper.New()
	config.SetConfigFile(confDir)
	config.SetEnvPrefix(EnvPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	if err := config.ReadInConfig(); err != nil {
		return c, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := config.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	// 热更新只替换 Current(), 已注入的组件保持启动时的配置
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("The configuration changes, re-analyze the configuration file: %s", e.Name)
		var next AppConfig
		if err := config.Unmarshal(&next); err != nil {
			log.Warnw("failed to unmarshal configuration file", "path", e.Name, "error", err)
			return
		}
		mu.Lock()
		cfg = next
		mu.Unlock()
	})
	config.WatchConfig()

	log.Infow("config file loaded",
		"path", confDir,
	)
	return c, nil
}
