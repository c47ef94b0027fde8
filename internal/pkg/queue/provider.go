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

package queue

import (
	"github.com/go-arcade/membership/pkg/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供 queue 相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideQueueServer,
	ProvideQueueClient,
)

// ProvideConfig 提供 queue 配置, 未启用或没有 redis 时返回 nil
func ProvideConfig(conf Conf, redisClient redis.UniversalClient) *Config {
	if !conf.Enable {
		return nil
	}
	if redisClient == nil {
		log.Warn("task queue enabled but redis is disabled, card delivery runs inline")
		return nil
	}
	return NewConfig(conf, redisClient)
}

// ProvideQueueServer 提供任务发布端
func ProvideQueueServer(cfg *Config) (*Server, func(), error) {
	if cfg == nil {
		return nil, func() {}, nil
	}
	s, err := NewQueueServer(cfg)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// ProvideQueueClient 提供任务执行端
func ProvideQueueClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, nil
	}
	return NewQueueClient(cfg)
}
