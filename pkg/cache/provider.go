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

package cache

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供缓存依赖（Redis + 本地 FastCache）
var ProviderSet = wire.NewSet(
	ProvideRedis,
	ProvideICache,
	ProvideLocker,
	ProvideLocalCache,
)

// ProvideRedis 提供 Redis 客户端，未启用时为 nil
func ProvideRedis(conf Redis) (redis.UniversalClient, error) {
	return NewRedis(conf)
}

// ProvideICache 提供 ICache 接口实例
func ProvideICache(client redis.UniversalClient) ICache {
	if client == nil {
		return nil
	}
	return client
}

// ProvideLocker 提供分布式锁
func ProvideLocker(c ICache) *Locker {
	return NewLocker(c)
}

// ProvideLocalCache 提供本地缓存
func ProvideLocalCache(conf LocalConfig) *LocalCache {
	return NewLocalCache(conf)
}
