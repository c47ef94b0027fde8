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
	"context"
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"golang.org/x/sync/singleflight"
)

// LocalConfig configures the in-process blob cache
type LocalConfig struct {
	MaxBytes int           `mapstructure:"maxBytes"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LocalCache keeps large byte blobs in memory with a TTL stamped in front of
// each value. Concurrent loads of the same key are collapsed.
type LocalCache struct {
	cache *fastcache.Cache
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

// NewLocalCache creates a LocalCache (default 32MB, 10 minutes).
func NewLocalCache(conf LocalConfig) *LocalCache {
	if conf.MaxBytes <= 0 {
		conf.MaxBytes = 32 * 1024 * 1024
	}
	if conf.TTL <= 0 {
		conf.TTL = 10 * time.Minute
	}
	return &LocalCache{
		cache: fastcache.New(conf.MaxBytes),
		ttl:   conf.TTL,
		now:   time.Now,
	}
}

// Get returns the blob for key if present and not expired.
func (lc *LocalCache) Get(key string) ([]byte, bool) {
	raw := lc.cache.GetBig(nil, []byte(key))
	if len(raw) < 8 {
		return nil, false
	}
	expireAt := int64(binary.BigEndian.Uint64(raw[:8]))
	if lc.now().UnixNano() > expireAt {
		lc.cache.Del([]byte(key))
		return nil, false
	}
	return raw[8:], true
}

// Set stores value under key.
func (lc *LocalCache) Set(key string, value []byte) {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(lc.now().Add(lc.ttl).UnixNano()))
	copy(buf[8:], value)
	lc.cache.SetBig([]byte(key), buf)
}

// Del removes key.
func (lc *LocalCache) Del(key string) {
	lc.cache.Del([]byte(key))
}

// GetOrLoad returns the cached blob or calls load once per key across
// concurrent callers and caches its result.
func (lc *LocalCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if v, ok := lc.Get(key); ok {
		return v, nil
	}
	v, err, _ := lc.group.Do(key, func() (any, error) {
		if v, ok := lc.Get(key); ok {
			return v, nil
		}
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		lc.Set(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Stats exposes fastcache statistics.
func (lc *LocalCache) Stats() fastcache.Stats {
	var s fastcache.Stats
	lc.cache.UpdateStats(&s)
	return s
}
