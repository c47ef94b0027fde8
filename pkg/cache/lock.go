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
	"errors"
	"time"

	"github.com/go-arcade/membership/pkg/id"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock is held by another process")

// releaseScript deletes the key only when it still carries our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// Locker is a redis advisory lock. A Locker with no cache always succeeds.
type Locker struct {
	cache ICache
}

func NewLocker(cache ICache) *Locker {
	return &Locker{cache: cache}
}

// Acquire takes key for ttl. The returned release func is safe to call
// more than once and only removes a lock this call still owns.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l == nil || l.cache == nil {
		return func() {}, nil
	}
	token := id.GetUUIDWithoutDashes()
	ok, err := l.cache.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		_ = l.cache.Eval(context.WithoutCancel(ctx), releaseScript, []string{key}, token).Err()
	}, nil
}
