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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// mockCache is an in-memory ICache for tests
type mockCache struct {
	mu    sync.Mutex
	data  map[string]string
	evals int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if val, ok := m.data[key]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *mockCache) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockCache) SetNX(ctx context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx, "setnx", key, value)
	if _, ok := m.data[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	m.data[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (m *mockCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetVal(n)
	return cmd
}

func (m *mockCache) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx, "exists")
	cmd.SetVal(n)
	return cmd
}

func (m *mockCache) TTL(ctx context.Context, key string) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(ctx, time.Second, "ttl", key)
	cmd.SetVal(time.Hour)
	return cmd
}

// Eval emulates the compare-and-delete release script.
func (m *mockCache) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evals++
	cmd := redis.NewCmd(ctx, "eval")
	if m.data[keys[0]] == args[0].(string) {
		delete(m.data, keys[0])
		cmd.SetVal(int64(1))
		return cmd
	}
	cmd.SetVal(int64(0))
	return cmd
}

type verifyView struct {
	Sequence string `json:"sequence"`
	State    string `json:"state"`
}

func TestCachedQuery_MissThenHit(t *testing.T) {
	mc := newMockCache()
	calls := 0
	cq := NewCachedQuery(mc, "verify:", time.Minute, func(ctx context.Context, key string) (verifyView, error) {
		calls++
		return verifyView{Sequence: "MBR/00001", State: "active"}, nil
	})

	for i := 0; i < 2; i++ {
		v, err := cq.Get(context.Background(), "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Sequence != "MBR/00001" {
			t.Errorf("unexpected value %+v", v)
		}
	}
	if calls != 1 {
		t.Errorf("query called %d times, want 1", calls)
	}

	if err := cq.Invalidate(context.Background(), "tok"); err != nil {
		t.Fatal(err)
	}
	if _, err := mc.Get(context.Background(), "verify:tok").Result(); !errors.Is(err, redis.Nil) {
		t.Error("cache should be deleted")
	}
}

func TestCachedQuery_NilCache(t *testing.T) {
	calls := 0
	cq := NewCachedQuery[verifyView](nil, "verify:", 0, func(ctx context.Context, key string) (verifyView, error) {
		calls++
		return verifyView{}, nil
	})
	_, _ = cq.Get(context.Background(), "a")
	_, _ = cq.Get(context.Background(), "a")
	if calls != 2 {
		t.Errorf("expected 2 calls without cache, got %d", calls)
	}
}

func TestCachedQuery_QueryError(t *testing.T) {
	cq := NewCachedQuery(newMockCache(), "verify:", time.Minute, func(ctx context.Context, key string) (verifyView, error) {
		return verifyView{}, errors.New("database error")
	})
	if _, err := cq.Get(context.Background(), "x"); err == nil {
		t.Error("expected error from query")
	}
}

func TestLocker_AcquireRelease(t *testing.T) {
	mc := newMockCache()
	l := NewLocker(mc)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "membership:lock:renewal", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := l.Acquire(ctx, "membership:lock:renewal", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Errorf("second Acquire() error = %v, want ErrLockHeld", err)
	}

	release()
	release()
	if mc.evals != 1 {
		t.Errorf("release ran %d times, want 1", mc.evals)
	}
	if _, err := l.Acquire(ctx, "membership:lock:renewal", time.Minute); err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
}

func TestLocker_NoCache(t *testing.T) {
	release, err := NewLocker(nil).Acquire(context.Background(), "k", time.Second)
	if err != nil || release == nil {
		t.Fatalf("expected no-op lock, got %v", err)
	}
	release()
}

func TestLocalCache_SetGetExpire(t *testing.T) {
	lc := NewLocalCache(LocalConfig{TTL: time.Minute})
	now := time.Now()
	lc.now = func() time.Time { return now }

	big := make([]byte, 200*1024)
	big[0], big[len(big)-1] = 0x25, 0x46
	lc.Set("card:1", big)

	got, ok := lc.Get("card:1")
	if !ok || len(got) != len(big) || got[len(got)-1] != 0x46 {
		t.Fatalf("Get() = %d bytes, ok=%v", len(got), ok)
	}

	lc.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := lc.Get("card:1"); ok {
		t.Error("expected entry to be expired")
	}
}

func TestLocalCache_GetOrLoadCollapses(t *testing.T) {
	lc := NewLocalCache(LocalConfig{})
	var loads int32
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := lc.GetOrLoad(context.Background(), "card:2", func(ctx context.Context) ([]byte, error) {
				atomic.AddInt32(&loads, 1)
				time.Sleep(20 * time.Millisecond)
				return []byte("%PDF"), nil
			})
			if err != nil || string(v) != "%PDF" {
				t.Errorf("GetOrLoad() = %q, %v", v, err)
			}
		}()
	}
	close(start)
	wg.Wait()
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("load called %d times, want 1", n)
	}
}
