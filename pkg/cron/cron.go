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

package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/safe"
	"github.com/redis/go-redis/v9"
	robfig "github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// MetricsRecorder receives job execution statistics.
type MetricsRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateNextRun(jobName string, nextRun time.Time)
	UpdateJobsCount(count int)
}

var (
	recorderMu sync.RWMutex
	recorder   MetricsRecorder
)

// SetMetricsRecorder installs the recorder used by every Cron instance.
func SetMetricsRecorder(r MetricsRecorder) {
	recorderMu.Lock()
	defer recorderMu.Unlock()
	recorder = r
}

func getRecorder() MetricsRecorder {
	recorderMu.RLock()
	defer recorderMu.RUnlock()
	return recorder
}

// Entry describes a registered job.
type Entry struct {
	ID   robfig.EntryID
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// Cron wraps robfig/cron with named jobs, an optional redis run lock
// and metrics reporting.
type Cron struct {
	mu          sync.Mutex
	inner       *robfig.Cron
	location    *time.Location
	redisClient redis.UniversalClient
	lockTTL     time.Duration
	names       map[string]robfig.EntryID
	specs       map[string]string
	running     bool
	seq         int

	ErrorLog *log.Logger
}

// OpOption configures a Cron.
type OpOption func(*Cron)

// WithRedisClient makes each run acquire "cron:lock:{name}" so only one
// process executes a job per tick.
func WithRedisClient(client redis.UniversalClient) OpOption {
	return func(c *Cron) {
		c.redisClient = client
	}
}

// WithLockTTL sets the redis lock expiry.
func WithLockTTL(ttl time.Duration) OpOption {
	return func(c *Cron) {
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

// WithLocation sets the time zone used to evaluate specs.
func WithLocation(loc *time.Location) OpOption {
	return func(c *Cron) {
		if loc != nil {
			c.location = loc
		}
	}
}

// New creates a scheduler. Specs use the standard five fields with an
// optional leading seconds field and descriptors such as @daily.
func New(opts ...OpOption) *Cron {
	c := &Cron{
		location: time.Local,
		lockTTL:  5 * time.Minute,
		names:    make(map[string]robfig.EntryID),
		specs:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	parser := robfig.NewParser(robfig.SecondOptional | robfig.Minute | robfig.Hour |
		robfig.Dom | robfig.Month | robfig.Dow | robfig.Descriptor)
	c.inner = robfig.New(robfig.WithLocation(c.location), robfig.WithParser(parser))
	return c
}

// NewWithLocation creates a scheduler in the given time zone.
func NewWithLocation(loc *time.Location, opts ...OpOption) *Cron {
	return New(append(opts, WithLocation(loc))...)
}

// AddFunc registers fn under spec. The first name is used as job name.
func (c *Cron) AddFunc(spec string, fn func(ctx context.Context) error, names ...string) error {
	return c.AddJob(spec, JobFunc(fn), names...)
}

// AddJob registers job under spec.
func (c *Cron) AddJob(spec string, job Job, names ...string) error {
	if job == nil {
		return errors.New("cron: nil job")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	name := ""
	if len(names) > 0 && names[0] != "" {
		name = names[0]
	} else {
		c.seq++
		name = fmt.Sprintf("job-%d", c.seq)
	}
	if _, exists := c.names[name]; exists {
		return fmt.Errorf("cron: job %q already registered", name)
	}

	id, err := c.inner.AddFunc(spec, func() { c.run(name, job) })
	if err != nil {
		return fmt.Errorf("cron: invalid spec %q: %w", spec, err)
	}
	c.names[name] = id
	c.specs[name] = spec

	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(c.names))
	}
	return nil
}

// Remove unregisters a job by name.
func (c *Cron) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.names[name]
	if !ok {
		return fmt.Errorf("cron: job %q not found", name)
	}
	c.inner.Remove(id)
	delete(c.names, name)
	delete(c.specs, name)
	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(c.names))
	}
	return nil
}

// Entries returns the registered jobs.
func (c *Cron) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entry, 0, len(c.names))
	for name, id := range c.names {
		e := c.inner.Entry(id)
		out = append(out, &Entry{ID: id, Name: name, Spec: c.specs[name], Next: e.Next, Prev: e.Prev})
	}
	return out
}

// Location returns the scheduler time zone.
func (c *Cron) Location() *time.Location { return c.location }

// Start starts the scheduler in its own goroutine.
func (c *Cron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.inner.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (c *Cron) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()
	<-c.inner.Stop().Done()
}

// Running reports whether the scheduler is started.
func (c *Cron) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Cron) run(name string, job Job) {
	ctx := context.Background()
	if c.redisClient != nil {
		ok, err := c.redisClient.SetNX(ctx, "cron:lock:"+name, time.Now().Unix(), c.lockTTL).Result()
		if err != nil {
			c.logError("cron job %s lock failed: %v", name, err)
			return
		}
		if !ok {
			return
		}
		defer c.redisClient.Del(ctx, "cron:lock:"+name)
	}

	start := time.Now()
	err := safe.Call(func() error { return job.Run(ctx) })
	if err != nil {
		c.logError("cron job %s failed: %v", name, err)
	}

	if r := getRecorder(); r != nil {
		r.RecordJobRun(name, time.Since(start), err)
		c.mu.Lock()
		id, ok := c.names[name]
		c.mu.Unlock()
		if ok {
			r.UpdateNextRun(name, c.inner.Entry(id).Next)
		}
	}
}

func (c *Cron) logError(format string, args ...any) {
	if c.ErrorLog != nil && c.ErrorLog.Log != nil {
		c.ErrorLog.Log.Errorf(format, args...)
		return
	}
	log.Errorf(format, args...)
}
