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
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conf 任务队列配置
type Conf struct {
	Enable          bool           `mapstructure:"enable"`
	Concurrency     int            `mapstructure:"concurrency"`
	Priority        map[string]int `mapstructure:"priority"`
	StrictPriority  bool           `mapstructure:"strictPriority"`
	LogLevel        string         `mapstructure:"logLevel"`
	MaxRetry        int            `mapstructure:"maxRetry"`
	TaskTimeout     int            `mapstructure:"taskTimeout"`     // 秒
	ShutdownTimeout int            `mapstructure:"shutdownTimeout"` // 秒
}

// Config queue 运行时配置
type Config struct {
	RedisClient     redis.UniversalClient // 复用已有的 Redis 客户端
	Concurrency     int
	StrictPriority  bool
	Queues          map[string]int // 队列名 -> 优先级权重
	DefaultQueue    string
	LogLevel        string
	MaxRetry        int
	TaskTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// TaskPayload 任务负载
type TaskPayload struct {
	TaskID       string         `json:"task_id"`
	TaskType     string         `json:"task_type"`
	MembershipId string         `json:"membership_id"`
	EnqueuedAt   int64          `json:"enqueued_at"`
	Data         map[string]any `json:"data,omitempty"`
}

// TaskHandler 任务处理器接口
type TaskHandler interface {
	HandleTask(ctx context.Context, payload *TaskPayload) error
}

// TaskHandlerFunc 任务处理器函数类型
type TaskHandlerFunc func(ctx context.Context, payload *TaskPayload) error

func (f TaskHandlerFunc) HandleTask(ctx context.Context, payload *TaskPayload) error {
	return f(ctx, payload)
}

// 任务类型
const (
	TaskTypeCardDelivery = "membership:card_delivery"
)

// 队列名称常量
const (
	Critical = "critical"
	Default  = "default"
	Low      = "low"
)

func defaultQueues() map[string]int {
	return map[string]int{
		Critical: 6,
		Default:  3,
		Low:      1,
	}
}

// NewConfig 将文件配置转换为运行时配置
func NewConfig(conf Conf, redisClient redis.UniversalClient) *Config {
	queues := conf.Priority
	if len(queues) == 0 {
		queues = defaultQueues()
	}
	concurrency := conf.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	maxRetry := conf.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 3
	}
	timeout := time.Duration(conf.TaskTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	shutdown := time.Duration(conf.ShutdownTimeout) * time.Second
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	return &Config{
		RedisClient:     redisClient,
		Concurrency:     concurrency,
		StrictPriority:  conf.StrictPriority,
		Queues:          queues,
		DefaultQueue:    Default,
		LogLevel:        conf.LogLevel,
		MaxRetry:        maxRetry,
		TaskTimeout:     timeout,
		ShutdownTimeout: shutdown,
	}
}

// redisConnOptWrapper 包装已有的 Redis 客户端实现 RedisConnOpt 接口
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

// MakeRedisClient 实现 RedisConnOpt 接口
func (r *redisConnOptWrapper) MakeRedisClient() interface{} {
	return r.client
}
