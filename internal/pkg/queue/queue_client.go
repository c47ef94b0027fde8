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
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/hibiken/asynq"
)

// Client 队列客户端（worker）
// 负责执行任务，不发布任务
type Client struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	config   *Config
	handlers map[string]TaskHandler
}

// NewQueueClient 创建队列客户端
func NewQueueClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = defaultQueues()
	}

	var logLevel asynq.LogLevel
	if cfg.LogLevel != "" {
		if err := logLevel.Set(cfg.LogLevel); err != nil {
			log.Warnw("invalid log level, using default info", "logLevel", cfg.LogLevel, "error", err)
			logLevel = asynq.InfoLevel
		}
	} else {
		logLevel = asynq.InfoLevel
	}

	server := asynq.NewServer(&redisConnOptWrapper{client: cfg.RedisClient}, asynq.Config{
		Concurrency:     cfg.Concurrency,
		StrictPriority:  cfg.StrictPriority,
		Queues:          queues,
		Logger:          &asynqLoggerAdapter{}, // 使用 pkg/log 作为 logger
		LogLevel:        logLevel,
		RetryDelayFunc:  asynq.DefaultRetryDelayFunc,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})

	client := &Client{
		server:   server,
		mux:      asynq.NewServeMux(),
		config:   cfg,
		handlers: make(map[string]TaskHandler),
	}

	log.Infow("queue client created",
		"concurrency", cfg.Concurrency,
		"queues", queues,
	)
	return client, nil
}

// RegisterHandler 注册任务处理器
func (c *Client) RegisterHandler(taskType string, handler TaskHandler) {
	c.handlers[taskType] = handler
	c.mux.HandleFunc(taskType, wrapHandler(handler))
	log.Infow("task handler registered", "task_type", taskType)
}

// wrapHandler 解码 payload 并记录执行日志
func wrapHandler(handler TaskHandler) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var taskPayload TaskPayload
		if err := sonic.Unmarshal(t.Payload(), &taskPayload); err != nil {
			// 无法解码的任务重试也没有意义
			return fmt.Errorf("unmarshal task payload: %v: %w", err, asynq.SkipRetry)
		}

		log.Infow("processing task",
			"task_id", taskPayload.TaskID,
			"task_type", taskPayload.TaskType,
			"membership_id", taskPayload.MembershipId,
		)

		if err := handler.HandleTask(ctx, &taskPayload); err != nil {
			log.Errorw("task execution failed",
				"task_id", taskPayload.TaskID,
				"task_type", taskPayload.TaskType,
				"error", err,
			)
			return err
		}

		log.Infow("task execution completed",
			"task_id", taskPayload.TaskID,
			"task_type", taskPayload.TaskType,
		)
		return nil
	}
}

// Start 启动 worker, 不阻塞
func (c *Client) Start() error {
	log.Info("starting queue client")
	return c.server.Start(c.mux)
}

// Shutdown 关闭任务队列客户端
func (c *Client) Shutdown() {
	log.Info("shutting down queue client")
	c.server.Shutdown()
}

// ProcessTask runs a task through the registered handlers without redis
func (c *Client) ProcessTask(ctx context.Context, t *asynq.Task) error {
	return c.mux.ProcessTask(ctx, t)
}
