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
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/membership/pkg/id"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/hibiken/asynq"
)

// Server 队列服务器, 负责任务发布, 不执行任务
type Server struct {
	client   *asynq.Client
	config   *Config
	redisOpt asynq.RedisConnOpt // 用于创建 Inspector
}

// NewQueueServer 创建队列服务器
func NewQueueServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	redisOpt := &redisConnOptWrapper{client: cfg.RedisClient}
	server := &Server{
		client:   asynq.NewClient(redisOpt),
		config:   cfg,
		redisOpt: redisOpt,
	}

	log.Infow("queue server created", "queues", cfg.Queues)
	return server, nil
}

// Enqueue 入队任务
func (s *Server) Enqueue(ctx context.Context, payload *TaskPayload, queueName string) error {
	if payload.TaskID == "" {
		payload.TaskID = id.GetXid()
	}
	payload.EnqueuedAt = time.Now().Unix()
	data, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	if queueName == "" {
		queueName = s.config.DefaultQueue
		if queueName == "" {
			queueName = Default
		}
	}

	task := asynq.NewTask(payload.TaskType, data)
	opts := []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(s.config.MaxRetry),
		asynq.TaskID(payload.TaskID),
	}
	if s.config.TaskTimeout > 0 {
		opts = append(opts, asynq.Timeout(s.config.TaskTimeout))
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	log.Infow("task enqueued",
		"task_id", info.ID,
		"task_type", payload.TaskType,
		"queue", queueName,
		"membership_id", payload.MembershipId,
	)
	return nil
}

// EnqueueCardDelivery 投递会员卡片异步发送任务
func (s *Server) EnqueueCardDelivery(ctx context.Context, membershipId string) error {
	return s.Enqueue(ctx, &TaskPayload{
		TaskType:     TaskTypeCardDelivery,
		MembershipId: membershipId,
	}, Default)
}

// GetRedisConnOpt 获取 Redis 连接选项（用于创建 Inspector）
func (s *Server) GetRedisConnOpt() asynq.RedisConnOpt {
	return s.redisOpt
}

// Inspector returns an asynq inspector sharing the server's redis client
func (s *Server) Inspector() *asynq.Inspector {
	return asynq.NewInspector(s.redisOpt)
}

func (s *Server) Close() error {
	return s.client.Close()
}
