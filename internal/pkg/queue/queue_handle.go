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

	"github.com/go-arcade/membership/pkg/log"
)

// CardDeliverer renders and emails the card of one membership
type CardDeliverer interface {
	DeliverCard(ctx context.Context, membershipId string) error
}

// CardDeliveryHandler 会员卡片发送任务处理器
type CardDeliveryHandler struct {
	deliverer CardDeliverer
}

func NewCardDeliveryHandler(deliverer CardDeliverer) *CardDeliveryHandler {
	return &CardDeliveryHandler{deliverer: deliverer}
}

func (h *CardDeliveryHandler) HandleTask(ctx context.Context, payload *TaskPayload) error {
	if payload.MembershipId == "" {
		return fmt.Errorf("membership id is required")
	}
	log.Infow("handling card delivery task",
		"task_id", payload.TaskID,
		"membership_id", payload.MembershipId,
	)
	return h.deliverer.DeliverCard(ctx, payload.MembershipId)
}
