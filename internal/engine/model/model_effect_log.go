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

package model

import (
	"time"

	"gorm.io/datatypes"
)

// 非关键副作用类型
const (
	EffectAccountInvitation = "account_invitation"
	EffectApprovedNotice    = "approved_notice"
	EffectCardRender        = "card_render"
	EffectCardEmail         = "card_email"
)

// 副作用结果
const (
	EffectStatusOk      = "ok"
	EffectStatusSkipped = "skipped"
	EffectStatusFailed  = "failed"
)

// EffectLog 记录通知、卡片等尽力而为操作的结果
type EffectLog struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EffectId     string         `gorm:"column:effect_id;size:64;uniqueIndex" json:"effectId"`
	MembershipId string         `gorm:"column:membership_id;size:64;index" json:"membershipId"`
	Kind         string         `gorm:"column:kind;size:32" json:"kind"`
	Status       string         `gorm:"column:status;size:16" json:"status"`
	Detail       datatypes.JSON `gorm:"column:detail" json:"detail,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (EffectLog) TableName() string {
	return "t_effect_log"
}
