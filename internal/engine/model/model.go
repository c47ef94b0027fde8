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

/**
 * @file: model.go
 * @description: base model
 */

type BaseModel struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Day 返回 t 所在日期的 UTC 零点
func Day(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DayPtr 同 Day, 返回指针便于写入可空列
func DayPtr(t time.Time) *datatypes.Date {
	d := Day(t)
	return &d
}

// ParseDay 解析 2006-01-02 格式的日期
func ParseDay(s string) (datatypes.Date, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// FormatDay 格式化可空日期, nil 返回空字符串
func FormatDay(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(time.DateOnly)
}

// Models 返回需要迁移的全部模型
func Models() []any {
	return []any{
		&Membership{},
		&Contact{},
		&PortalAccount{},
		&Invitation{},
		&Invoice{},
		&InvoiceLine{},
		&InvoicePayment{},
		&Sequence{},
		&EffectLog{},
	}
}
