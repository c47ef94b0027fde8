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

package repo

import (
	"context"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
)

type IEffectLogRepository interface {
	Create(ctx context.Context, entry *model.EffectLog) error
	ListByMembership(ctx context.Context, membershipId string) ([]*model.EffectLog, error)
}

type EffectLogRepo struct {
	database.IDatabase
}

func NewEffectLogRepo(db database.IDatabase) IEffectLogRepository {
	return &EffectLogRepo{
		IDatabase: db,
	}
}

func (er *EffectLogRepo) Create(ctx context.Context, entry *model.EffectLog) error {
	return conn(ctx, er).Table(entry.TableName()).Create(entry).Error
}

func (er *EffectLogRepo) ListByMembership(ctx context.Context, membershipId string) ([]*model.EffectLog, error) {
	var list []*model.EffectLog
	var entry model.EffectLog
	err := conn(ctx, er).Table(entry.TableName()).
		Where("membership_id = ?", membershipId).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
