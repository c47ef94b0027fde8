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
	"errors"
	"fmt"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ISequenceRepository interface {
	Next(ctx context.Context, code, prefix string, padding int) (string, error)
}

type SequenceRepo struct {
	database.IDatabase
}

func NewSequenceRepo(db database.IDatabase) ISequenceRepository {
	return &SequenceRepo{
		IDatabase: db,
	}
}

// Next 分配下一个编号, 行锁保证并发下不重复. 在外层事务中调用时递增随外层一起提交,
// 外层回滚后该编号会被下一次调用复用, 不会留下空号
// prefix 与 padding 只在首次创建该 code 时写入
func (sr *SequenceRepo) Next(ctx context.Context, code, prefix string, padding int) (string, error) {
	var value string
	err := conn(ctx, sr).Transaction(func(tx *gorm.DB) error {
		var seq model.Sequence
		err := tx.Table(seq.TableName()).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = model.Sequence{Code: code, Prefix: prefix, Padding: padding, NextNumber: 1}
			if err := tx.Table(seq.TableName()).Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		number := seq.NextNumber
		res := tx.Table(seq.TableName()).
			Where("code = ? AND next_number = ?", code, number).
			Update("next_number", number+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("sequence %s: concurrent allocation of %d", code, number)
		}
		value = fmt.Sprintf("%s%0*d", seq.Prefix, seq.Padding, number)
		return nil
	})
	return value, err
}
