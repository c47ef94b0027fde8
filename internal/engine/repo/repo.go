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
	"gorm.io/gorm"
)

// Repositories 统一管理所有 repository
type Repositories struct {
	db         database.IDatabase
	Membership IMembershipRepository
	Contact    IContactRepository
	Account    IAccountRepository
	Invitation IInvitationRepository
	Invoice    IInvoiceRepository
	Sequence   ISequenceRepository
	EffectLog  IEffectLogRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		db:         db,
		Membership: NewMembershipRepo(db),
		Contact:    NewContactRepo(db),
		Account:    NewAccountRepo(db),
		Invitation: NewInvitationRepo(db),
		Invoice:    NewInvoiceRepo(db),
		Sequence:   NewSequenceRepo(db),
		EffectLog:  NewEffectLogRepo(db),
	}
}

type txKey struct{}

// Transaction 在一个事务中执行 fn, fn 内使用传入的 ctx 调用的 repository 都会加入该事务
// 已处于事务中时直接复用外层事务
func (r *Repositories) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.db.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// AutoMigrate 迁移全部表结构
func (r *Repositories) AutoMigrate(ctx context.Context) error {
	return r.db.Database().WithContext(ctx).AutoMigrate(model.Models()...)
}

// conn 返回 ctx 中的事务, 不存在时返回普通连接
func conn(ctx context.Context, db database.IDatabase) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.Database().WithContext(ctx)
}

// page 规范化分页参数
func page(pageNum, pageSize int) (offset, limit int) {
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return (pageNum - 1) * pageSize, pageSize
}
