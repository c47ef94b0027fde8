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
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
	"github.com/go-arcade/membership/pkg/statemachine"
	"gorm.io/datatypes"
)

type IMembershipRepository interface {
	Create(ctx context.Context, m *model.Membership) error
	Get(ctx context.Context, membershipId string) (*model.Membership, error)
	GetByVerifyToken(ctx context.Context, token string) (*model.Membership, error)
	List(ctx context.Context, q model.MembershipQuery) ([]*model.Membership, int64, error)
	ListByContact(ctx context.Context, contactId string) ([]*model.Membership, error)
	ListDueForRenewal(ctx context.Context, today datatypes.Date) ([]*model.Membership, error)
	ListLapsed(ctx context.Context, cutoff datatypes.Date) ([]*model.Membership, error)
	Transit(ctx context.Context, membershipId string, from, to statemachine.MembershipState, fields map[string]any) (bool, error)
	ExtendEndDate(ctx context.Context, membershipId string, oldEnd, newEnd datatypes.Date) (bool, error)
}

type MembershipRepo struct {
	database.IDatabase
}

func NewMembershipRepo(db database.IDatabase) IMembershipRepository {
	return &MembershipRepo{
		IDatabase: db,
	}
}

func (mr *MembershipRepo) Create(ctx context.Context, m *model.Membership) error {
	return conn(ctx, mr).Table(m.TableName()).Create(m).Error
}

func (mr *MembershipRepo) Get(ctx context.Context, membershipId string) (*model.Membership, error) {
	var m model.Membership
	err := conn(ctx, mr).Table(m.TableName()).
		Where("membership_id = ?", membershipId).
		First(&m).Error
	return &m, err
}

func (mr *MembershipRepo) GetByVerifyToken(ctx context.Context, token string) (*model.Membership, error) {
	var m model.Membership
	err := conn(ctx, mr).Table(m.TableName()).
		Where("verify_token = ?", token).
		First(&m).Error
	return &m, err
}

// List 后台分页列表, 按创建时间倒序
func (mr *MembershipRepo) List(ctx context.Context, q model.MembershipQuery) ([]*model.Membership, int64, error) {
	var (
		list  []*model.Membership
		m     model.Membership
		total int64
	)
	query := conn(ctx, mr).Table(m.TableName())
	if q.State != "" {
		query = query.Where("state = ?", q.State)
	}
	if q.ContactId != "" {
		query = query.Where("contact_id = ?", q.ContactId)
	}
	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		query = query.Where("name LIKE ? OR sequence LIKE ? OR phone LIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := page(q.PageNum, q.PageSize)
	err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (mr *MembershipRepo) ListByContact(ctx context.Context, contactId string) ([]*model.Membership, error) {
	var list []*model.Membership
	var m model.Membership
	err := conn(ctx, mr).Table(m.TableName()).
		Where("contact_id = ?", contactId).
		Order("id DESC").
		Find(&list).Error
	return list, err
}

// ListDueForRenewal 状态为 active 且 end_date <= today
func (mr *MembershipRepo) ListDueForRenewal(ctx context.Context, today datatypes.Date) ([]*model.Membership, error) {
	var list []*model.Membership
	var m model.Membership
	err := conn(ctx, mr).Table(m.TableName()).
		Where("state = ? AND end_date IS NOT NULL AND end_date <= ?", statemachine.MembershipActive, today).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// ListLapsed 状态为 invoiced 且 last_invoice_date <= cutoff, 即发票逾期未付
func (mr *MembershipRepo) ListLapsed(ctx context.Context, cutoff datatypes.Date) ([]*model.Membership, error) {
	var list []*model.Membership
	var m model.Membership
	err := conn(ctx, mr).Table(m.TableName()).
		Where("state = ? AND last_invoice_date IS NOT NULL AND last_invoice_date <= ?", statemachine.MembershipInvoiced, cutoff).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// Transit 以 state 作为条件更新, 返回是否命中
func (mr *MembershipRepo) Transit(ctx context.Context, membershipId string, from, to statemachine.MembershipState, fields map[string]any) (bool, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["state"] = to
	updates["updated_at"] = time.Now()
	var m model.Membership
	res := conn(ctx, mr).Table(m.TableName()).
		Where("membership_id = ? AND state = ?", membershipId, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// ExtendEndDate 以 end_date 作为条件延长有效期, 并发续期时只有一个能成功
func (mr *MembershipRepo) ExtendEndDate(ctx context.Context, membershipId string, oldEnd, newEnd datatypes.Date) (bool, error) {
	var m model.Membership
	res := conn(ctx, mr).Table(m.TableName()).
		Where("membership_id = ? AND end_date = ? AND state = ?", membershipId, oldEnd, statemachine.MembershipActive).
		Updates(map[string]any{"end_date": newEnd, "updated_at": time.Now()})
	return res.RowsAffected == 1, res.Error
}
