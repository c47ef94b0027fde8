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
)

type IInvitationRepository interface {
	Create(ctx context.Context, invitation *model.Invitation) error
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	Accept(ctx context.Context, invitationId string, at time.Time) (bool, error)
	ExpirePending(ctx context.Context, accountId string) error
}

type InvitationRepo struct {
	database.IDatabase
}

func NewInvitationRepo(db database.IDatabase) IInvitationRepository {
	return &InvitationRepo{
		IDatabase: db,
	}
}

func (ir *InvitationRepo) Create(ctx context.Context, invitation *model.Invitation) error {
	return conn(ctx, ir).Table(invitation.TableName()).Create(invitation).Error
}

func (ir *InvitationRepo) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	var invitation model.Invitation
	err := conn(ctx, ir).Table(invitation.TableName()).
		Where("token = ?", token).
		First(&invitation).Error
	return &invitation, err
}

// Accept 仅当邀请仍为待接受时生效, 同一个令牌只能使用一次
func (ir *InvitationRepo) Accept(ctx context.Context, invitationId string, at time.Time) (bool, error) {
	var invitation model.Invitation
	res := conn(ctx, ir).Table(invitation.TableName()).
		Where("invitation_id = ? AND status = ?", invitationId, model.InvitationStatusPending).
		Updates(map[string]any{
			"status":      model.InvitationStatusAccepted,
			"accepted_at": at,
			"updated_at":  time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

// ExpirePending 作废账号下尚未接受的邀请, 重新发送邀请前调用
func (ir *InvitationRepo) ExpirePending(ctx context.Context, accountId string) error {
	var invitation model.Invitation
	return conn(ctx, ir).Table(invitation.TableName()).
		Where("account_id = ? AND status = ?", accountId, model.InvitationStatusPending).
		Updates(map[string]any{"status": model.InvitationStatusExpired, "updated_at": time.Now()}).Error
}
