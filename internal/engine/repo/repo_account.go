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
	"strings"
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
)

type IAccountRepository interface {
	Get(ctx context.Context, accountId string) (*model.PortalAccount, error)
	FindByContact(ctx context.Context, contactId string) (*model.PortalAccount, error)
	FindByLogin(ctx context.Context, login string) (*model.PortalAccount, error)
	Create(ctx context.Context, account *model.PortalAccount) error
	UpdatePassword(ctx context.Context, accountId, passwordHash string) error
	UpdateLastLogin(ctx context.Context, accountId string, at time.Time) error
}

type AccountRepo struct {
	database.IDatabase
}

func NewAccountRepo(db database.IDatabase) IAccountRepository {
	return &AccountRepo{
		IDatabase: db,
	}
}

func (ar *AccountRepo) Get(ctx context.Context, accountId string) (*model.PortalAccount, error) {
	var account model.PortalAccount
	err := conn(ctx, ar).Table(account.TableName()).
		Where("account_id = ?", accountId).
		First(&account).Error
	return &account, err
}

func (ar *AccountRepo) FindByContact(ctx context.Context, contactId string) (*model.PortalAccount, error) {
	var account model.PortalAccount
	err := conn(ctx, ar).Table(account.TableName()).
		Where("contact_id = ?", contactId).
		First(&account).Error
	return &account, err
}

func (ar *AccountRepo) FindByLogin(ctx context.Context, login string) (*model.PortalAccount, error) {
	var account model.PortalAccount
	err := conn(ctx, ar).Table(account.TableName()).
		Where("login = ?", strings.ToLower(strings.TrimSpace(login))).
		First(&account).Error
	return &account, err
}

func (ar *AccountRepo) Create(ctx context.Context, account *model.PortalAccount) error {
	account.Login = strings.ToLower(strings.TrimSpace(account.Login))
	return conn(ctx, ar).Table(account.TableName()).Create(account).Error
}

func (ar *AccountRepo) UpdatePassword(ctx context.Context, accountId, passwordHash string) error {
	var account model.PortalAccount
	return conn(ctx, ar).Table(account.TableName()).
		Where("account_id = ?", accountId).
		Updates(map[string]any{"password_hash": passwordHash, "updated_at": time.Now()}).Error
}

func (ar *AccountRepo) UpdateLastLogin(ctx context.Context, accountId string, at time.Time) error {
	var account model.PortalAccount
	return conn(ctx, ar).Table(account.TableName()).
		Where("account_id = ?", accountId).
		Update("last_login_at", at).Error
}
