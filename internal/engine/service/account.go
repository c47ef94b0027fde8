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

package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/jwt"
	"github.com/go-arcade/membership/pkg/id"
	"github.com/go-arcade/membership/pkg/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAccountNotExist   = errors.New(http.AccountNotExist.Msg)
	ErrIncorrectPassword = errors.New(http.AccountIncorrectPassword.Msg)
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrInvitationInvalid = errors.New(http.InvitationInvalid.Msg)
)

const minPasswordLen = 8

// AccountService provisions portal accounts and issues login sessions.
type AccountService struct {
	repos    *repo.Repositories
	notifier Notifier
	effects  *EffectRunner
	sessions cache.ICache
	auth     http.Auth
	conf     MembershipConf
	now      func() time.Time
}

func NewAccountService(repos *repo.Repositories, notifier Notifier, effects *EffectRunner,
	sessions cache.ICache, auth http.Auth, conf MembershipConf) *AccountService {
	return &AccountService{
		repos:    repos,
		notifier: notifier,
		effects:  effects,
		sessions: sessions,
		auth:     auth,
		conf:     conf,
		now:      time.Now,
	}
}

// provision ensures the contact has a portal account and, while no password
// has been set, a fresh invitation. Runs inside the approve transaction.
func (as *AccountService) provision(ctx context.Context, contactId string) (*model.PortalAccount, *model.Invitation, error) {
	const op = "membership.approve"
	contact, err := as.repos.Contact.Get(ctx, contactId)
	if err != nil {
		return nil, nil, wrapNotFound(op, "contact", err)
	}
	if contact.Email == "" {
		return nil, nil, validationError(op, "Contact must have an email to grant portal access.")
	}

	account, err := as.repos.Account.FindByContact(ctx, contactId)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		account = &model.PortalAccount{
			AccountId: id.GetUlid(),
			ContactId: contactId,
			Login:     contact.Email,
			Group:     consts.GroupPortal,
			IsEnabled: 1,
		}
		if err := as.repos.Account.Create(ctx, account); err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	}

	if account.PasswordHash != "" {
		return account, nil, nil
	}
	invitation, err := as.invite(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return account, invitation, nil
}

func (as *AccountService) invite(ctx context.Context, account *model.PortalAccount) (*model.Invitation, error) {
	if err := as.repos.Invitation.ExpirePending(ctx, account.AccountId); err != nil {
		return nil, err
	}
	invitation := &model.Invitation{
		InvitationId: id.GetUlid(),
		AccountId:    account.AccountId,
		Token:        id.GetUUIDWithoutDashes(),
		Status:       model.InvitationStatusPending,
		ExpiresAt:    as.now().Add(as.conf.InvitationTTL),
	}
	if err := as.repos.Invitation.Create(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

func (as *AccountService) SetupURL(token string) string {
	return as.conf.PortalBaseURL + "/auth/setup?token=" + url.QueryEscape(token)
}

// sendInvitation 事务提交后发送邀请邮件
func (as *AccountService) sendInvitation(ctx context.Context, m *model.Membership, account *model.PortalAccount, invitation *model.Invitation) {
	as.effects.Run(ctx, m, model.EffectAccountInvitation, func(ctx context.Context) error {
		return as.notifier.Send(ctx, consts.TemplateInvitation, notify.Message{
			To: []string{account.Login},
			Data: map[string]any{
				"name":       m.Name,
				"login":      account.Login,
				"expires_at": invitation.ExpiresAt.Format(time.DateTime),
				"setup_url":  as.SetupURL(invitation.Token),
			},
		})
	})
}

// AcceptInvitation sets the account password from a pending invitation.
func (as *AccountService) AcceptInvitation(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLen {
		return validationError("account.setup", "password must be at least %d characters", minPasswordLen)
	}
	invitation, err := as.repos.Invitation.GetByToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvitationInvalid
	}
	if err != nil {
		return err
	}
	now := as.now()
	if invitation.Status != model.InvitationStatusPending || now.After(invitation.ExpiresAt) {
		return ErrInvitationInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return as.repos.Transaction(ctx, func(ctx context.Context) error {
		ok, err := as.repos.Invitation.Accept(ctx, invitation.InvitationId, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvitationInvalid
		}
		return as.repos.Account.UpdatePassword(ctx, invitation.AccountId, string(hash))
	})
}

// Login 校验密码并签发令牌, access token 写入会话存储
func (as *AccountService) Login(ctx context.Context, login, password string) (*model.LoginResp, error) {
	account, err := as.repos.Account.FindByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotExist
	}
	if err != nil {
		return nil, err
	}
	if account.IsEnabled == 0 {
		return nil, ErrAccountDisabled
	}
	if account.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrIncorrectPassword
	}

	identity := jwt.Identity{AccountId: account.AccountId, ContactId: account.ContactId, Group: account.Group}
	aToken, rToken, err := jwt.GenToken(identity, []byte(as.auth.SecretKey), as.auth.AccessExpire, as.auth.RefreshExpire)
	if err != nil {
		return nil, err
	}
	if err := as.storeSession(ctx, account.AccountId, aToken); err != nil {
		return nil, err
	}
	if err := as.repos.Account.UpdateLastLogin(ctx, account.AccountId, as.now()); err != nil {
		log.WithContext(ctx).Warnw("failed to update last login", "accountId", account.AccountId, "error", err)
	}

	return &model.LoginResp{
		AccountId: account.AccountId,
		ContactId: account.ContactId,
		Group:     account.Group,
		Token:     map[string]string{"accessToken": aToken, "refreshToken": rToken},
	}, nil
}

func (as *AccountService) storeSession(ctx context.Context, accountId, aToken string) error {
	if as.sessions == nil {
		return nil
	}
	return as.sessions.Set(ctx, as.auth.SessionKeyPrefix+accountId, aToken, as.auth.AccessExpire).Err()
}

func (as *AccountService) Logout(ctx context.Context, accountId string) error {
	if as.sessions == nil {
		return nil
	}
	return as.sessions.Del(ctx, as.auth.SessionKeyPrefix+accountId).Err()
}

// Refresh 使用 refresh token 换发令牌对
func (as *AccountService) Refresh(ctx context.Context, accountId, rToken string) (map[string]string, error) {
	account, err := as.repos.Account.Get(ctx, accountId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotExist
	}
	if err != nil {
		return nil, err
	}
	if account.IsEnabled == 0 {
		return nil, ErrAccountDisabled
	}
	identity := jwt.Identity{AccountId: account.AccountId, ContactId: account.ContactId, Group: account.Group}
	tokens, err := jwt.RefreshToken(as.auth, identity, rToken)
	if err != nil {
		return nil, err
	}
	if err := as.storeSession(ctx, account.AccountId, tokens["accessToken"]); err != nil {
		return nil, err
	}
	return tokens, nil
}

// CreateStaff 创建后台账号, 供命令行初始化使用
func (as *AccountService) CreateStaff(ctx context.Context, login, password string) (*model.PortalAccount, error) {
	const op = "account.create_staff"
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil, validationError(op, "login is required")
	}
	if len(password) < minPasswordLen {
		return nil, validationError(op, "password must be at least %d characters", minPasswordLen)
	}
	if _, err := as.repos.Account.FindByLogin(ctx, login); err == nil {
		return nil, validationError(op, "login %q already exists", login)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := &model.PortalAccount{
		AccountId:    id.GetUlid(),
		Login:        login,
		PasswordHash: string(hash),
		Group:        consts.GroupStaff,
		IsEnabled:    1,
	}
	if err := as.repos.Account.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
