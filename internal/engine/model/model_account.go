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

import "time"

// PortalAccount 自助门户账号
type PortalAccount struct {
	BaseModel
	AccountId    string     `gorm:"column:account_id;size:64;uniqueIndex" json:"accountId"`
	ContactId    string     `gorm:"column:contact_id;size:64;index" json:"contactId"`
	Login        string     `gorm:"column:login;size:191;uniqueIndex" json:"login"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	Group        string     `gorm:"column:group_name;size:32" json:"group"`
	IsEnabled    int        `gorm:"column:is_enabled;default:1" json:"isEnabled"` // 0: disabled, 1: enabled
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
}

func (PortalAccount) TableName() string {
	return "t_portal_account"
}

// Invitation 账号设置邀请
type Invitation struct {
	BaseModel
	InvitationId string     `gorm:"column:invitation_id;size:64;uniqueIndex" json:"invitationId"`
	AccountId    string     `gorm:"column:account_id;size:64;index" json:"accountId"`
	Token        string     `gorm:"column:token;size:64;uniqueIndex" json:"-"`
	Status       int        `gorm:"column:status;default:0" json:"status"`
	ExpiresAt    time.Time  `gorm:"column:expires_at" json:"expiresAt"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at" json:"acceptedAt,omitempty"`
}

func (Invitation) TableName() string {
	return "t_invitation"
}

// InvitationStatus 邀请状态
const (
	InvitationStatusPending  = 0 // 待接受
	InvitationStatusAccepted = 1 // 已接受
	InvitationStatusExpired  = 3 // 已过期
)

type Login struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type SetupPassword struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type LoginResp struct {
	AccountId string            `json:"accountId"`
	ContactId string            `json:"contactId"`
	Group     string            `json:"group"`
	Token     map[string]string `json:"token"`
}
