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
	"strings"
	"time"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
)

// MembershipConf 会员业务配置
type MembershipConf struct {
	Tiers           []model.TierConfig `mapstructure:"tiers"`
	DefaultTier     string             `mapstructure:"defaultTier"`
	TermsText       string             `mapstructure:"termsText"`
	SequencePrefix  string             `mapstructure:"sequencePrefix"`
	SequencePadding int                `mapstructure:"sequencePadding"`
	CardTemplate    string             `mapstructure:"cardTemplate"`
	PortalBaseURL   string             `mapstructure:"portalBaseURL"`
	InvitationTTL   time.Duration      `mapstructure:"invitationTTL"`
	VerifyCacheTTL  time.Duration      `mapstructure:"verifyCacheTTL"`
}

func (c *MembershipConf) SetDefaults() {
	if c.DefaultTier == "" {
		c.DefaultTier = consts.DefaultTier
	}
	if c.TermsText == "" {
		c.TermsText = consts.DefaultTermsText
	}
	if c.SequencePrefix == "" {
		c.SequencePrefix = "MBR/"
	}
	if c.SequencePadding <= 0 {
		c.SequencePadding = 5
	}
	if c.CardTemplate == "" {
		c.CardTemplate = consts.TemplateCard
	}
	if c.PortalBaseURL == "" {
		c.PortalBaseURL = "http://localhost:8080"
	}
	c.PortalBaseURL = strings.TrimRight(c.PortalBaseURL, "/")
	if c.InvitationTTL <= 0 {
		c.InvitationTTL = 72 * time.Hour
	}
	if c.VerifyCacheTTL <= 0 {
		c.VerifyCacheTTL = time.Minute
	}
}

// RenewalConf 续费任务配置
type RenewalConf struct {
	Enable          bool          `mapstructure:"enable"`
	Spec            string        `mapstructure:"spec"`
	LockTTL         time.Duration `mapstructure:"lockTTL"`
	ExpireAfterDays int           `mapstructure:"expireAfterDays"` // 0 不自动过期
}

func (c *RenewalConf) SetDefaults() {
	if c.Spec == "" {
		c.Spec = "0 0 2 * * *"
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Minute
	}
}

// BillingConf 内置账本配置
type BillingConf struct {
	Currency      string `mapstructure:"currency"`
	JournalPrefix string `mapstructure:"journalPrefix"`
	Padding       int    `mapstructure:"padding"`
}

func (c *BillingConf) SetDefaults() {
	if c.Currency == "" {
		c.Currency = "SDG"
	}
	if c.JournalPrefix == "" {
		c.JournalPrefix = "INV/"
	}
	if c.Padding <= 0 {
		c.Padding = 5
	}
}
