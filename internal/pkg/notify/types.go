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

package notify

import (
	"errors"
	"time"

	"github.com/go-arcade/membership/internal/pkg/notify/channel"
	"github.com/go-arcade/membership/internal/pkg/notify/template"
)

// ErrTemplateNotFound 模板未配置, 调用方按跳过处理
var ErrTemplateNotFound = template.ErrNotFound

// ErrNoChannel is returned when a message has nowhere to go
var ErrNoChannel = errors.New("no notification channel registered")

// ChannelType represents the notification channel type
type ChannelType string

const (
	ChannelTypeEmail   ChannelType = "email"
	ChannelTypeWebhook ChannelType = "webhook"
)

// Attachment 消息附件
type Attachment = channel.Attachment

// Message is the input of a templated notification
type Message struct {
	To          []string
	Data        map[string]any
	Attachments []Attachment
}

// Conf notify 配置
type Conf struct {
	Enable      bool          `mapstructure:"enable"`
	TemplateDir string        `mapstructure:"templateDir"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
	Email       EmailConf     `mapstructure:"email"`
	Webhook     WebhookConf   `mapstructure:"webhook"`
}

type EmailConf struct {
	Enable   bool   `mapstructure:"enable"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type WebhookConf struct {
	Enable bool   `mapstructure:"enable"`
	URL    string `mapstructure:"url"`
	Method string `mapstructure:"method"`
	Token  string `mapstructure:"token"`
}

func (c *Conf) SetDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
}
