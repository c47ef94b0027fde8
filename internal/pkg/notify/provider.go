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
	"fmt"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
	"github.com/go-arcade/membership/internal/pkg/notify/channel"
	"github.com/go-arcade/membership/internal/pkg/notify/template"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/google/wire"
)

// ProviderSet provides notify layer related dependencies
var ProviderSet = wire.NewSet(
	ProvideNotifyManager,
)

// ProvideNotifyManager builds the manager from configuration. Predefined
// templates are registered first, TemplateDir overrides them by name.
func ProvideNotifyManager(conf Conf) (*NotifyManager, func(), error) {
	conf.SetDefaults()

	store := template.NewStore()
	for _, t := range template.PredefinedTemplates {
		if err := store.Register(t); err != nil {
			return nil, nil, err
		}
	}
	if conf.TemplateDir != "" {
		n, err := store.LoadDir(conf.TemplateDir)
		if err != nil {
			return nil, nil, fmt.Errorf("load notification templates: %w", err)
		}
		log.Infow("notification templates loaded", "dir", conf.TemplateDir, "count", n)
	}

	manager := NewNotifyManager(store, conf.MaxAttempts, conf.Backoff)
	if conf.Enable {
		if conf.Email.Enable {
			email := channel.NewEmailChannel(conf.Email.Host, conf.Email.Port, conf.Email.From)
			if conf.Email.Username != "" {
				if err := email.SetAuth(auth.NewBasicAuth(conf.Email.Username, conf.Email.Password)); err != nil {
					return nil, nil, err
				}
			}
			if err := manager.RegisterChannel(string(ChannelTypeEmail), email); err != nil {
				return nil, nil, err
			}
		}
		if conf.Webhook.Enable {
			webhook := channel.NewWebhookChannel(conf.Webhook.URL, conf.Webhook.Method)
			if conf.Webhook.Token != "" {
				if err := webhook.SetAuth(auth.NewBearerAuth(conf.Webhook.Token)); err != nil {
					return nil, nil, err
				}
			}
			if err := manager.RegisterChannel(string(ChannelTypeWebhook), webhook); err != nil {
				return nil, nil, err
			}
		}
	}

	log.Infow("notify manager initialized", "channel_count", len(manager.ListChannels()))
	cleanup := func() {
		if err := manager.Close(); err != nil {
			log.Warnw("failed to close notify channels", "error", err)
		}
	}
	return manager, cleanup, nil
}
