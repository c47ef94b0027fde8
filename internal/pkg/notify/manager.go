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
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-arcade/membership/internal/pkg/notify/channel"
	"github.com/go-arcade/membership/internal/pkg/notify/template"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/retry"
)

// NotifyManager renders named templates and fans messages out to every
// registered channel
type NotifyManager struct {
	channels    map[string]channel.INotifyChannel
	templates   *template.Store
	maxAttempts int
	backoff     time.Duration
	mu          sync.RWMutex
}

// NewNotifyManager creates a new notification manager
func NewNotifyManager(templates *template.Store, maxAttempts int, backoff time.Duration) *NotifyManager {
	if templates == nil {
		templates = template.NewStore()
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &NotifyManager{
		channels:    make(map[string]channel.INotifyChannel),
		templates:   templates,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// RegisterChannel registers a notification channel
func (nm *NotifyManager) RegisterChannel(name string, ch channel.INotifyChannel) error {
	if name == "" {
		return fmt.Errorf("channel name cannot be empty")
	}
	if ch == nil {
		return fmt.Errorf("channel cannot be nil")
	}
	if err := ch.Validate(); err != nil {
		return fmt.Errorf("channel validation failed: %w", err)
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.channels[name] = ch
	return nil
}

// UnregisterChannel unregisters a notification channel
func (nm *NotifyManager) UnregisterChannel(name string) error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	ch, exists := nm.channels[name]
	if !exists {
		return fmt.Errorf("channel %s not found", name)
	}
	if err := ch.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	delete(nm.channels, name)
	return nil
}

// ListChannels lists all registered channels
func (nm *NotifyManager) ListChannels() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	names := make([]string, 0, len(nm.channels))
	for name := range nm.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (nm *NotifyManager) Templates() *template.Store {
	return nm.templates
}

// Send renders templateName with msg.Data and delivers it on every channel.
// A missing template returns ErrTemplateNotFound before anything is sent.
func (nm *NotifyManager) Send(ctx context.Context, templateName string, msg Message) error {
	tmpl, subject, body, err := nm.templates.Render(templateName, msg.Data)
	if err != nil {
		return err
	}

	nm.mu.RLock()
	names := make([]string, 0, len(nm.channels))
	for name := range nm.channels {
		names = append(names, name)
	}
	nm.mu.RUnlock()
	if len(names) == 0 {
		return ErrNoChannel
	}
	sort.Strings(names)

	env := &channel.Envelope{
		Template:    templateName,
		To:          msg.To,
		Subject:     subject,
		Body:        body,
		Format:      tmpl.Format,
		Attachments: msg.Attachments,
	}

	var errs []error
	for _, name := range names {
		nm.mu.RLock()
		ch := nm.channels[name]
		nm.mu.RUnlock()
		if ch == nil {
			continue
		}
		err := retry.Do(ctx, func(ctx context.Context) error {
			return ch.Send(ctx, env)
		},
			retry.WithMaxAttempts(nm.maxAttempts),
			retry.WithBackoff(retry.Exponential(nm.backoff, 10*nm.backoff)),
			retry.OnRetry(func(attempt int, err error) {
				log.Warnw("notification send retry", "channel", name, "template", templateName, "attempt", attempt, "error", err)
			}),
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every channel
func (nm *NotifyManager) Close() error {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	var errs []error
	for name, ch := range nm.channels {
		if err := ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
