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
	"testing"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
	"github.com/go-arcade/membership/internal/pkg/notify/channel"
	"github.com/go-arcade/membership/internal/pkg/notify/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordChannel struct {
	fails int
	calls int
	sent  []*channel.Envelope
}

func (r *recordChannel) SetAuth(auth.IAuthProvider) error { return nil }
func (r *recordChannel) Validate() error                  { return nil }
func (r *recordChannel) Close() error                     { return nil }

func (r *recordChannel) Send(_ context.Context, env *channel.Envelope) error {
	r.calls++
	if r.calls <= r.fails {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, env)
	return nil
}

func newManager(t *testing.T) *NotifyManager {
	t.Helper()
	store := template.NewStore()
	for _, tmpl := range template.PredefinedTemplates {
		require.NoError(t, store.Register(tmpl))
	}
	return NewNotifyManager(store, 3, 0)
}

func TestNotifyManager_SendRendersTemplate(t *testing.T) {
	nm := newManager(t)
	ch := &recordChannel{}
	require.NoError(t, nm.RegisterChannel("email", ch))

	err := nm.Send(context.Background(), "membership_card", Message{
		To: []string{"ali@example.com"},
		Data: map[string]any{
			"name":       "Ali",
			"sequence":   "MBR/00001",
			"start_date": "2026-01-01",
			"end_date":   "2026-02-01",
			"filename":   "Membership_MBR/00001.pdf",
		},
		Attachments: []Attachment{{Name: "Membership_MBR/00001.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
	})
	require.NoError(t, err)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, "Your membership card MBR/00001", ch.sent[0].Subject)
	assert.Contains(t, ch.sent[0].Body, "2026-02-01")
	assert.Len(t, ch.sent[0].Attachments, 1)
}

func TestNotifyManager_TemplateNotFound(t *testing.T) {
	nm := newManager(t)
	ch := &recordChannel{}
	require.NoError(t, nm.RegisterChannel("email", ch))

	err := nm.Send(context.Background(), "missing", Message{})
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	assert.Zero(t, ch.calls)
}

func TestNotifyManager_RetriesChannel(t *testing.T) {
	nm := newManager(t)
	ch := &recordChannel{fails: 2}
	require.NoError(t, nm.RegisterChannel("email", ch))

	err := nm.Send(context.Background(), "invitation", Message{Data: map[string]any{"name": "Ali"}})
	require.NoError(t, err)
	assert.Equal(t, 3, ch.calls)
}

func TestNotifyManager_GivesUp(t *testing.T) {
	nm := newManager(t)
	ch := &recordChannel{fails: 5}
	require.NoError(t, nm.RegisterChannel("email", ch))

	err := nm.Send(context.Background(), "invitation", Message{})
	assert.Error(t, err)
	assert.Equal(t, 3, ch.calls)
}

func TestNotifyManager_NoChannel(t *testing.T) {
	nm := newManager(t)
	err := nm.Send(context.Background(), "invitation", Message{})
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestProvideNotifyManager_Disabled(t *testing.T) {
	nm, cleanup, err := ProvideNotifyManager(Conf{})
	require.NoError(t, err)
	defer cleanup()
	assert.Empty(t, nm.ListChannels())
	_, err = nm.Templates().Get("membership_approved")
	assert.NoError(t, err)
}
