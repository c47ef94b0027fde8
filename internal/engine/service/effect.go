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
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/pkg/card"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/pkg/id"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/metrics"
	"github.com/go-arcade/membership/pkg/safe"
)

// ErrEffectSkipped marks a best-effort step that had nothing to do
var ErrEffectSkipped = errors.New("effect skipped")

func skipEffect(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEffectSkipped, fmt.Sprintf(format, args...))
}

// EffectRunner runs non-critical side effects after the state change has
// committed. Failures are logged and written to the effect log, never returned.
type EffectRunner struct {
	repos   *repo.Repositories
	metrics *metrics.Recorder
}

func NewEffectRunner(repos *repo.Repositories, recorder *metrics.Recorder) *EffectRunner {
	return &EffectRunner{repos: repos, metrics: recorder}
}

func effectStatus(err error) string {
	switch {
	case err == nil:
		return model.EffectStatusOk
	case errors.Is(err, ErrEffectSkipped),
		errors.Is(err, notify.ErrTemplateNotFound),
		errors.Is(err, notify.ErrNoChannel),
		errors.Is(err, card.ErrTemplateNotFound):
		return model.EffectStatusSkipped
	}
	return model.EffectStatusFailed
}

// Run executes fn and returns the recorded status
func (er *EffectRunner) Run(ctx context.Context, m *model.Membership, kind string, fn func(ctx context.Context) error) string {
	err := safe.Call(func() error { return fn(ctx) })
	status := effectStatus(err)

	detail := map[string]any{"sequence": m.Sequence}
	if err != nil {
		detail["error"] = err.Error()
		log.WithContext(ctx).Warnw("membership effect not delivered",
			"sequence", m.Sequence, "effect", kind, "status", status, "error", err)
	}
	raw, _ := sonic.Marshal(detail)

	entry := &model.EffectLog{
		EffectId:     id.GetUlid(),
		MembershipId: m.MembershipId,
		Kind:         kind,
		Status:       status,
		Detail:       raw,
	}
	if err := er.repos.EffectLog.Create(ctx, entry); err != nil {
		log.WithContext(ctx).Warnw("failed to write effect log", "sequence", m.Sequence, "effect", kind, "error", err)
	}
	er.metrics.Effect(kind, status)
	return status
}

func (er *EffectRunner) List(ctx context.Context, membershipId string) ([]*model.EffectLog, error) {
	return er.repos.EffectLog.ListByMembership(ctx, membershipId)
}
