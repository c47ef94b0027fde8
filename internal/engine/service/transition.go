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

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/metrics"
	"github.com/go-arcade/membership/pkg/statemachine"
)

// errStale 比较交换未命中, 记录已离开快照状态
var errStale = errors.New("membership changed concurrently")

// transitioner applies compare-and-swap state changes checked against the
// membership state graph
type transitioner struct {
	repos   *repo.Repositories
	metrics *metrics.Recorder
}

// move 从 m.State 转移到 to; 返回 false 表示记录已被并发修改
func (t transitioner) move(ctx context.Context, op string, m *model.Membership, to statemachine.MembershipState, fields map[string]any) (bool, error) {
	sm := statemachine.NewMembershipStateMachine(m.State)
	if !sm.CanTransitTo(to) {
		return false, notAllowed(op, "cannot move %s from %s to %s", m.Sequence, m.State, to)
	}

	var persistErr error
	sm.OnTransition(func(from, to statemachine.MembershipState, _ statemachine.Event) error {
		ok, err := t.repos.Membership.Transit(ctx, m.MembershipId, from, to, fields)
		if err != nil {
			persistErr = err
			return err
		}
		if !ok {
			return errStale
		}
		return nil
	}).OnTransition(func(from, to statemachine.MembershipState, event statemachine.Event) error {
		t.metrics.Transition(string(from), string(to))
		log.WithContext(ctx).Debugw("membership transition", "sequence", m.Sequence,
			"from", from, "to", to, "event", event)
		return nil
	})

	if err := sm.TransitionTo(to, statemachine.EventFor(to)); err != nil {
		if persistErr != nil {
			return false, persistErr
		}
		if errors.Is(err, errStale) {
			return false, nil
		}
		return false, err
	}
	m.State = sm.Current()
	return true, nil
}
