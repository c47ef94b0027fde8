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

package statemachine

import (
	"errors"
	"testing"
)

// 定义测试用状态
type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

func TestStateMachine_Basic(t *testing.T) {
	sm := NewWithState(OrderCreated)

	sm.Allow(OrderCreated, OrderPaid, OrderCanceled).
		Allow(OrderPaid, OrderShipped, OrderCanceled).
		Allow(OrderShipped, OrderDelivered)

	if sm.Current() != OrderCreated {
		t.Errorf("expected current state to be %v, got %v", OrderCreated, sm.Current())
	}

	// 测试合法转移
	if err := sm.TransitionTo(OrderPaid, "pay"); err != nil {
		t.Errorf("expected transition to succeed, got error: %v", err)
	}
	if sm.Current() != OrderPaid {
		t.Errorf("expected current state to be %v, got %v", OrderPaid, sm.Current())
	}

	// 测试非法转移
	if err := sm.TransitionTo(OrderDelivered, "deliver"); err == nil {
		t.Error("expected transition to fail, but it succeeded")
	}
	if sm.Current() != OrderPaid {
		t.Errorf("failed transition must not change state, got %v", sm.Current())
	}
}

func TestStateMachine_CanTransitTo(t *testing.T) {
	sm := NewWithState(OrderCreated)
	sm.Allow(OrderCreated, OrderPaid, OrderCanceled)

	if !sm.CanTransitTo(OrderPaid) {
		t.Error("expected to be able to transit to PAID")
	}
	if sm.CanTransitTo(OrderShipped) {
		t.Error("expected NOT to be able to transit to SHIPPED")
	}
	if !sm.CanTransition(OrderCreated, OrderCanceled) {
		t.Error("expected CREATED -> CANCELED to be valid")
	}
}

func TestStateMachine_Hooks(t *testing.T) {
	sm := NewWithState(OrderCreated)
	sm.Allow(OrderCreated, OrderPaid)

	var transitions []string
	sm.OnTransition(func(from, to OrderStatus, event Event) error {
		transitions = append(transitions, string(from)+"->"+string(to)+":"+string(event))
		return nil
	})

	if err := sm.TransitionTo(OrderPaid, "pay"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transitions) != 1 || transitions[0] != "CREATED->PAID:pay" {
		t.Errorf("unexpected transition hooks: %v", transitions)
	}
}

func TestStateMachine_HookAbortsTransition(t *testing.T) {
	sm := NewWithState(OrderCreated)
	sm.Allow(OrderCreated, OrderPaid)

	blocked := errors.New("blocked")
	var later int
	sm.OnTransition(func(from, to OrderStatus, event Event) error {
		return blocked
	}).OnTransition(func(from, to OrderStatus, event Event) error {
		later++
		return nil
	})

	err := sm.TransitionTo(OrderPaid, "pay")
	if !errors.Is(err, blocked) {
		t.Errorf("expected hook error, got %v", err)
	}
	if later != 0 {
		t.Errorf("hooks after a failed one must not run, ran %d", later)
	}
	if sm.Current() != OrderCreated {
		t.Errorf("expected state unchanged, got %v", sm.Current())
	}
}
