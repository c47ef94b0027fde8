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
	"fmt"
	"slices"
	"sync"
)

// Event names the reason of a state transition.
type Event string

// TransitionHook is triggered when a state transition occurs. A non-nil
// error aborts the transition and leaves the current state unchanged.
type TransitionHook[T comparable] func(from, to T, event Event) error

// StateMachine is a generic finite state machine. It is safe for concurrent use.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	currentState     T
	validTransitions map[T][]T
	onTransition     []TransitionHook[T]
}

// New creates a new StateMachine instance.
func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		validTransitions: make(map[T][]T),
	}
}

// NewWithState creates a new StateMachine with an initial state.
func NewWithState[T comparable](initialState T) *StateMachine[T] {
	sm := New[T]()
	sm.currentState = initialState
	return sm
}

// Allow registers valid transitions from a source state.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.validTransitions[from], target) {
			sm.validTransitions[from] = append(sm.validTransitions[from], target)
		}
	}
	return sm
}

// CanTransition checks if a transition from one state to another is valid.
func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.validTransitions[from], to)
}

// CanTransitTo checks the transition from the current state.
func (sm *StateMachine[T]) CanTransitTo(to T) bool {
	return sm.CanTransition(sm.Current(), to)
}

// Current returns the current state of the StateMachine.
func (sm *StateMachine[T]) Current() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// OnTransition registers a hook that is called during any state transition.
// Hooks run in registration order while the machine is locked.
func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

// TransitionTo moves from the current state to the target state, running
// every transition hook first.
func (sm *StateMachine[T]) TransitionTo(to T, event Event) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	from := sm.currentState
	if !slices.Contains(sm.validTransitions[from], to) {
		return fmt.Errorf("invalid transition: %v → %v", from, to)
	}
	for _, h := range sm.onTransition {
		if err := h(from, to, event); err != nil {
			return fmt.Errorf("transition hook failed: %w", err)
		}
	}
	sm.currentState = to
	return nil
}
