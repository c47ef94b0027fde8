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

// MembershipState 会员记录状态
type MembershipState string

const (
	MembershipDraft    MembershipState = "draft"
	MembershipApproved MembershipState = "approved"
	MembershipInvoiced MembershipState = "invoiced"
	MembershipPaid     MembershipState = "paid"
	MembershipActive   MembershipState = "active"
	MembershipExpired  MembershipState = "expired"
	MembershipRejected MembershipState = "rejected"
)

// MembershipStates lists every state in lifecycle order.
var MembershipStates = []MembershipState{
	MembershipDraft,
	MembershipApproved,
	MembershipInvoiced,
	MembershipPaid,
	MembershipActive,
	MembershipExpired,
	MembershipRejected,
}

// Valid 判断是否为已定义状态
func (s MembershipState) Valid() bool {
	for _, st := range MembershipStates {
		if st == s {
			return true
		}
	}
	return false
}

// IsRejectable 除 paid / active 外均可拒绝
func (s MembershipState) IsRejectable() bool {
	return s != MembershipPaid && s != MembershipActive
}

// IsInvoiceable 仅 approved 与 active 可开票
func (s MembershipState) IsInvoiceable() bool {
	return s == MembershipApproved || s == MembershipActive
}

const (
	EventApprove  Event = "approve"
	EventReject   Event = "reject"
	EventInvoice  Event = "invoice"
	EventPay      Event = "pay"
	EventActivate Event = "activate"
	EventExpire   Event = "expire"
)

var enterEvents = map[MembershipState]Event{
	MembershipApproved: EventApprove,
	MembershipRejected: EventReject,
	MembershipInvoiced: EventInvoice,
	MembershipPaid:     EventPay,
	MembershipActive:   EventActivate,
	MembershipExpired:  EventExpire,
}

// EventFor 进入 to 状态对应的事件
func EventFor(to MembershipState) Event {
	return enterEvents[to]
}

// NewMembershipStateMachine 创建会员状态机, current 为记录的当前状态
func NewMembershipStateMachine(current MembershipState) *StateMachine[MembershipState] {
	sm := NewWithState(current)

	sm.Allow(MembershipDraft, MembershipApproved, MembershipRejected).
		Allow(MembershipApproved, MembershipInvoiced, MembershipActive, MembershipRejected).
		Allow(MembershipInvoiced, MembershipPaid, MembershipExpired, MembershipRejected).
		Allow(MembershipPaid, MembershipActive).
		Allow(MembershipActive, MembershipInvoiced, MembershipExpired).
		Allow(MembershipExpired, MembershipRejected).
		// 重复拒绝为幂等
		Allow(MembershipRejected, MembershipRejected)

	return sm
}
