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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MembershipTransitionsTotal counts lifecycle state changes
	MembershipTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_transitions_total",
			Help: "Total number of membership state transitions",
		},
		[]string{"from", "to"},
	)

	// MembershipInvoicesTotal counts invoices issued per tier
	MembershipInvoicesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_invoices_total",
			Help: "Total number of membership invoices created",
		},
		[]string{"tier"},
	)

	// MembershipRenewalsTotal counts renewal sweep outcomes
	MembershipRenewalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_renewals_total",
			Help: "Total number of processed renewals by result",
		},
		[]string{"result"},
	)

	// MembershipEffectsTotal counts side effects by kind and status
	MembershipEffectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_effects_total",
			Help: "Total number of membership side effects",
		},
		[]string{"kind", "status"},
	)

	membershipMetricsOnce sync.Once
)

// Recorder is the membership metrics facade handed to services.
type Recorder struct{}

// NewRecorder registers the membership collectors on registry.
func NewRecorder(registry prometheus.Registerer) *Recorder {
	if registry == nil {
		return &Recorder{}
	}
	membershipMetricsOnce.Do(func() {
		registry.MustRegister(
			MembershipTransitionsTotal,
			MembershipInvoicesTotal,
			MembershipRenewalsTotal,
			MembershipEffectsTotal,
		)
	})
	return &Recorder{}
}

// Transition records a state change. A nil recorder is a no-op.
func (r *Recorder) Transition(from, to string) {
	if r == nil {
		return
	}
	MembershipTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (r *Recorder) Invoice(tier string) {
	if r == nil {
		return
	}
	MembershipInvoicesTotal.WithLabelValues(tier).Inc()
}

func (r *Recorder) Renewal(result string) {
	if r == nil {
		return
	}
	MembershipRenewalsTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) Effect(kind, status string) {
	if r == nil {
		return
	}
	MembershipEffectsTotal.WithLabelValues(kind, status).Inc()
}
