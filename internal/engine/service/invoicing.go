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
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/shopspring/decimal"
)

// InvoicingService decides whether a membership gets a new invoice and
// tracks the single live invoice reference.
type InvoicingService struct {
	transitioner
	billing Billing
	tiers   *model.TierTable
	now     func() time.Time
}

func NewInvoicingService(t transitioner, billing Billing, tiers *model.TierTable) *InvoicingService {
	return &InvoicingService{transitioner: t, billing: billing, tiers: tiers, now: time.Now}
}

// LiveInvoice 返回尚未结清且未作废的关联发票, 没有时返回 nil
func (is *InvoicingService) LiveInvoice(ctx context.Context, m *model.Membership) (*model.Invoice, error) {
	if !m.HasInvoice() {
		return nil, nil
	}
	invoice, err := is.billing.Get(ctx, m.InvoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.Settled() || invoice.State == model.InvoiceStateCancel {
		return nil, nil
	}
	return invoice, nil
}

// Void 作废 m 关联的未收款发票. invoiced 记录的发票已结清或已有部分收款时拒绝,
// 其他状态下已结清的发票属于上一周期, 保持不变
func (is *InvoicingService) Void(ctx context.Context, op string, m *model.Membership) error {
	if !m.HasInvoice() {
		return nil
	}
	invoice, err := is.billing.Get(ctx, m.InvoiceId)
	if err != nil {
		return err
	}
	if invoice.Settled() {
		if m.State == statemachine.MembershipInvoiced {
			return notAllowed(op, "invoice %s is paid, check the payment instead", invoice.Number)
		}
		return nil
	}
	return is.billing.Cancel(ctx, invoice)
}

// CreateInvoice bills one period of m and moves it to invoiced. It must run
// inside the caller's transaction: a billing failure aborts the whole unit.
// States other than approved/active, or an unsettled linked invoice, give
// OutcomeSkipped.
func (is *InvoicingService) CreateInvoice(ctx context.Context, m *model.Membership) (Outcome, error) {
	const op = "membership.create_invoice"
	if !m.State.IsInvoiceable() {
		return OutcomeSkipped, nil
	}
	live, err := is.LiveInvoice(ctx, m)
	if err != nil {
		return OutcomeSkipped, err
	}
	if live != nil {
		log.WithContext(ctx).Debugf("membership %s already has live invoice %s", m.Sequence, live.Number)
		return OutcomeSkipped, nil
	}

	tier, ok := is.tiers.Get(m.MembershipType)
	if !ok {
		return OutcomeSkipped, configurationError(op, "membership type %q is not configured", m.MembershipType)
	}
	if tier.Product == "" {
		return OutcomeSkipped, configurationError(op, "Membership product not found for %q", tier.Code)
	}

	name := tier.Name
	if name == "" {
		name = tier.Code
	}
	invoice, err := is.billing.CreateInvoice(ctx, m.ContactId, []InvoiceLineInput{{
		ProductCode: tier.Product,
		Name:        name + " - " + m.Sequence,
		Quantity:    decimal.NewFromInt(1),
		PriceUnit:   m.Amount,
	}}, m.Sequence)
	if err != nil {
		return OutcomeSkipped, err
	}
	if err := is.billing.Post(ctx, invoice); err != nil {
		return OutcomeSkipped, err
	}

	from := m.State
	ok, err = is.move(ctx, op, m, statemachine.MembershipInvoiced, map[string]any{
		"invoice_id":        invoice.InvoiceId,
		"last_invoice_date": model.Day(is.now()),
	})
	if err != nil {
		return OutcomeSkipped, err
	}
	if !ok {
		return OutcomeSkipped, notAllowed(op, "membership %s left %s concurrently", m.Sequence, from)
	}
	m.InvoiceId = invoice.InvoiceId
	m.LastInvoiceDate = model.DayPtr(is.now())

	is.metrics.Invoice(tier.Code)
	log.WithContext(ctx).Infow("membership invoiced",
		"sequence", m.Sequence, "invoice", invoice.Number, "amount", m.Amount.StringFixed(2))
	return OutcomeApplied, nil
}
