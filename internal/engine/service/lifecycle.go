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

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/go-arcade/membership/pkg/trace"
)

const tracerName = "membership"

// LifecycleService drives the membership state machine. Every action runs in
// one transaction; notifications and cards are sent after it commits.
type LifecycleService struct {
	transitioner
	records   *RecordService
	invoicing *InvoicingService
	billing   *BillingService
	accounts  *AccountService
	cards     *CardService
	effects   *EffectRunner
	notifier  Notifier
	tiers     *model.TierTable
	currency  string
	now       func() time.Time
}

func NewLifecycleService(t transitioner, records *RecordService, invoicing *InvoicingService, billing *BillingService,
	accounts *AccountService, cards *CardService, effects *EffectRunner, notifier Notifier,
	tiers *model.TierTable, billingConf BillingConf) *LifecycleService {
	return &LifecycleService{
		transitioner: t,
		records:      records,
		invoicing:    invoicing,
		billing:      billing,
		accounts:     accounts,
		cards:        cards,
		effects:      effects,
		notifier:     notifier,
		tiers:        tiers,
		currency:     billingConf.Currency,
		now:          time.Now,
	}
}

func (ls *LifecycleService) load(ctx context.Context, op, membershipId string) (*model.Membership, error) {
	m, err := ls.repos.Membership.Get(ctx, membershipId)
	if err != nil {
		return nil, wrapNotFound(op, "membership", err)
	}
	return m, nil
}

func (ls *LifecycleService) tier(op string, m *model.Membership) (model.Tier, error) {
	tier, ok := ls.tiers.Get(m.MembershipType)
	if !ok {
		return model.Tier{}, configurationError(op, "membership type %q is not configured", m.MembershipType)
	}
	return tier, nil
}

// activate 设置有效期并进入 active; 已有更晚的 end_date 时保留
func (ls *LifecycleService) activate(ctx context.Context, op string, m *model.Membership) error {
	tier, err := ls.tier(op, m)
	if err != nil {
		return err
	}
	start := model.Day(ls.now())
	if m.StartDate != nil {
		start = *m.StartDate
	}
	end := tier.Extend(start)
	if m.EndDate != nil && m.EndTime().After(time.Time(end)) {
		end = *m.EndDate
	}

	from := m.State
	ok, err := ls.move(ctx, op, m, statemachine.MembershipActive, map[string]any{
		"start_date": start,
		"end_date":   end,
	})
	if err != nil {
		return err
	}
	if !ok {
		return notAllowed(op, "membership %s left %s concurrently", m.Sequence, from)
	}
	m.StartDate, m.EndDate = &start, &end
	return nil
}

// Approve moves a draft to approved, provisions the portal account and
// then activates zero-fee tiers or invoices the rest. Non-draft records
// are skipped.
func (ls *LifecycleService) Approve(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	const op = "membership.approve"
	ctx, span := trace.StartSpan(ctx, tracerName, op)
	defer span.End()

	var (
		m          *model.Membership
		account    *model.PortalAccount
		invitation *model.Invitation
		activated  bool
	)
	outcome := OutcomeSkipped
	err := ls.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = ls.load(ctx, op, membershipId); err != nil {
			return err
		}
		if m.State != statemachine.MembershipDraft {
			return nil
		}
		ok, err := ls.move(ctx, op, m, statemachine.MembershipApproved, nil)
		if err != nil || !ok {
			return err
		}
		if account, invitation, err = ls.accounts.provision(ctx, m.ContactId); err != nil {
			return err
		}

		tier, err := ls.tier(op, m)
		if err != nil {
			return err
		}
		if tier.Free() {
			if err := ls.activate(ctx, op, m); err != nil {
				return err
			}
			activated = true
		} else if _, err := ls.invoicing.CreateInvoice(ctx, m); err != nil {
			return err
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil || outcome == OutcomeSkipped {
		return outcome, err
	}

	log.WithContext(ctx).Infow("membership approved", "sequence", m.Sequence, "state", m.State, "actor", actor.String())
	ls.records.InvalidateVerify(ctx, m.VerifyToken)
	if invitation != nil {
		ls.accounts.sendInvitation(ctx, m, account, invitation)
	}
	ls.sendApproved(ctx, m, account)
	if activated {
		ls.cards.Dispatch(ctx, m)
	}
	return outcome, nil
}

func (ls *LifecycleService) sendApproved(ctx context.Context, m *model.Membership, account *model.PortalAccount) {
	ls.effects.Run(ctx, m, model.EffectApprovedNotice, func(ctx context.Context) error {
		if account == nil || account.Login == "" {
			return skipEffect("membership %s has no portal login", m.Sequence)
		}
		tierName := m.MembershipType
		if tier, ok := ls.tiers.Get(m.MembershipType); ok && tier.Name != "" {
			tierName = tier.Name
		}
		amount := ""
		if !m.Amount.IsZero() {
			amount = m.Amount.StringFixed(2)
		}
		return ls.notifier.Send(ctx, consts.TemplateApproved, notify.Message{
			To: []string{account.Login},
			Data: map[string]any{
				"name":     m.Name,
				"tier":     tierName,
				"sequence": m.Sequence,
				"amount":   amount,
				"currency": ls.currency,
			},
		})
	})
}

// Reject 已付款或生效中的记录不可拒绝; 关联的未收款发票一并作废
func (ls *LifecycleService) Reject(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	const op = "membership.reject"
	var m *model.Membership
	outcome := OutcomeSkipped
	err := ls.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = ls.load(ctx, op, membershipId); err != nil {
			return err
		}
		if !m.State.IsRejectable() {
			return notAllowed(op, "You cannot reject a paid or active membership.")
		}
		if m.State == statemachine.MembershipRejected {
			return nil
		}
		if err := ls.invoicing.Void(ctx, op, m); err != nil {
			return err
		}
		ok, err := ls.move(ctx, op, m, statemachine.MembershipRejected, nil)
		if err != nil {
			return err
		}
		if !ok {
			return notAllowed(op, "membership %s changed concurrently", m.Sequence)
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil || outcome == OutcomeSkipped {
		return outcome, err
	}
	ls.records.InvalidateVerify(ctx, m.VerifyToken)
	log.WithContext(ctx).Infow("membership rejected", "sequence", m.Sequence, "actor", actor.String())
	return outcome, nil
}

// CreateInvoice 后台开票, approved 与 active 状态有效
func (ls *LifecycleService) CreateInvoice(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	return ls.createInvoice(ctx, actor, membershipId, false)
}

// CreateInvoiceOwned 门户开票, 仅 approved 状态且属于调用者
func (ls *LifecycleService) CreateInvoiceOwned(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	return ls.createInvoice(ctx, actor, membershipId, true)
}

func (ls *LifecycleService) createInvoice(ctx context.Context, actor Actor, membershipId string, portal bool) (Outcome, error) {
	const op = "membership.create_invoice"
	var m *model.Membership
	outcome := OutcomeSkipped
	err := ls.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = ls.owned(ctx, op, actor, membershipId, portal); err != nil {
			return err
		}
		if portal && m.State != statemachine.MembershipApproved {
			return nil
		}
		outcome, err = ls.invoicing.CreateInvoice(ctx, m)
		return err
	})
	if err != nil {
		return OutcomeSkipped, err
	}
	if outcome == OutcomeApplied {
		ls.records.InvalidateVerify(ctx, m.VerifyToken)
		log.WithContext(ctx).Infow("membership invoice requested", "sequence", m.Sequence, "actor", actor.String())
	}
	return outcome, nil
}

func (ls *LifecycleService) owned(ctx context.Context, op string, actor Actor, membershipId string, portal bool) (*model.Membership, error) {
	m, err := ls.load(ctx, op, membershipId)
	if err != nil {
		return nil, err
	}
	if portal && (actor.ContactId == "" || m.ContactId != actor.ContactId) {
		return nil, notFound(op, "membership")
	}
	return m, nil
}

// CheckPayment activates an invoiced membership once its invoice is paid
// or in payment. Anything else is skipped.
func (ls *LifecycleService) CheckPayment(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	return ls.checkPayment(ctx, actor, membershipId, false)
}

func (ls *LifecycleService) CheckPaymentOwned(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	return ls.checkPayment(ctx, actor, membershipId, true)
}

func (ls *LifecycleService) checkPayment(ctx context.Context, actor Actor, membershipId string, portal bool) (Outcome, error) {
	const op = "membership.check_payment"
	ctx, span := trace.StartSpan(ctx, tracerName, op)
	defer span.End()

	var m *model.Membership
	outcome := OutcomeSkipped
	err := ls.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = ls.owned(ctx, op, actor, membershipId, portal); err != nil {
			return err
		}
		if !m.HasInvoice() || m.State != statemachine.MembershipInvoiced {
			return nil
		}
		invoice, err := ls.billing.Get(ctx, m.InvoiceId)
		if err != nil {
			return err
		}
		if !invoice.Settled() {
			return nil
		}
		ok, err := ls.move(ctx, op, m, statemachine.MembershipPaid, nil)
		if err != nil || !ok {
			return err
		}
		if err := ls.activate(ctx, op, m); err != nil {
			return err
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil || outcome == OutcomeSkipped {
		return outcome, err
	}

	log.WithContext(ctx).Infow("membership activated", "sequence", m.Sequence,
		"start", model.FormatDay(m.StartDate), "end", model.FormatDay(m.EndDate), "actor", actor.String())
	ls.records.InvalidateVerify(ctx, m.VerifyToken)
	ls.cards.Dispatch(ctx, m)
	return outcome, nil
}

// MarkPaid registers the full residual of the live invoice and then runs
// the payment check. Only invoiced memberships take a payment.
func (ls *LifecycleService) MarkPaid(ctx context.Context, actor Actor, membershipId, reference string) (Outcome, error) {
	const op = "membership.mark_paid"
	m, err := ls.load(ctx, op, membershipId)
	if err != nil {
		return OutcomeSkipped, err
	}
	if !m.HasInvoice() {
		return OutcomeSkipped, notAllowed(op, "membership %s has no invoice", m.Sequence)
	}
	if m.State != statemachine.MembershipInvoiced {
		return OutcomeSkipped, notAllowed(op, "cannot take a payment for a %s membership", m.State)
	}
	invoice, err := ls.billing.Get(ctx, m.InvoiceId)
	if err != nil {
		return OutcomeSkipped, err
	}
	if !invoice.Settled() {
		if _, err := ls.billing.RegisterPayment(ctx, invoice.InvoiceId, invoice.AmountResidual, reference); err != nil {
			return OutcomeSkipped, err
		}
	}
	return ls.CheckPayment(ctx, actor, membershipId)
}

// Activate 后台手动激活, approved 或 paid 状态有效
func (ls *LifecycleService) Activate(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	const op = "membership.activate"
	var m *model.Membership
	outcome := OutcomeSkipped
	err := ls.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = ls.load(ctx, op, membershipId); err != nil {
			return err
		}
		switch m.State {
		case statemachine.MembershipActive:
			return nil
		case statemachine.MembershipApproved, statemachine.MembershipPaid:
		default:
			return notAllowed(op, "cannot activate a %s membership", m.State)
		}
		if err := ls.activate(ctx, op, m); err != nil {
			return err
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil || outcome == OutcomeSkipped {
		return outcome, err
	}
	log.WithContext(ctx).Infow("membership activated", "sequence", m.Sequence, "actor", actor.String())
	ls.records.InvalidateVerify(ctx, m.VerifyToken)
	ls.cards.Dispatch(ctx, m)
	return outcome, nil
}

// Expire 后台手动过期, invoiced 或 active 状态有效; invoiced 的未收款发票一并作废
func (ls *LifecycleService) Expire(ctx context.Context, actor Actor, membershipId string) (Outcome, error) {
	const op = "membership.expire"
	var m *model.Membership
	outcome := OutcomeSkipped
	err := ls.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = ls.load(ctx, op, membershipId); err != nil {
			return err
		}
		if m.State == statemachine.MembershipExpired {
			return nil
		}
		if m.State == statemachine.MembershipInvoiced {
			if err := ls.invoicing.Void(ctx, op, m); err != nil {
				return err
			}
		}
		ok, err := ls.move(ctx, op, m, statemachine.MembershipExpired, nil)
		if err != nil {
			return err
		}
		if !ok {
			return notAllowed(op, "membership %s changed concurrently", m.Sequence)
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil || outcome == OutcomeSkipped {
		return outcome, err
	}
	log.WithContext(ctx).Infow("membership expired", "sequence", m.Sequence, "actor", actor.String())
	ls.records.InvalidateVerify(ctx, m.VerifyToken)
	return outcome, nil
}

// Effects 返回记录的副作用日志
func (ls *LifecycleService) Effects(ctx context.Context, membershipId string) ([]*model.EffectLog, error) {
	m, err := ls.load(ctx, "membership.effects", membershipId)
	if err != nil {
		return nil, err
	}
	return ls.effects.List(ctx, m.MembershipId)
}
