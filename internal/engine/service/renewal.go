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
	"time"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/go-arcade/membership/pkg/trace"
	"gorm.io/datatypes"
)

// RenewalReport summarizes one sweep
type RenewalReport struct {
	Date          string `json:"date"`
	Due           int    `json:"due"`
	Extended      int    `json:"extended"`
	Invoiced      int    `json:"invoiced"`
	InvoiceFailed int    `json:"invoiceFailed"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	Expired       int    `json:"expired"`
	LockHeld      bool   `json:"lockHeld,omitempty"`
}

// RenewalService extends active memberships whose period has ended and
// requests the next invoice.
type RenewalService struct {
	transitioner
	invoicing *InvoicingService
	records   *RecordService
	tiers     *model.TierTable
	locker    *cache.Locker
	conf      RenewalConf
}

func NewRenewalService(t transitioner, invoicing *InvoicingService, records *RecordService,
	tiers *model.TierTable, locker *cache.Locker, conf RenewalConf) *RenewalService {
	return &RenewalService{
		transitioner: t,
		invoicing:    invoicing,
		records:      records,
		tiers:        tiers,
		locker:       locker,
		conf:         conf,
	}
}

// RunDueRenewals processes every active membership with end_date <= today.
// The end_date compare-and-swap commits before invoicing, so an invoicing
// failure never undoes the extension and an overlapping sweep skips the
// record instead of billing it twice.
func (rs *RenewalService) RunDueRenewals(ctx context.Context, today time.Time) (*RenewalReport, error) {
	ctx, span := trace.StartSpan(ctx, tracerName, "membership.run_due_renewals")
	defer span.End()

	day := model.Day(today)
	report := &RenewalReport{Date: model.FormatDay(&day)}

	release, err := rs.locker.Acquire(ctx, consts.RenewalLockKey, rs.conf.LockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		log.WithContext(ctx).Info("renewal sweep already running elsewhere, skipped")
		report.LockHeld = true
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	defer release()

	due, err := rs.repos.Membership.ListDueForRenewal(ctx, day)
	if err != nil {
		return nil, err
	}
	report.Due = len(due)
	for _, m := range due {
		rs.renew(ctx, m, report)
	}

	if rs.conf.ExpireAfterDays > 0 {
		if err := rs.expireLapsed(ctx, day, report); err != nil {
			return report, err
		}
	}

	log.WithContext(ctx).Infow("renewal sweep finished",
		"date", report.Date, "due", report.Due, "extended", report.Extended, "invoiced", report.Invoiced,
		"invoiceFailed", report.InvoiceFailed, "skipped", report.Skipped, "failed", report.Failed, "expired", report.Expired)
	return report, nil
}

func (rs *RenewalService) renew(ctx context.Context, m *model.Membership, report *RenewalReport) {
	tier, ok := rs.tiers.Get(m.MembershipType)
	if !ok || m.EndDate == nil {
		report.Failed++
		rs.metrics.Renewal("failed")
		log.WithContext(ctx).Errorw("cannot renew membership", "sequence", m.Sequence, "tier", m.MembershipType)
		return
	}

	oldEnd := *m.EndDate
	newEnd := tier.Extend(oldEnd)
	ok, err := rs.repos.Membership.ExtendEndDate(ctx, m.MembershipId, oldEnd, newEnd)
	if err != nil {
		report.Failed++
		rs.metrics.Renewal("failed")
		log.WithContext(ctx).Errorw("failed to extend membership", "sequence", m.Sequence, "error", err)
		return
	}
	if !ok {
		report.Skipped++
		rs.metrics.Renewal("skipped")
		log.WithContext(ctx).Infow("membership renewed concurrently, skipped", "sequence", m.Sequence)
		return
	}
	report.Extended++
	m.EndDate = &newEnd
	defer rs.records.InvalidateVerify(ctx, m.VerifyToken)

	if tier.Free() {
		rs.metrics.Renewal("extended")
		return
	}

	var outcome Outcome
	err = rs.repos.Transaction(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = rs.invoicing.CreateInvoice(ctx, m)
		return err
	})
	switch {
	case err != nil:
		report.InvoiceFailed++
		rs.metrics.Renewal("invoice_failed")
		log.WithContext(ctx).Warnw("renewal invoice failed, period extended anyway",
			"sequence", m.Sequence, "end", model.FormatDay(m.EndDate), "error", err)
	case outcome == OutcomeApplied:
		report.Invoiced++
		rs.metrics.Renewal("invoiced")
	default:
		rs.metrics.Renewal("extended")
	}
}

// expireLapsed 发票开出 N 天后仍未结清的记录转为 expired, 发票同时作废;
// 期间已有收款的记录留给后台处理
func (rs *RenewalService) expireLapsed(ctx context.Context, today datatypes.Date, report *RenewalReport) error {
	const op = "membership.expire_lapsed"
	cutoff := model.Day(time.Time(today).AddDate(0, 0, -rs.conf.ExpireAfterDays))
	lapsed, err := rs.repos.Membership.ListLapsed(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, m := range lapsed {
		live, err := rs.invoicing.LiveInvoice(ctx, m)
		if err != nil {
			log.WithContext(ctx).Warnw("failed to load lapsed invoice", "sequence", m.Sequence, "error", err)
			continue
		}
		if live == nil {
			continue
		}
		err = rs.repos.Transaction(ctx, func(ctx context.Context) error {
			if err := rs.invoicing.Void(ctx, op, m); err != nil {
				return err
			}
			moved, err := rs.move(ctx, op, m, statemachine.MembershipExpired, nil)
			if err != nil {
				return err
			}
			if !moved {
				// 回滚已作废的发票
				return errStale
			}
			return nil
		})
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			log.WithContext(ctx).Warnw("failed to expire membership", "sequence", m.Sequence, "error", err)
			continue
		}
		report.Expired++
		rs.metrics.Renewal("expired")
		rs.records.InvalidateVerify(ctx, m.VerifyToken)
		log.WithContext(ctx).Infow("membership expired, invoice cancelled", "sequence", m.Sequence, "invoice", live.Number)
	}
	return nil
}
