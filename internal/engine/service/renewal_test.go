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
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache 内存版 ICache, 只实现字符串读写与 SET NX
type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache { return &memCache{values: map[string]string{}} }

func (m *memCache) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memCache) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = toString(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *memCache) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key] = toString(value)
	return redis.NewBoolResult(true, nil)
}

func (m *memCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memCache) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memCache) TTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(0, nil)
}

// Eval 只用于释放锁
func (m *memCache) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(keys) == 1 && len(args) == 1 && m.values[keys[0]] == toString(args[0]) {
		delete(m.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (f *fixture) activeSince(t *testing.T, tier string, start, end time.Time) *model.Membership {
	t.Helper()
	return f.force(t, f.create(t, tier), statemachine.MembershipActive, map[string]any{
		"start_date": model.Day(start),
		"end_date":   model.Day(end),
	})
}

func TestRenewal_ExtendsAndInvoices(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()
	today := day(2026, 3, 1)
	f.setClock(today)

	due := f.activeSince(t, "monthly", day(2026, 1, 31), day(2026, 2, 28))
	notDue := f.activeSince(t, "monthly", day(2026, 2, 15), day(2026, 3, 15))

	report, err := f.svc.Renewal.RunDueRenewals(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, 1, report.Extended)
	assert.Equal(t, 1, report.Invoiced)
	assert.Equal(t, "2026-03-01", report.Date)

	got := f.reload(t, due)
	assert.Equal(t, statemachine.MembershipInvoiced, got.State)
	assert.Equal(t, "2026-03-28", model.FormatDay(got.EndDate))
	assert.Equal(t, "2026-01-31", model.FormatDay(got.StartDate))
	assert.NotEmpty(t, got.InvoiceId)
	assert.Equal(t, "2026-03-15", model.FormatDay(f.reload(t, notDue).EndDate))

	// 同一天再次运行: 记录已是 invoiced, 不再到期
	report, err = f.svc.Renewal.RunDueRenewals(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, report.Due)

	// 付款后激活不会缩短续期后的有效期
	_, err = f.svc.Lifecycle.MarkPaid(ctx, SystemActor, due.MembershipId, "")
	require.NoError(t, err)
	got = f.reload(t, due)
	assert.Equal(t, statemachine.MembershipActive, got.State)
	assert.Equal(t, "2026-03-28", model.FormatDay(got.EndDate))
}

func TestRenewal_ExtendsWhenBillingFails(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()
	today := day(2026, 3, 1)
	f.setClock(today)

	m := f.activeSince(t, "unpriced", day(2026, 1, 31), day(2026, 2, 28))

	report, err := f.svc.Renewal.RunDueRenewals(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extended)
	assert.Equal(t, 1, report.InvoiceFailed)

	got := f.reload(t, m)
	assert.Equal(t, statemachine.MembershipActive, got.State)
	assert.Equal(t, "2026-03-28", model.FormatDay(got.EndDate))
	assert.Empty(t, got.InvoiceId)
}

func TestRenewal_SkipsInvoiceWhileUnpaid(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()

	m := f.create(t, "monthly")
	_, err := f.svc.Lifecycle.Approve(ctx, SystemActor, m.MembershipId)
	require.NoError(t, err)
	m = f.force(t, f.reload(t, m), statemachine.MembershipActive, map[string]any{
		"start_date": model.Day(day(2026, 1, 31)),
		"end_date":   model.Day(day(2026, 2, 28)),
	})

	today := day(2026, 3, 1)
	f.setClock(today)
	report, err := f.svc.Renewal.RunDueRenewals(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extended)
	assert.Zero(t, report.Invoiced)
	assert.Zero(t, report.InvoiceFailed)

	got := f.reload(t, m)
	assert.Equal(t, statemachine.MembershipActive, got.State)
	assert.Equal(t, m.InvoiceId, got.InvoiceId)
	assert.Equal(t, "2026-03-28", model.FormatDay(got.EndDate))

	invoices, err := f.svc.Billing.ListByOrigin(ctx, m.Sequence)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestRenewal_FreeTierExtendsOnly(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()
	m := f.activeSince(t, "honorary", day(2025, 3, 1), day(2026, 3, 1))

	report, err := f.svc.Renewal.RunDueRenewals(ctx, day(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extended)
	assert.Zero(t, report.Invoiced)

	got := f.reload(t, m)
	assert.Equal(t, statemachine.MembershipActive, got.State)
	assert.Equal(t, "2027-03-01", model.FormatDay(got.EndDate))
}

func TestRenewal_StaleSnapshotIsSkipped(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()
	today := day(2026, 3, 1)
	f.setClock(today)
	f.activeSince(t, "monthly", day(2026, 1, 31), day(2026, 2, 28))

	due, err := f.repos.Membership.ListDueForRenewal(ctx, model.Day(today))
	require.NoError(t, err)
	require.Len(t, due, 1)
	stale := *due[0]

	first := &RenewalReport{}
	f.svc.Renewal.renew(ctx, due[0], first)
	assert.Equal(t, 1, first.Extended)

	second := &RenewalReport{}
	f.svc.Renewal.renew(ctx, &stale, second)
	assert.Equal(t, 1, second.Skipped)
	assert.Zero(t, second.Extended)

	got := f.reload(t, &stale)
	assert.Equal(t, "2026-03-28", model.FormatDay(got.EndDate))
	invoices, err := f.svc.Billing.ListByOrigin(ctx, stale.Sequence)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestRenewal_LockHeld(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()
	mem := newMemCache()
	f.svc.Renewal.locker = cache.NewLocker(mem)
	m := f.activeSince(t, "monthly", day(2026, 1, 31), day(2026, 2, 28))

	mem.values[consts.RenewalLockKey] = "another-process"
	report, err := f.svc.Renewal.RunDueRenewals(ctx, day(2026, 3, 1))
	require.NoError(t, err)
	assert.True(t, report.LockHeld)
	assert.Equal(t, "2026-02-28", model.FormatDay(f.reload(t, m).EndDate))

	delete(mem.values, consts.RenewalLockKey)
	report, err = f.svc.Renewal.RunDueRenewals(ctx, day(2026, 3, 1))
	require.NoError(t, err)
	assert.False(t, report.LockHeld)
	assert.Equal(t, 1, report.Extended)
	_, held := mem.values[consts.RenewalLockKey]
	assert.False(t, held, "lock released after sweep")
}

func TestRenewal_ExpiresLapsedInvoices(t *testing.T) {
	f := newFixture(t, RenewalConf{ExpireAfterDays: 7})
	ctx := context.Background()

	unpaid := f.create(t, "monthly")
	_, err := f.svc.Lifecycle.Approve(ctx, SystemActor, unpaid.MembershipId)
	require.NoError(t, err)

	paid := f.create(t, "monthly")
	_, err = f.svc.Lifecycle.Approve(ctx, SystemActor, paid.MembershipId)
	require.NoError(t, err)
	paid = f.reload(t, paid)
	_, err = f.svc.Billing.RegisterPayment(ctx, paid.InvoiceId, decimal.NewFromInt(20), "")
	require.NoError(t, err)

	report, err := f.svc.Renewal.RunDueRenewals(ctx, day(2026, 2, 5))
	require.NoError(t, err)
	assert.Zero(t, report.Expired)

	report, err = f.svc.Renewal.RunDueRenewals(ctx, day(2026, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, statemachine.MembershipExpired, f.reload(t, unpaid).State)
	assert.Equal(t, statemachine.MembershipInvoiced, f.reload(t, paid).State)
}

func TestRenewal_LapsedInvoiceTakesNoPayment(t *testing.T) {
	f := newFixture(t, RenewalConf{ExpireAfterDays: 7})
	ctx := context.Background()

	m := f.create(t, "monthly")
	_, err := f.svc.Lifecycle.Approve(ctx, SystemActor, m.MembershipId)
	require.NoError(t, err)
	m = f.reload(t, m)

	partial := f.create(t, "monthly")
	_, err = f.svc.Lifecycle.Approve(ctx, SystemActor, partial.MembershipId)
	require.NoError(t, err)
	partial = f.reload(t, partial)
	_, err = f.svc.Billing.RegisterPayment(ctx, partial.InvoiceId, decimal.NewFromInt(5), "cash")
	require.NoError(t, err)

	report, err := f.svc.Renewal.RunDueRenewals(ctx, day(2026, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, statemachine.MembershipExpired, f.reload(t, m).State)
	// 已有部分收款的记录不自动过期
	assert.Equal(t, statemachine.MembershipInvoiced, f.reload(t, partial).State)

	invoice, err := f.svc.Billing.Get(ctx, m.InvoiceId)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStateCancel, invoice.State)

	// 过期后付款被拒, 不会出现收了钱却无法激活的记录
	_, err = f.svc.Billing.RegisterPayment(ctx, m.InvoiceId, decimal.NewFromInt(20), "late")
	assert.True(t, errors.Is(err, ErrNotAllowed))
	_, err = f.svc.Lifecycle.MarkPaid(ctx, SystemActor, m.MembershipId, "late")
	assert.True(t, errors.Is(err, ErrNotAllowed))

	invoice, err = f.svc.Billing.Get(ctx, m.InvoiceId)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStateNotPaid, invoice.PaymentState)
	assert.True(t, invoice.AmountResidual.Equal(decimal.NewFromInt(20)))

	outcome, err := f.svc.Lifecycle.CheckPayment(ctx, SystemActor, m.MembershipId)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = f.svc.Lifecycle.Reject(ctx, SystemActor, m.MembershipId)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
}

func TestAccountService_SessionLifecycle(t *testing.T) {
	f := newFixture(t, RenewalConf{})
	ctx := context.Background()
	mem := newMemCache()
	f.svc.Accounts.sessions = mem

	_, err := f.svc.Accounts.CreateStaff(ctx, "staff@example.org", "staff-pass")
	require.NoError(t, err)
	resp, err := f.svc.Accounts.Login(ctx, "staff@example.org", "staff-pass")
	require.NoError(t, err)

	key := "membership:session:" + resp.AccountId
	assert.Equal(t, resp.Token["accessToken"], mem.values[key])

	require.NoError(t, f.svc.Accounts.Logout(ctx, resp.AccountId))
	_, ok := mem.values[key]
	assert.False(t, ok)
}
