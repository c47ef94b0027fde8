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

package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立, 只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repos := NewRepositories(database.NewDatabase(db))
	require.NoError(t, repos.AutoMigrate(context.Background()))
	return repos
}

func seedMembership(t *testing.T, repos *Repositories, id string, state statemachine.MembershipState, end *time.Time) *model.Membership {
	t.Helper()
	m := &model.Membership{
		MembershipId:   id,
		Sequence:       "MBR/" + id,
		VerifyToken:    "verify-" + id,
		Name:           "Ali",
		Phone:          "0500000000",
		IdNumber:       "X1",
		MembershipType: "monthly",
		Amount:         decimal.NewFromInt(20),
		State:          state,
		ContactId:      "ct-" + id,
	}
	if end != nil {
		m.StartDate = model.DayPtr(end.AddDate(0, -1, 0))
		m.EndDate = model.DayPtr(*end)
		if state == statemachine.MembershipInvoiced {
			m.LastInvoiceDate = model.DayPtr(*end)
		}
	}
	require.NoError(t, repos.Membership.Create(context.Background(), m))
	return m
}

func TestSequenceRepo_Next(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	first, err := repos.Sequence.Next(ctx, "membership.membership", "MBR/", 5)
	require.NoError(t, err)
	second, err := repos.Sequence.Next(ctx, "membership.membership", "MBR/", 5)
	require.NoError(t, err)
	other, err := repos.Sequence.Next(ctx, "account.invoice", "INV/", 4)
	require.NoError(t, err)

	assert.Equal(t, "MBR/00001", first)
	assert.Equal(t, "MBR/00002", second)
	assert.Equal(t, "INV/0001", other)
}

func TestSequenceRepo_NextInsideTransaction(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	err := repos.Transaction(ctx, func(ctx context.Context) error {
		v, err := repos.Sequence.Next(ctx, "membership.membership", "MBR/", 5)
		require.NoError(t, err)
		assert.Equal(t, "MBR/00001", v)
		return nil
	})
	require.NoError(t, err)

	v, err := repos.Sequence.Next(ctx, "membership.membership", "MBR/", 5)
	require.NoError(t, err)
	assert.Equal(t, "MBR/00002", v)
}

func TestSequenceRepo_RollbackReusesNumber(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Transaction(ctx, func(ctx context.Context) error {
		v, err := repos.Sequence.Next(ctx, "membership.membership", "MBR/", 5)
		require.NoError(t, err)
		assert.Equal(t, "MBR/00001", v)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := repos.Sequence.Next(ctx, "membership.membership", "MBR/", 5)
	require.NoError(t, err)
	assert.Equal(t, "MBR/00001", v)
}

func TestRepositories_TransactionRollback(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repos.Contact.Create(ctx, &model.Contact{ContactId: "ct-1", Name: "Ali"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Contact.Get(ctx, "ct-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestContactRepo_FindByEmail(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Contact.Create(ctx, &model.Contact{ContactId: "ct-1", Name: "Ali", Email: " Ali@Example.com "}))

	found, err := repos.Contact.FindByEmail(ctx, "ALI@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "ct-1", found.ContactId)
	assert.Equal(t, "ali@example.com", found.Email)

	found.Name = "Ali Hassan"
	found.Phone = "0511111111"
	require.NoError(t, repos.Contact.Update(ctx, found))
	reloaded, err := repos.Contact.Get(ctx, "ct-1")
	require.NoError(t, err)
	assert.Equal(t, "Ali Hassan", reloaded.Name)
	assert.Equal(t, "0511111111", reloaded.Phone)
}

func TestMembershipRepo_Transit(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedMembership(t, repos, "m-1", statemachine.MembershipDraft, nil)

	ok, err := repos.Membership.Transit(ctx, "m-1", statemachine.MembershipDraft, statemachine.MembershipApproved, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Membership.Transit(ctx, "m-1", statemachine.MembershipDraft, statemachine.MembershipApproved, nil)
	require.NoError(t, err)
	assert.False(t, ok, "second transition from draft must not match")

	ok, err = repos.Membership.Transit(ctx, "m-1", statemachine.MembershipApproved, statemachine.MembershipInvoiced,
		map[string]any{"invoice_id": "inv-1", "last_invoice_date": model.Day(time.Now())})
	require.NoError(t, err)
	assert.True(t, ok)

	m, err := repos.Membership.Get(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, statemachine.MembershipInvoiced, m.State)
	assert.Equal(t, "inv-1", m.InvoiceId)
	assert.NotNil(t, m.LastInvoiceDate)
}

func TestMembershipRepo_RenewalQueries(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, 0, -1)
	future := today.AddDate(0, 0, 10)

	seedMembership(t, repos, "due-today", statemachine.MembershipActive, &today)
	seedMembership(t, repos, "due-past", statemachine.MembershipActive, &past)
	seedMembership(t, repos, "not-due", statemachine.MembershipActive, &future)
	seedMembership(t, repos, "invoiced", statemachine.MembershipInvoiced, &past)
	seedMembership(t, repos, "draft", statemachine.MembershipDraft, nil)

	due, err := repos.Membership.ListDueForRenewal(ctx, model.Day(today))
	require.NoError(t, err)
	ids := []string{}
	for _, m := range due {
		ids = append(ids, m.MembershipId)
	}
	assert.ElementsMatch(t, []string{"due-today", "due-past"}, ids)

	lapsed, err := repos.Membership.ListLapsed(ctx, model.Day(today))
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, "invoiced", lapsed[0].MembershipId)
}

func TestMembershipRepo_ExtendEndDate(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	seedMembership(t, repos, "m-1", statemachine.MembershipActive, &end)

	oldEnd := model.Day(end)
	newEnd := model.Day(end.AddDate(0, 1, 0))

	ok, err := repos.Membership.ExtendEndDate(ctx, "m-1", oldEnd, newEnd)
	require.NoError(t, err)
	assert.True(t, ok)

	// 其他进程已延长, 旧的 end_date 不再匹配
	ok, err = repos.Membership.ExtendEndDate(ctx, "m-1", oldEnd, model.Day(end.AddDate(0, 2, 0)))
	require.NoError(t, err)
	assert.False(t, ok)

	m, err := repos.Membership.Get(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-11-01", model.FormatDay(m.EndDate))
}

func TestMembershipRepo_List(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedMembership(t, repos, "m-1", statemachine.MembershipDraft, nil)
	seedMembership(t, repos, "m-2", statemachine.MembershipDraft, nil)
	seedMembership(t, repos, "m-3", statemachine.MembershipRejected, nil)

	list, total, err := repos.Membership.List(ctx, model.MembershipQuery{State: "draft", PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "m-2", list[0].MembershipId, "newest first")

	byContact, err := repos.Membership.ListByContact(ctx, "ct-m-3")
	require.NoError(t, err)
	require.Len(t, byContact, 1)
}

func TestInvoiceRepo_CreatePostAndPay(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	invoice := &model.Invoice{
		InvoiceId:      "inv-1",
		ContactId:      "ct-1",
		Origin:         "MBR/00001",
		State:          model.InvoiceStateDraft,
		PaymentState:   model.PaymentStateNotPaid,
		AmountTotal:    decimal.NewFromInt(20),
		AmountResidual: decimal.NewFromInt(20),
		Currency:       "AED",
		Lines: []model.InvoiceLine{{
			ProductCode: "MEMBERSHIP-MONTHLY",
			Name:        "Monthly",
			Quantity:    decimal.NewFromInt(1),
			PriceUnit:   decimal.NewFromInt(20),
			Subtotal:    decimal.NewFromInt(20),
		}},
	}
	require.NoError(t, repos.Invoice.Create(ctx, invoice))

	ok, err := repos.Invoice.Post(ctx, "inv-1", "INV/2026/0001")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Invoice.Post(ctx, "inv-1", "INV/2026/0002")
	require.NoError(t, err)
	assert.False(t, ok, "posted invoice cannot be posted again")

	require.NoError(t, repos.Invoice.UpdatePayment(ctx, "inv-1", model.PaymentStatePaid, decimal.Zero))

	got, err := repos.Invoice.Get(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "INV/2026/0001", got.Number)
	assert.True(t, got.Settled())
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].PriceUnit.Equal(decimal.NewFromInt(20)))

	byOrigin, err := repos.Invoice.ListByOrigin(ctx, "MBR/00001")
	require.NoError(t, err)
	assert.Len(t, byOrigin, 1)

	ok, err = repos.Invoice.Cancel(ctx, "inv-1")
	require.NoError(t, err)
	assert.False(t, ok, "paid invoice cannot be cancelled")
}

func TestInvoiceRepo_Cancel(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	for _, id := range []string{"inv-open", "inv-partial"} {
		require.NoError(t, repos.Invoice.Create(ctx, &model.Invoice{
			InvoiceId:      id,
			ContactId:      "ct-1",
			Origin:         "MBR/00001",
			State:          model.InvoiceStateDraft,
			PaymentState:   model.PaymentStateNotPaid,
			AmountTotal:    decimal.NewFromInt(20),
			AmountResidual: decimal.NewFromInt(20),
			Currency:       "AED",
		}))
		ok, err := repos.Invoice.Post(ctx, id, "INV/"+id)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, repos.Invoice.UpdatePayment(ctx, "inv-partial", model.PaymentStatePartial, decimal.NewFromInt(5)))

	ok, err := repos.Invoice.Cancel(ctx, "inv-open")
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := repos.Invoice.Get(ctx, "inv-open")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStateCancel, got.State)

	ok, err = repos.Invoice.Cancel(ctx, "inv-open")
	require.NoError(t, err)
	assert.False(t, ok, "cancelled invoice stays cancelled")

	ok, err = repos.Invoice.Cancel(ctx, "inv-partial")
	require.NoError(t, err)
	assert.False(t, ok, "invoice with payments cannot be cancelled")
}

func TestInvitationRepo_AcceptOnce(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Invitation.Create(ctx, &model.Invitation{
		InvitationId: "iv-1",
		AccountId:    "acc-1",
		Token:        "tok-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	ok, err := repos.Invitation.Accept(ctx, "iv-1", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Invitation.Accept(ctx, "iv-1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	inv, err := repos.Invitation.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusAccepted, inv.Status)
}
