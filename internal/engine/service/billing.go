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
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/pkg/id"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/shopspring/decimal"
)

// InvoiceLineInput 发票行
type InvoiceLineInput struct {
	ProductCode string
	Name        string
	Quantity    decimal.Decimal
	PriceUnit   decimal.Decimal
}

// BillingService is the in-process ledger. Invoices are created as draft,
// posted with a journal number and settled through RegisterPayment.
type BillingService struct {
	repos *repo.Repositories
	seq   *SequenceAllocator
	conf  BillingConf
	now   func() time.Time
}

func NewBillingService(repos *repo.Repositories, seq *SequenceAllocator, conf BillingConf) *BillingService {
	return &BillingService{repos: repos, seq: seq, conf: conf, now: time.Now}
}

func (bs *BillingService) CreateInvoice(ctx context.Context, partnerId string, lines []InvoiceLineInput, origin string) (*model.Invoice, error) {
	const op = "billing.create_invoice"
	if partnerId == "" {
		return nil, validationError(op, "partner is required")
	}
	if len(lines) == 0 {
		return nil, validationError(op, "invoice needs at least one line")
	}

	invoice := &model.Invoice{
		InvoiceId:    id.GetUlid(),
		ContactId:    partnerId,
		Origin:       origin,
		State:        model.InvoiceStateDraft,
		PaymentState: model.PaymentStateNotPaid,
		Currency:     bs.conf.Currency,
		InvoiceDate:  model.DayPtr(bs.now()),
	}
	total := decimal.Zero
	for _, l := range lines {
		qty := l.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		if l.PriceUnit.IsNegative() || qty.IsNegative() {
			return nil, validationError(op, "line %q: negative amount", l.Name)
		}
		subtotal := qty.Mul(l.PriceUnit)
		total = total.Add(subtotal)
		invoice.Lines = append(invoice.Lines, model.InvoiceLine{
			InvoiceId:   invoice.InvoiceId,
			ProductCode: l.ProductCode,
			Name:        l.Name,
			Quantity:    qty,
			PriceUnit:   l.PriceUnit,
			Subtotal:    subtotal,
		})
	}
	invoice.AmountTotal = total
	invoice.AmountResidual = total

	if err := bs.repos.Invoice.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Post 分配发票号并 draft -> posted; 零金额发票直接视为已付
func (bs *BillingService) Post(ctx context.Context, invoice *model.Invoice) error {
	const op = "billing.post"
	if invoice.State != model.InvoiceStateDraft {
		return notAllowed(op, "invoice %s is %s", invoice.InvoiceId, invoice.State)
	}
	number, err := bs.seq.Next(ctx, consts.SequenceInvoice)
	if err != nil {
		return err
	}
	ok, err := bs.repos.Invoice.Post(ctx, invoice.InvoiceId, number)
	if err != nil {
		return err
	}
	if !ok {
		return notAllowed(op, "invoice %s is no longer draft", invoice.InvoiceId)
	}
	invoice.State = model.InvoiceStatePosted
	invoice.Number = number

	if invoice.AmountTotal.IsZero() {
		if err := bs.repos.Invoice.UpdatePayment(ctx, invoice.InvoiceId, model.PaymentStatePaid, decimal.Zero); err != nil {
			return err
		}
		invoice.PaymentState = model.PaymentStatePaid
	}
	return nil
}

// Cancel 作废未收款的发票, 之后不能再登记收款
func (bs *BillingService) Cancel(ctx context.Context, invoice *model.Invoice) error {
	const op = "billing.cancel"
	if invoice.State == model.InvoiceStateCancel {
		return nil
	}
	ok, err := bs.repos.Invoice.Cancel(ctx, invoice.InvoiceId)
	if err != nil {
		return err
	}
	if !ok {
		return notAllowed(op, "invoice %s already has payments", invoice.InvoiceId)
	}
	invoice.State = model.InvoiceStateCancel
	return nil
}

func (bs *BillingService) Get(ctx context.Context, invoiceId string) (*model.Invoice, error) {
	invoice, err := bs.repos.Invoice.Get(ctx, invoiceId)
	if err != nil {
		return nil, wrapNotFound("billing.get", "invoice", err)
	}
	return invoice, nil
}

func (bs *BillingService) ListByOrigin(ctx context.Context, origin string) ([]*model.Invoice, error) {
	return bs.repos.Invoice.ListByOrigin(ctx, origin)
}

// RegisterPayment 登记收款, 足额为 paid, 否则为 partial
func (bs *BillingService) RegisterPayment(ctx context.Context, invoiceId string, amount decimal.Decimal, reference string) (*model.Invoice, error) {
	const op = "billing.register_payment"
	if !amount.IsPositive() {
		return nil, validationError(op, "payment amount must be positive")
	}

	var out *model.Invoice
	err := bs.repos.Transaction(ctx, func(ctx context.Context) error {
		invoice, err := bs.repos.Invoice.GetForUpdate(ctx, invoiceId)
		if err != nil {
			return wrapNotFound(op, "invoice", err)
		}
		if invoice.State != model.InvoiceStatePosted {
			return notAllowed(op, "invoice %s is %s", invoiceId, invoice.State)
		}
		if invoice.Settled() {
			return notAllowed(op, "invoice %s is already paid", invoiceId)
		}
		if amount.GreaterThan(invoice.AmountResidual) {
			return validationError(op, "payment %s exceeds residual %s", amount.StringFixed(2), invoice.AmountResidual.StringFixed(2))
		}

		payment := &model.InvoicePayment{
			PaymentId: id.GetUlid(),
			InvoiceId: invoiceId,
			Amount:    amount,
			Reference: reference,
			PaidAt:    bs.now(),
		}
		if err := bs.repos.Invoice.CreatePayment(ctx, payment); err != nil {
			return err
		}

		residual := invoice.AmountResidual.Sub(amount)
		state := model.PaymentStatePartial
		if residual.IsZero() {
			state = model.PaymentStatePaid
		}
		if err := bs.repos.Invoice.UpdatePayment(ctx, invoiceId, state, residual); err != nil {
			return err
		}
		invoice.PaymentState = state
		invoice.AmountResidual = residual
		out = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("payment registered",
		"invoice", out.Number, "amount", amount.StringFixed(2), "paymentState", out.PaymentState)
	return out, nil
}
