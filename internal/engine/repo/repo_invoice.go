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
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IInvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Get(ctx context.Context, invoiceId string) (*model.Invoice, error)
	GetForUpdate(ctx context.Context, invoiceId string) (*model.Invoice, error)
	ListByOrigin(ctx context.Context, origin string) ([]*model.Invoice, error)
	Post(ctx context.Context, invoiceId, number string) (bool, error)
	Cancel(ctx context.Context, invoiceId string) (bool, error)
	UpdatePayment(ctx context.Context, invoiceId, paymentState string, residual decimal.Decimal) error
	CreatePayment(ctx context.Context, payment *model.InvoicePayment) error
}

type InvoiceRepo struct {
	database.IDatabase
}

func NewInvoiceRepo(db database.IDatabase) IInvoiceRepository {
	return &InvoiceRepo{
		IDatabase: db,
	}
}

// Create 同时写入发票行
func (ir *InvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return conn(ctx, ir).Create(invoice).Error
}

func (ir *InvoiceRepo) Get(ctx context.Context, invoiceId string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := conn(ctx, ir).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("invoice_id = ?", invoiceId).
		First(&invoice).Error
	return &invoice, err
}

// GetForUpdate 登记收款前锁定发票行 (sqlite 忽略 FOR UPDATE)
func (ir *InvoiceRepo) GetForUpdate(ctx context.Context, invoiceId string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := conn(ctx, ir).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("invoice_id = ?", invoiceId).
		First(&invoice).Error
	return &invoice, err
}

func (ir *InvoiceRepo) ListByOrigin(ctx context.Context, origin string) ([]*model.Invoice, error) {
	var list []*model.Invoice
	err := conn(ctx, ir).
		Preload("Lines").
		Where("origin = ?", origin).
		Order("id DESC").
		Find(&list).Error
	return list, err
}

// Post draft -> posted, 同时写入发票号
func (ir *InvoiceRepo) Post(ctx context.Context, invoiceId, number string) (bool, error) {
	var invoice model.Invoice
	res := conn(ctx, ir).Table(invoice.TableName()).
		Where("invoice_id = ? AND state = ?", invoiceId, model.InvoiceStateDraft).
		Updates(map[string]any{
			"state":      model.InvoiceStatePosted,
			"number":     number,
			"updated_at": time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

// Cancel 仅取消没有任何收款的 draft / posted 发票
func (ir *InvoiceRepo) Cancel(ctx context.Context, invoiceId string) (bool, error) {
	var invoice model.Invoice
	res := conn(ctx, ir).Table(invoice.TableName()).
		Where("invoice_id = ? AND state IN ? AND payment_state = ?", invoiceId,
			[]string{model.InvoiceStateDraft, model.InvoiceStatePosted}, model.PaymentStateNotPaid).
		Updates(map[string]any{
			"state":      model.InvoiceStateCancel,
			"updated_at": time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (ir *InvoiceRepo) UpdatePayment(ctx context.Context, invoiceId, paymentState string, residual decimal.Decimal) error {
	var invoice model.Invoice
	return conn(ctx, ir).Table(invoice.TableName()).
		Where("invoice_id = ?", invoiceId).
		Updates(map[string]any{
			"payment_state":   paymentState,
			"amount_residual": residual,
			"updated_at":      time.Now(),
		}).Error
}

func (ir *InvoiceRepo) CreatePayment(ctx context.Context, payment *model.InvoicePayment) error {
	return conn(ctx, ir).Table(payment.TableName()).Create(payment).Error
}
