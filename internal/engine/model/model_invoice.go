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

package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 发票状态
const (
	InvoiceStateDraft  = "draft"
	InvoiceStatePosted = "posted"
	InvoiceStateCancel = "cancel"
)

// 收款状态
const (
	PaymentStateNotPaid   = "not_paid"
	PaymentStateInPayment = "in_payment"
	PaymentStatePaid      = "paid"
	PaymentStatePartial   = "partial"
	PaymentStateReversed  = "reversed"
)

// Invoice 账单, 由内置账本维护
type Invoice struct {
	BaseModel
	InvoiceId      string          `gorm:"column:invoice_id;size:64;uniqueIndex" json:"invoiceId"`
	Number         string          `gorm:"column:number;size:64" json:"number"`
	ContactId      string          `gorm:"column:contact_id;size:64;index" json:"contactId"`
	Origin         string          `gorm:"column:origin;size:64;index" json:"origin"`
	State          string          `gorm:"column:state;size:16" json:"state"`
	PaymentState   string          `gorm:"column:payment_state;size:16" json:"paymentState"`
	AmountTotal    decimal.Decimal `gorm:"column:amount_total;type:decimal(12,2)" json:"amountTotal"`
	AmountResidual decimal.Decimal `gorm:"column:amount_residual;type:decimal(12,2)" json:"amountResidual"`
	Currency       string          `gorm:"column:currency;size:8" json:"currency"`
	InvoiceDate    *datatypes.Date `gorm:"column:invoice_date" json:"invoiceDate,omitempty"`
	Lines          []InvoiceLine   `gorm:"foreignKey:InvoiceId;references:InvoiceId" json:"lines,omitempty"`
}

func (Invoice) TableName() string {
	return "t_invoice"
}

// Settled paid 与 in_payment 视为已结清
func (i *Invoice) Settled() bool {
	return i.PaymentState == PaymentStatePaid || i.PaymentState == PaymentStateInPayment
}

type InvoiceLine struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvoiceId   string          `gorm:"column:invoice_id;size:64;index" json:"invoiceId"`
	ProductCode string          `gorm:"column:product_code;size:64" json:"productCode"`
	Name        string          `gorm:"column:name" json:"name"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(12,2)" json:"quantity"`
	PriceUnit   decimal.Decimal `gorm:"column:price_unit;type:decimal(12,2)" json:"priceUnit"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:decimal(12,2)" json:"subtotal"`
}

func (InvoiceLine) TableName() string {
	return "t_invoice_line"
}

// InvoicePayment 登记的收款
type InvoicePayment struct {
	BaseModel
	PaymentId string          `gorm:"column:payment_id;size:64;uniqueIndex" json:"paymentId"`
	InvoiceId string          `gorm:"column:invoice_id;size:64;index" json:"invoiceId"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(12,2)" json:"amount"`
	Reference string          `gorm:"column:reference" json:"reference"`
	PaidAt    time.Time       `gorm:"column:paid_at" json:"paidAt"`
}

func (InvoicePayment) TableName() string {
	return "t_invoice_payment"
}

// RegisterPaymentReq 后台登记收款
type RegisterPaymentReq struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}
