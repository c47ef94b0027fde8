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

	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Membership 会员记录
type Membership struct {
	BaseModel
	MembershipId      string                       `gorm:"column:membership_id;size:64;uniqueIndex" json:"membershipId"`
	Sequence          string                       `gorm:"column:sequence;size:64;uniqueIndex" json:"sequence"`
	VerifyToken       string                       `gorm:"column:verify_token;size:64;uniqueIndex" json:"-"`
	Name              string                       `gorm:"column:name" json:"name"`
	Phone             string                       `gorm:"column:phone" json:"phone"`
	Email             string                       `gorm:"column:email" json:"email"`
	Nationality       string                       `gorm:"column:nationality" json:"nationality"`
	IdNumber          string                       `gorm:"column:id_number" json:"idNumber"`
	BirthDate         *datatypes.Date              `gorm:"column:birth_date" json:"birthDate,omitempty"`
	SecondaryIdNumber string                       `gorm:"column:secondary_id_number" json:"secondaryIdNumber"`
	JobTitle          string                       `gorm:"column:job_title" json:"jobTitle"`
	Address           string                       `gorm:"column:address" json:"address"`
	PhotoObject       string                       `gorm:"column:photo_object" json:"photoObject,omitempty"`
	IdImageObject     string                       `gorm:"column:id_image_object" json:"idImageObject,omitempty"`
	AcceptTerms       bool                         `gorm:"column:accept_terms" json:"acceptTerms"`
	TermsText         string                       `gorm:"column:terms_text;type:text" json:"termsText"`
	MembershipType    string                       `gorm:"column:membership_type;size:32" json:"membershipType"`
	Amount            decimal.Decimal              `gorm:"column:amount;type:decimal(12,2)" json:"amount"`
	State             statemachine.MembershipState `gorm:"column:state;size:16;index" json:"state"`
	StartDate         *datatypes.Date              `gorm:"column:start_date" json:"startDate,omitempty"`
	EndDate           *datatypes.Date              `gorm:"column:end_date;index" json:"endDate,omitempty"`
	LastInvoiceDate   *datatypes.Date              `gorm:"column:last_invoice_date" json:"lastInvoiceDate,omitempty"`
	ContactId         string                       `gorm:"column:contact_id;size:64;index" json:"contactId"`
	InvoiceId         string                       `gorm:"column:invoice_id;size:64" json:"invoiceId,omitempty"`
}

func (Membership) TableName() string {
	return "t_membership"
}

// HasInvoice 是否关联了发票
func (m *Membership) HasInvoice() bool {
	return m.InvoiceId != ""
}

// StartTime 返回开始日期, 未设置时返回零值
func (m *Membership) StartTime() time.Time {
	if m.StartDate == nil {
		return time.Time{}
	}
	return time.Time(*m.StartDate)
}

// EndTime 返回结束日期, 未设置时返回零值
func (m *Membership) EndTime() time.Time {
	if m.EndDate == nil {
		return time.Time{}
	}
	return time.Time(*m.EndDate)
}

// MembershipQuery 后台列表查询条件
type MembershipQuery struct {
	State     string
	ContactId string
	Keyword   string
	PageNum   int
	PageSize  int
}

// MembershipVerify 公开校验返回的信息
type MembershipVerify struct {
	Sequence string `json:"sequence"`
	Name     string `json:"name"`
	Tier     string `json:"tier"`
	State    string `json:"state"`
	EndDate  string `json:"endDate,omitempty"`
}
