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

package consts

// 序列编码
const (
	SequenceMembership = "membership.membership"
	SequenceInvoice    = "account.invoice"
)

// redis key
const (
	RenewalLockKey       = "membership:lock:renewal"
	VerifyCacheKeyPrefix = "membership:verify:"
	CardCacheKeyPrefix   = "membership:card:"
)

// 权限组
const (
	GroupPortal = "portal"
	GroupStaff  = "staff"
)

// 通知模板名称
const (
	TemplateInvitation = "invitation"
	TemplateApproved   = "membership_approved"
	TemplateCard       = "membership_card"
)

// 异步任务
const (
	TaskCardDelivery = "membership:card_delivery"
	QueueDefault     = "default"
)

// DefaultTier 公开表单未选择等级时使用
const DefaultTier = "annual"

// DefaultTermsText 默认会员条款, 提交时冻结到记录上
const DefaultTermsText = "أقر بأن جميع البيانات المقدمة صحيحة، وأوافق على شروط وأحكام رابطة مشجعي نادي المريخ."
