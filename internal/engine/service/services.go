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
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/metrics"
)

// Deps 构建 Services 所需的依赖, 可选协作者为 nil 时对应功能降级
type Deps struct {
	Repos      *repo.Repositories
	Cache      cache.ICache      // 会话与校验缓存, 可为 nil
	Locker     *cache.Locker     // 续费互斥锁, 可为 nil
	LocalCache *cache.LocalCache // 会员卡缓存, 可为 nil
	Notifier   Notifier
	Renderer   CardRenderer
	Enqueuer   CardEnqueuer      // 可为 nil, 此时同步投递会员卡
	Store      ObjectStore       // 可为 nil, 此时丢弃上传文件
	Metrics    *metrics.Recorder // 可为 nil
	Auth       http.Auth
	Membership MembershipConf
	Renewal    RenewalConf
	Billing    BillingConf
}

// Services 统一管理所有 service
type Services struct {
	Tiers     *model.TierTable
	Records   *RecordService
	Billing   *BillingService
	Invoicing *InvoicingService
	Lifecycle *LifecycleService
	Renewal   *RenewalService
	Accounts  *AccountService
	Cards     *CardService
	Effects   *EffectRunner
}

// NewServices 初始化所有 service
func NewServices(d Deps) (*Services, error) {
	d.Membership.SetDefaults()
	d.Renewal.SetDefaults()
	d.Billing.SetDefaults()

	tiers, err := model.NewTierTable(d.Membership.Tiers)
	if err != nil {
		return nil, err
	}
	if _, ok := tiers.Get(d.Membership.DefaultTier); !ok {
		return nil, configurationError("services", "default tier %q is not configured", d.Membership.DefaultTier)
	}

	t := transitioner{repos: d.Repos, metrics: d.Metrics}
	seq := NewSequenceAllocator(d.Repos.Sequence, d.Membership, d.Billing)
	effects := NewEffectRunner(d.Repos, d.Metrics)
	billing := NewBillingService(d.Repos, seq, d.Billing)
	records := NewRecordService(d.Repos, seq, tiers, d.Store, d.Cache, d.Membership)
	invoicing := NewInvoicingService(t, billing, tiers)
	accounts := NewAccountService(d.Repos, d.Notifier, effects, d.Cache, d.Auth, d.Membership)
	cards := NewCardService(d.Repos, tiers, d.Renderer, d.Notifier, effects, d.Enqueuer, d.LocalCache, d.Membership)
	lifecycle := NewLifecycleService(t, records, invoicing, billing, accounts, cards, effects, d.Notifier, tiers, d.Billing)
	renewal := NewRenewalService(t, invoicing, records, tiers, d.Locker, d.Renewal)

	return &Services{
		Tiers:     tiers,
		Records:   records,
		Billing:   billing,
		Invoicing: invoicing,
		Lifecycle: lifecycle,
		Renewal:   renewal,
		Accounts:  accounts,
		Cards:     cards,
		Effects:   effects,
	}, nil
}
