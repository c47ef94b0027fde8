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
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/pkg/card"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/internal/pkg/queue"
	"github.com/go-arcade/membership/internal/pkg/storage"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideServices,
)

// ProvideServices 提供统一的 Services 实例
func ProvideServices(
	repos *repo.Repositories,
	icache cache.ICache,
	locker *cache.Locker,
	local *cache.LocalCache,
	notifier *notify.NotifyManager,
	renderer *card.Renderer,
	queueServer *queue.Server,
	store storage.StorageProvider,
	recorder *metrics.Recorder,
	auth http.Auth,
	membership MembershipConf,
	renewal RenewalConf,
	billing BillingConf,
) (*Services, error) {
	d := Deps{
		Repos:      repos,
		Cache:      icache,
		Locker:     locker,
		LocalCache: local,
		Notifier:   notifier,
		Renderer:   renderer,
		Metrics:    recorder,
		Auth:       auth,
		Membership: membership,
		Renewal:    renewal,
		Billing:    billing,
	}
	// 避免 typed nil 落入接口
	if queueServer != nil {
		d.Enqueuer = queueServer
	}
	if store != nil {
		d.Store = store
	}
	return NewServices(d)
}
