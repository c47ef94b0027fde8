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
	"fmt"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/pkg/card"
	"github.com/go-arcade/membership/internal/pkg/notify"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/log"
	"gorm.io/gorm"
)

// CardService renders membership cards and mails them to the member.
type CardService struct {
	repos    *repo.Repositories
	tiers    *model.TierTable
	renderer CardRenderer
	notifier Notifier
	effects  *EffectRunner
	enqueuer CardEnqueuer
	local    *cache.LocalCache
	conf     MembershipConf
}

func NewCardService(repos *repo.Repositories, tiers *model.TierTable, renderer CardRenderer, notifier Notifier,
	effects *EffectRunner, enqueuer CardEnqueuer, local *cache.LocalCache, conf MembershipConf) *CardService {
	return &CardService{
		repos:    repos,
		tiers:    tiers,
		renderer: renderer,
		notifier: notifier,
		effects:  effects,
		enqueuer: enqueuer,
		local:    local,
		conf:     conf,
	}
}

func (cs *CardService) VerifyURL(m *model.Membership) string {
	return cs.conf.PortalBaseURL + "/verify/" + m.VerifyToken
}

func (cs *CardService) cardData(m *model.Membership) card.Data {
	tierName := m.MembershipType
	if tier, ok := cs.tiers.Get(m.MembershipType); ok && tier.Name != "" {
		tierName = tier.Name
	}
	return card.Data{
		Sequence:    m.Sequence,
		Name:        m.Name,
		Tier:        m.MembershipType,
		TierName:    tierName,
		State:       string(m.State),
		IdNumber:    m.IdNumber,
		Nationality: m.Nationality,
		StartDate:   model.FormatDay(m.StartDate),
		EndDate:     model.FormatDay(m.EndDate),
		VerifyURL:   cs.VerifyURL(m),
	}
}

func (cs *CardService) render(ctx context.Context, m *model.Membership) ([]byte, error) {
	if cs.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer", card.ErrTemplateNotFound)
	}
	return cs.renderer.Render(ctx, cs.conf.CardTemplate, cs.cardData(m))
}

// Deliver renders the card and emails it. Nothing here is fatal: every
// outcome lands in the effect log.
func (cs *CardService) Deliver(ctx context.Context, m *model.Membership) {
	var pdf []byte
	status := cs.effects.Run(ctx, m, model.EffectCardRender, func(ctx context.Context) error {
		var err error
		pdf, err = cs.render(ctx, m)
		return err
	})
	if status != model.EffectStatusOk {
		return
	}

	cs.effects.Run(ctx, m, model.EffectCardEmail, func(ctx context.Context) error {
		to := cs.recipient(ctx, m)
		if to == "" {
			return skipEffect("membership %s has no email", m.Sequence)
		}
		filename := CardFilename(m.Sequence)
		return cs.notifier.Send(ctx, consts.TemplateCard, notify.Message{
			To: []string{to},
			Data: map[string]any{
				"name":       m.Name,
				"sequence":   m.Sequence,
				"start_date": model.FormatDay(m.StartDate),
				"end_date":   model.FormatDay(m.EndDate),
				"filename":   filename,
			},
			Attachments: []notify.Attachment{{Name: filename, ContentType: "application/pdf", Data: pdf}},
		})
	})
}

func (cs *CardService) recipient(ctx context.Context, m *model.Membership) string {
	if m.ContactId != "" {
		if contact, err := cs.repos.Contact.Get(ctx, m.ContactId); err == nil && contact.Email != "" {
			return contact.Email
		}
	}
	return m.Email
}

// DeliverCard is the task queue entry point. Only a failed lookup is
// returned so the task is retried; delivery problems are recorded instead.
func (cs *CardService) DeliverCard(ctx context.Context, membershipId string) error {
	m, err := cs.repos.Membership.Get(ctx, membershipId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.WithContext(ctx).Warnw("card delivery for unknown membership", "membershipId", membershipId)
		return nil
	}
	if err != nil {
		return err
	}
	cs.Deliver(ctx, m)
	return nil
}

// Dispatch 启用队列时异步投递, 入队失败或未启用时同步投递
func (cs *CardService) Dispatch(ctx context.Context, m *model.Membership) {
	if cs.enqueuer != nil {
		err := cs.enqueuer.EnqueueCardDelivery(ctx, m.MembershipId)
		if err == nil {
			return
		}
		log.WithContext(ctx).Warnw("enqueue card delivery failed, delivering inline", "sequence", m.Sequence, "error", err)
	}
	cs.Deliver(ctx, m)
}

// Download 门户下载会员卡, 按记录更新时间缓存渲染结果
func (cs *CardService) Download(ctx context.Context, m *model.Membership) ([]byte, string, error) {
	filename := CardFilename(m.Sequence)
	load := func(ctx context.Context) ([]byte, error) { return cs.render(ctx, m) }

	var (
		pdf []byte
		err error
	)
	if cs.local != nil {
		key := fmt.Sprintf("%s%s:%d", consts.CardCacheKeyPrefix, m.MembershipId, m.UpdatedAt.UnixNano())
		pdf, err = cs.local.GetOrLoad(ctx, key, load)
	} else {
		pdf, err = load(ctx)
	}
	if errors.Is(err, card.ErrTemplateNotFound) {
		return nil, "", &Error{Kind: KindNotFound, Op: "membership.card", Msg: "card template not found", Err: err}
	}
	if err != nil {
		return nil, "", err
	}
	return pdf, filename, nil
}
