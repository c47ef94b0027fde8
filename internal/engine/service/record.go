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
	"io"
	"strings"
	"time"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/repo"
	"github.com/go-arcade/membership/internal/pkg/storage"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/id"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/statemachine"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TermsRequiredMsg is shown on the public form when consent is missing.
const TermsRequiredMsg = "You must accept the terms and conditions."

// Upload 申请表附带的文件
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateInput 申请表字段
type CreateInput struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Nationality       string `json:"nationality"`
	IdNumber          string `json:"id_number"`
	BirthDate         string `json:"birth_date"`
	SecondaryIdNumber string `json:"secondary_id_number"`
	JobTitle          string `json:"job_title"`
	Address           string `json:"address"`
	MembershipType    string `json:"membership_type"`
	AcceptTerms       bool   `json:"accept_terms"`

	Photo   *Upload `json:"-"`
	IdImage *Upload `json:"-"`
}

// RecordService owns membership creation, identifiers and contact linking.
type RecordService struct {
	repos  *repo.Repositories
	seq    *SequenceAllocator
	tiers  *model.TierTable
	store  ObjectStore
	conf   MembershipConf
	verify *cache.CachedQuery[*model.MembershipVerify]
	now    func() time.Time
}

func NewRecordService(repos *repo.Repositories, seq *SequenceAllocator, tiers *model.TierTable,
	store ObjectStore, sessions cache.ICache, conf MembershipConf) *RecordService {
	rs := &RecordService{repos: repos, seq: seq, tiers: tiers, store: store, conf: conf, now: time.Now}
	rs.verify = cache.NewCachedQuery(sessions, consts.VerifyCacheKeyPrefix, conf.VerifyCacheTTL, rs.loadVerify)
	return rs
}

func (rs *RecordService) Tiers() *model.TierTable { return rs.tiers }

func (rs *RecordService) TermsText() string { return rs.conf.TermsText }

func (rs *RecordService) DefaultTier() string { return rs.conf.DefaultTier }

func (rs *RecordService) validate(in *CreateInput) (model.Tier, *datatypes.Date, error) {
	const op = "membership.create"
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.IdNumber = strings.TrimSpace(in.IdNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.MembershipType = strings.TrimSpace(in.MembershipType)

	switch {
	case in.Name == "":
		return model.Tier{}, nil, validationError(op, "name is required")
	case in.Phone == "":
		return model.Tier{}, nil, validationError(op, "phone is required")
	case in.IdNumber == "":
		return model.Tier{}, nil, validationError(op, "id number is required")
	case !in.AcceptTerms:
		return model.Tier{}, nil, &Error{Kind: KindValidation, Op: op, Msg: TermsRequiredMsg}
	}

	if in.MembershipType == "" {
		in.MembershipType = rs.conf.DefaultTier
	}
	tier, ok := rs.tiers.Get(in.MembershipType)
	if !ok {
		return model.Tier{}, nil, validationError(op, "unknown membership type %q", in.MembershipType)
	}

	var birth *datatypes.Date
	if s := strings.TrimSpace(in.BirthDate); s != "" {
		d, err := model.ParseDay(s)
		if err != nil {
			return model.Tier{}, nil, validationError(op, "invalid birth date %q", s)
		}
		birth = &d
	}
	return tier, birth, nil
}

// Create 创建会员申请, 状态为 draft
func (rs *RecordService) Create(ctx context.Context, actor Actor, in CreateInput) (*model.Membership, error) {
	tier, birth, err := rs.validate(&in)
	if err != nil {
		return nil, err
	}

	m := &model.Membership{
		MembershipId:      id.GetUlid(),
		VerifyToken:       id.GetUUID(),
		Name:              in.Name,
		Phone:             in.Phone,
		Email:             strings.ToLower(in.Email),
		Nationality:       strings.TrimSpace(in.Nationality),
		IdNumber:          in.IdNumber,
		BirthDate:         birth,
		SecondaryIdNumber: strings.TrimSpace(in.SecondaryIdNumber),
		JobTitle:          strings.TrimSpace(in.JobTitle),
		Address:           strings.TrimSpace(in.Address),
		AcceptTerms:       true,
		TermsText:         rs.conf.TermsText,
		MembershipType:    tier.Code,
		Amount:            tier.Fee,
		State:             statemachine.MembershipDraft,
	}

	// 文件先上传, 事务失败时留下孤儿对象
	if m.PhotoObject, err = rs.upload(ctx, "photo", in.Photo); err != nil {
		return nil, err
	}
	if m.IdImageObject, err = rs.upload(ctx, "id_image", in.IdImage); err != nil {
		return nil, err
	}

	err = rs.repos.Transaction(ctx, func(ctx context.Context) error {
		seq, err := rs.seq.Next(ctx, consts.SequenceMembership)
		if err != nil {
			return err
		}
		m.Sequence = seq

		contact, err := rs.linkContact(ctx, m)
		if err != nil {
			return err
		}
		m.ContactId = contact.ContactId
		return rs.repos.Membership.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	log.WithContext(ctx).Infow("membership created",
		"sequence", m.Sequence, "tier", m.MembershipType, "actor", actor.String())
	return m, nil
}

// linkContact 有邮箱且已存在联系人时更新并复用, 否则新建
func (rs *RecordService) linkContact(ctx context.Context, m *model.Membership) (*model.Contact, error) {
	if m.Email != "" {
		contact, err := rs.repos.Contact.FindByEmail(ctx, m.Email)
		switch {
		case err == nil:
			contact.Name, contact.Phone, contact.Email = m.Name, m.Phone, m.Email
			if err := rs.repos.Contact.Update(ctx, contact); err != nil {
				return nil, err
			}
			return contact, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	contact := &model.Contact{
		ContactId: id.GetUlid(),
		Name:      m.Name,
		Phone:     m.Phone,
		Email:     m.Email,
	}
	if err := rs.repos.Contact.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (rs *RecordService) upload(ctx context.Context, kind string, up *Upload) (string, error) {
	if up == nil || up.Reader == nil || up.Size == 0 {
		return "", nil
	}
	if rs.store == nil {
		log.WithContext(ctx).Warnw("object storage disabled, upload dropped", "kind", kind, "filename", up.Filename)
		return "", nil
	}
	object, err := rs.store.PutObject(ctx, storage.ObjectName(kind, up.Filename, rs.now()), up.Reader, up.Size, up.ContentType)
	if err != nil {
		return "", err
	}
	return object, nil
}

func (rs *RecordService) Get(ctx context.Context, membershipId string) (*model.Membership, error) {
	m, err := rs.repos.Membership.Get(ctx, membershipId)
	if err != nil {
		return nil, wrapNotFound("membership.get", "membership", err)
	}
	return m, nil
}

func (rs *RecordService) List(ctx context.Context, q model.MembershipQuery) ([]*model.Membership, int64, error) {
	return rs.repos.Membership.List(ctx, q)
}

// GetOwned 门户访问, 不属于调用者的记录同样返回 NotFound
func (rs *RecordService) GetOwned(ctx context.Context, actor Actor, membershipId string) (*model.Membership, error) {
	m, err := rs.Get(ctx, membershipId)
	if err != nil {
		return nil, err
	}
	if actor.ContactId == "" || m.ContactId != actor.ContactId {
		return nil, notFound("membership.get", "membership")
	}
	return m, nil
}

func (rs *RecordService) ListOwned(ctx context.Context, actor Actor) ([]*model.Membership, error) {
	if actor.ContactId == "" {
		return []*model.Membership{}, nil
	}
	return rs.repos.Membership.ListByContact(ctx, actor.ContactId)
}

// ChangeTier 开票前允许调整等级, 金额随之更新
func (rs *RecordService) ChangeTier(ctx context.Context, actor Actor, membershipId, tierCode string) (*model.Membership, error) {
	const op = "membership.change_tier"
	tier, ok := rs.tiers.Get(tierCode)
	if !ok {
		return nil, validationError(op, "unknown membership type %q", tierCode)
	}
	m, err := rs.Get(ctx, membershipId)
	if err != nil {
		return nil, err
	}
	if m.State != statemachine.MembershipDraft && m.State != statemachine.MembershipApproved {
		return nil, notAllowed(op, "tier cannot change once %s", m.State)
	}
	ok, err = rs.repos.Membership.Transit(ctx, m.MembershipId, m.State, m.State, map[string]any{
		"membership_type": tier.Code,
		"amount":          tier.Fee,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notAllowed(op, "membership %s changed concurrently", m.Sequence)
	}
	m.MembershipType, m.Amount = tier.Code, tier.Fee
	log.WithContext(ctx).Infow("membership tier changed", "sequence", m.Sequence, "tier", tier.Code, "actor", actor.String())
	return m, nil
}

// Verify 公开校验会员卡, 结果缓存在 redis
func (rs *RecordService) Verify(ctx context.Context, token string) (*model.MembershipVerify, error) {
	if strings.TrimSpace(token) == "" {
		return nil, notFound("membership.verify", "membership")
	}
	return rs.verify.Get(ctx, token)
}

func (rs *RecordService) InvalidateVerify(ctx context.Context, token string) {
	if err := rs.verify.Invalidate(ctx, token); err != nil {
		log.WithContext(ctx).Warnw("failed to invalidate verify cache", "error", err)
	}
}

func (rs *RecordService) loadVerify(ctx context.Context, token string) (*model.MembershipVerify, error) {
	m, err := rs.repos.Membership.GetByVerifyToken(ctx, token)
	if err != nil {
		return nil, wrapNotFound("membership.verify", "membership", err)
	}
	tierName := m.MembershipType
	if tier, ok := rs.tiers.Get(m.MembershipType); ok && tier.Name != "" {
		tierName = tier.Name
	}
	return &model.MembershipVerify{
		Sequence: m.Sequence,
		Name:     m.Name,
		Tier:     tierName,
		State:    string(m.State),
		EndDate:  model.FormatDay(m.EndDate),
	}, nil
}
