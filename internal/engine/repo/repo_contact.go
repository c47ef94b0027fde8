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
	"strings"
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
)

type IContactRepository interface {
	Get(ctx context.Context, contactId string) (*model.Contact, error)
	FindByEmail(ctx context.Context, email string) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact *model.Contact) error
}

type ContactRepo struct {
	database.IDatabase
}

func NewContactRepo(db database.IDatabase) IContactRepository {
	return &ContactRepo{
		IDatabase: db,
	}
}

func (cr *ContactRepo) Get(ctx context.Context, contactId string) (*model.Contact, error) {
	var contact model.Contact
	err := conn(ctx, cr).Table(contact.TableName()).
		Where("contact_id = ?", contactId).
		First(&contact).Error
	return &contact, err
}

// FindByEmail 邮箱统一小写存储, 比较时不区分大小写
func (cr *ContactRepo) FindByEmail(ctx context.Context, email string) (*model.Contact, error) {
	var contact model.Contact
	err := conn(ctx, cr).Table(contact.TableName()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("id ASC").
		First(&contact).Error
	return &contact, err
}

func (cr *ContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	return conn(ctx, cr).Table(contact.TableName()).Create(contact).Error
}

// Update 更新姓名、电话、邮箱
func (cr *ContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	return conn(ctx, cr).Table(contact.TableName()).
		Where("contact_id = ?", contact.ContactId).
		Updates(map[string]any{
			"name":       contact.Name,
			"phone":      contact.Phone,
			"email":      contact.Email,
			"updated_at": time.Now(),
		}).Error
}
