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
	"io"
	"strings"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/pkg/card"
	"github.com/go-arcade/membership/internal/pkg/notify"
)

// Notifier sends a templated notification. A missing template yields
// notify.ErrTemplateNotFound.
type Notifier interface {
	Send(ctx context.Context, template string, msg notify.Message) error
}

// CardRenderer renders a membership card document
type CardRenderer interface {
	Render(ctx context.Context, template string, data card.Data) ([]byte, error)
}

// CardEnqueuer hands card delivery to the task queue
type CardEnqueuer interface {
	EnqueueCardDelivery(ctx context.Context, membershipId string) error
}

// ObjectStore keeps applicant uploads
type ObjectStore interface {
	PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}

// Billing is the invoicing collaborator
type Billing interface {
	CreateInvoice(ctx context.Context, partnerId string, lines []InvoiceLineInput, origin string) (*model.Invoice, error)
	Post(ctx context.Context, invoice *model.Invoice) error
	Cancel(ctx context.Context, invoice *model.Invoice) error
	Get(ctx context.Context, invoiceId string) (*model.Invoice, error)
}

// CardFilename 会员卡附件名, 序列号中的 "/" 替换为 "-"
func CardFilename(sequence string) string {
	return "Membership_" + strings.ReplaceAll(sequence, "/", "-") + ".pdf"
}
