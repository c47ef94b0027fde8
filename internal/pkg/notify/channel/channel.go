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

package channel

import (
	"context"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
)

// Attachment is a file sent along with a message
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Envelope is a rendered message ready for delivery
type Envelope struct {
	Template    string
	To          []string
	Subject     string
	Body        string
	Format      string // text | html
	Attachments []Attachment
}

// INotifyChannel defines the notification channel interface
type INotifyChannel interface {
	// SetAuth sets the authentication provider
	SetAuth(provider auth.IAuthProvider) error
	// Send delivers a rendered envelope
	Send(ctx context.Context, env *Envelope) error
	// Validate validates the channel configuration
	Validate() error
	// Close closes the channel connection
	Close() error
}
