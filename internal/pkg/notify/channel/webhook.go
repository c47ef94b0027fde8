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
	"fmt"
	"net/http"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-resty/resty/v2"
)

// WebhookChannel posts rendered messages as JSON
type WebhookChannel struct {
	webhookURL   string
	method       string
	authProvider auth.IAuthProvider
	client       *resty.Client
}

type webhookPayload struct {
	Template    string   `json:"template"`
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

// NewWebhookChannel creates a new generic webhook notification channel
func NewWebhookChannel(webhookURL, method string) *WebhookChannel {
	if method == "" {
		method = http.MethodPost
	}
	return &WebhookChannel{
		webhookURL: webhookURL,
		method:     method,
		client:     resty.New(),
	}
}

// SetAuth sets authentication provider (supports multiple auth methods)
func (c *WebhookChannel) SetAuth(provider auth.IAuthProvider) error {
	if provider == nil {
		return nil
	}
	c.authProvider = provider
	return provider.Validate()
}

func (c *WebhookChannel) Send(ctx context.Context, env *Envelope) error {
	if err := c.Validate(); err != nil {
		return err
	}

	payload := webhookPayload{
		Template: env.Template,
		To:       env.To,
		Subject:  env.Subject,
		Body:     env.Body,
	}
	for _, a := range env.Attachments {
		payload.Attachments = append(payload.Attachments, a.Name)
	}

	req := c.client.R().SetContext(ctx)
	if c.authProvider != nil {
		key, value := c.authProvider.GetAuthHeader()
		if key != "" && value != "" {
			req.SetHeader(key, value)
		}
	}
	req.SetHeader("Content-Type", "application/json")
	req.SetBody(payload)

	var resp *resty.Response
	var err error
	switch c.method {
	case http.MethodPut:
		resp, err = req.Put(c.webhookURL)
	case http.MethodPatch:
		resp, err = req.Patch(c.webhookURL)
	default:
		resp, err = req.Post(c.webhookURL)
	}

	if err != nil {
		log.Errorw("webhook send request failed", "error", err)
		return fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.Errorw("webhook request failed", "statusCode", resp.StatusCode(), "response", resp.String())
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode())
	}

	return nil
}

func (c *WebhookChannel) Validate() error {
	if c.webhookURL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if c.authProvider != nil {
		return c.authProvider.Validate()
	}
	return nil
}

func (c *WebhookChannel) Close() error {
	return nil
}
