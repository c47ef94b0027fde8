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
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
)

// SendMailFunc matches smtp.SendMail
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends mail through an SMTP relay
type EmailChannel struct {
	smtpHost     string
	smtpPort     int
	fromEmail    string
	authProvider auth.IAuthProvider
	sendMail     SendMailFunc
}

// NewEmailChannel creates a new email notification channel
func NewEmailChannel(smtpHost string, smtpPort int, fromEmail string) *EmailChannel {
	return &EmailChannel{
		smtpHost:  smtpHost,
		smtpPort:  smtpPort,
		fromEmail: fromEmail,
		sendMail:  smtp.SendMail,
	}
}

// WithSendMail replaces the SMTP transport
func (c *EmailChannel) WithSendMail(fn SendMailFunc) *EmailChannel {
	c.sendMail = fn
	return c
}

// SetAuth sets authentication provider, email only supports basic auth
func (c *EmailChannel) SetAuth(provider auth.IAuthProvider) error {
	if provider == nil {
		return nil
	}
	if provider.GetAuthType() != auth.AuthTypeBasic {
		return fmt.Errorf("email channel only supports basic auth")
	}
	c.authProvider = provider
	return provider.Validate()
}

func (c *EmailChannel) Send(ctx context.Context, env *Envelope) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(env.To) == 0 {
		return fmt.Errorf("email recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := c.buildMessage(env)
	if err != nil {
		return err
	}

	var smtpAuth smtp.Auth
	if basic, ok := c.authProvider.(*auth.BasicAuth); ok {
		smtpAuth = smtp.PlainAuth("", basic.Username, basic.Password, c.smtpHost)
	}

	addr := fmt.Sprintf("%s:%d", c.smtpHost, c.smtpPort)
	if err := c.sendMail(addr, smtpAuth, c.fromEmail, env.To, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage 构建 multipart/mixed 邮件, 附件使用 base64 编码
func (c *EmailChannel) buildMessage(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := "From: " + c.fromEmail + "\r\n" +
		"To: " + strings.Join(env.To, ", ") + "\r\n" +
		"Subject: " + mime.QEncoding.Encode("utf-8", env.Subject) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=" + mw.Boundary() + "\r\n\r\n"

	contentType := "text/plain; charset=utf-8"
	if env.Format == "html" {
		contentType = "text/html; charset=utf-8"
	}
	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := body.Write(wrapBase64([]byte(env.Body))); err != nil {
		return nil, err
	}

	for _, a := range env.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrapBase64(a.Data)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(header), buf.Bytes()...), nil
}

// wrapBase64 按 76 列折行
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	out.WriteString("\r\n")
	return out.Bytes()
}

func (c *EmailChannel) Validate() error {
	if c.smtpHost == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.smtpPort <= 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.fromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	if c.authProvider != nil {
		return c.authProvider.Validate()
	}
	return nil
}

func (c *EmailChannel) Close() error {
	return nil
}
