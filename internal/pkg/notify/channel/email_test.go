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
	"net/smtp"
	"strings"
	"testing"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailChannel_SendMultipart(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string
	ch := NewEmailChannel("smtp.example.com", 587, "club@example.com").
		WithSendMail(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			assert.NotNil(t, a)
			return nil
		})
	require.NoError(t, ch.SetAuth(auth.NewBasicAuth("club", "secret")))

	err := ch.Send(context.Background(), &Envelope{
		To:      []string{"ali@example.com"},
		Subject: "Your card",
		Body:    "hello",
		Attachments: []Attachment{
			{Name: "Membership_MBR-00001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ali@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: club@example.com\r\n"))
	assert.Contains(t, gotMsg, "multipart/mixed; boundary=")
	assert.Contains(t, gotMsg, `attachment; filename=Membership_MBR-00001.pdf`)
	assert.Contains(t, gotMsg, "JVBERi0xLjM=")
}

func TestEmailChannel_RequiresRecipient(t *testing.T) {
	ch := NewEmailChannel("smtp.example.com", 25, "club@example.com")
	err := ch.Send(context.Background(), &Envelope{Subject: "x"})
	assert.Error(t, err)
}

func TestEmailChannel_RejectsBearer(t *testing.T) {
	ch := NewEmailChannel("smtp.example.com", 25, "club@example.com")
	assert.Error(t, ch.SetAuth(auth.NewBearerAuth("t")))
}

func TestWrapBase64(t *testing.T) {
	out := wrapBase64([]byte(strings.Repeat("a", 100)))
	for _, line := range strings.Split(strings.TrimRight(string(out), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
