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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-arcade/membership/internal/pkg/notify/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookChannel_Send(t *testing.T) {
	var got webhookPayload
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, "")
	require.NoError(t, ch.SetAuth(auth.NewBearerAuth("tok")))
	err := ch.Send(context.Background(), &Envelope{
		Template:    "membership_card",
		To:          []string{"ali@example.com"},
		Subject:     "card",
		Body:        "body",
		Attachments: []Attachment{{Name: "Membership_MBR-00001.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", authHeader)
	assert.Equal(t, "membership_card", got.Template)
	assert.Equal(t, []string{"Membership_MBR-00001.pdf"}, got.Attachments)
}

func TestWebhookChannel_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookChannel(srv.URL, http.MethodPut).Send(context.Background(), &Envelope{})
	assert.Error(t, err)
}
