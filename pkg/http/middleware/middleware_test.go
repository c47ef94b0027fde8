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

package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpx "github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var testAuth = httpx.Auth{
	SecretKey:        "test-secret",
	AccessExpire:     time.Hour,
	RefreshExpire:    2 * time.Hour,
	SessionKeyPrefix: "membership:session:",
}

// sessionStore 只实现 Get, 其他方法不会被认证中间件调用
type sessionStore struct {
	values map[string]string
}

func (s *sessionStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *sessionStore) Set(context.Context, string, any, time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (s *sessionStore) SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (s *sessionStore) Del(context.Context, ...string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (s *sessionStore) Exists(context.Context, ...string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (s *sessionStore) TTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(0, nil)
}

func (s *sessionStore) Eval(context.Context, string, []string, ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, nil)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	return out
}

func TestRequestMiddleware_WithExistingRequestId(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		if got := c.Locals(RequestIdKey); got != "existing-request-id-12345" {
			t.Errorf("request id should be preserved, got: %v", got)
		}
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "existing-request-id-12345")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	if resp.Header.Get("X-Request-Id") != "existing-request-id-12345" {
		t.Errorf("response header not echoed: %s", resp.Header.Get("X-Request-Id"))
	}
}

func TestRequestMiddleware_GeneratesUUID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		if err != nil {
			t.Fatalf("failed to test request: %v", err)
		}
		requestId := resp.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(requestId); err != nil {
			t.Errorf("X-Request-Id should be a valid UUID, got: %s", requestId)
		}
		if seen[requestId] {
			t.Errorf("duplicate request id %s", requestId)
		}
		seen[requestId] = true
	}
}

func TestUnifiedResponseMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(UnifiedResponseMiddleware())
	app.Get("/detail", func(c *fiber.Ctx) error {
		c.Locals(DETAIL, map[string]string{"sequence": "MBR/00001"})
		return nil
	})
	app.Post("/operation", func(c *fiber.Ctx) error {
		c.Locals(OPERATION, "approve")
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/detail", nil))
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	body := decode(t, resp)
	if body["code"] != float64(200) || body["msg"] != "Request Success" {
		t.Errorf("unexpected envelope: %v", body)
	}
	if detail, ok := body["detail"].(map[string]any); !ok || detail["sequence"] != "MBR/00001" {
		t.Errorf("unexpected detail: %v", body["detail"])
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/operation", nil))
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	body = decode(t, resp)
	if _, ok := body["detail"]; ok || body["code"] != float64(200) {
		t.Errorf("operation response should carry no detail: %v", body)
	}
}

func TestExceptionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ExceptionMiddleware)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	body := decode(t, resp)
	if body["code"] != float64(httpx.InternalError.Code) || body["errMsg"] != "boom" {
		t.Errorf("unexpected panic response: %v", body)
	}
}

func newAuthApp(sessions *sessionStore, groups ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{}
	if sessions != nil {
		handlers = append(handlers, AuthorizationMiddleware(testAuth, sessions))
	} else {
		handlers = append(handlers, AuthorizationMiddleware(testAuth, nil))
	}
	if len(groups) > 0 {
		handlers = append(handlers, RequireGroup(groups...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		claims, _ := Claims(c)
		return c.SendString(claims.AccountId)
	})
	app.Get("/me", handlers...)
	return app
}

func bearer(t *testing.T, id jwt.Identity) string {
	t.Helper()
	aToken, _, err := jwt.GenToken(id, []byte(testAuth.SecretKey), testAuth.AccessExpire, testAuth.RefreshExpire)
	if err != nil {
		t.Fatalf("GenToken error: %v", err)
	}
	return aToken
}

func TestAuthorizationMiddleware(t *testing.T) {
	token := bearer(t, jwt.Identity{AccountId: "acc-1", Group: "portal"})

	cases := []struct {
		name     string
		header   string
		sessions *sessionStore
		wantCode int
		wantBody string
	}{
		{name: "empty", header: "", wantCode: httpx.TokenBeEmpty.Code},
		{name: "bad format", header: "Token " + token, wantCode: httpx.TokenFormatIncorrect.Code},
		{name: "invalid", header: "Bearer not-a-jwt", wantCode: httpx.InvalidToken.Code},
		{name: "no session store", header: "Bearer " + token, wantBody: "acc-1"},
		{
			name:     "session missing",
			header:   "Bearer " + token,
			sessions: &sessionStore{values: map[string]string{}},
			wantCode: httpx.TokenExpired.Code,
		},
		{
			name:     "session replaced",
			header:   "Bearer " + token,
			sessions: &sessionStore{values: map[string]string{"membership:session:acc-1": "other"}},
			wantCode: httpx.TokenExpired.Code,
		},
		{
			name:     "session ok",
			header:   "Bearer " + token,
			sessions: &sessionStore{values: map[string]string{"membership:session:acc-1": token}},
			wantBody: "acc-1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAuthApp(tc.sessions)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("failed to test request: %v", err)
			}
			if tc.wantBody != "" {
				b, _ := io.ReadAll(resp.Body)
				if string(b) != tc.wantBody {
					t.Errorf("body = %s, want %s", b, tc.wantBody)
				}
				return
			}
			if body := decode(t, resp); body["code"] != float64(tc.wantCode) {
				t.Errorf("code = %v, want %d", body["code"], tc.wantCode)
			}
		})
	}
}

func TestRequireGroup(t *testing.T) {
	app := newAuthApp(nil, "staff")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+bearer(t, jwt.Identity{AccountId: "acc-2", Group: "portal"}))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	if body := decode(t, resp); body["code"] != float64(httpx.PermissionDenied.Code) {
		t.Errorf("portal account should be denied: %v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+bearer(t, jwt.Identity{AccountId: "acc-3", Group: "staff"}))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	if b, _ := io.ReadAll(resp.Body); string(b) != "acc-3" {
		t.Errorf("staff account should pass, got %s", b)
	}
}

func TestRealIPMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RealIPMiddleware())
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(ClientIP(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	if b, _ := io.ReadAll(resp.Body); string(b) != "203.0.113.7" {
		t.Errorf("ip = %s", b)
	}
}

func TestExcludedPaths(t *testing.T) {
	if !excluded("/health") || !excluded("/verify/abc") {
		t.Error("health and verify should be excluded")
	}
	if excluded("/membership/submit") {
		t.Error("submit should be logged")
	}
}
