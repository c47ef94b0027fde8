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

package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/go-arcade/membership/pkg/http"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenAndParseToken(t *testing.T) {
	id := Identity{AccountId: "acc-1", ContactId: "ct-1", Group: "portal"}
	secretKey := "1111111111111111"

	aToken, rToken, err := GenToken(id, []byte(secretKey), time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenToken error: %v", err)
	}
	if aToken == "" || rToken == "" {
		t.Fatal("tokens should not be empty")
	}

	claims, err := ParseToken(aToken, secretKey)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Identity() != id {
		t.Errorf("identity mismatch: %+v", claims.Identity())
	}
	if claims.Subject != "acc-1" {
		t.Errorf("subject = %s", claims.Subject)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	aToken, _, err := GenToken(Identity{AccountId: "1"}, []byte("secret-a"), time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("GenToken error: %v", err)
	}
	if _, err := ParseToken(aToken, "secret-b"); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	aToken, _, err := GenToken(Identity{AccountId: "1"}, []byte("secret"), -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("GenToken error: %v", err)
	}
	_, err = ParseToken(aToken, "secret")
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	auth := http.Auth{
		SecretKey:     "bf284d03-ba65-42d4-a9fe-0d2fbfe61060",
		AccessExpire:  3600 * time.Second,
		RefreshExpire: 7200 * time.Second,
	}
	id := Identity{AccountId: "acc-9", ContactId: "ct-9", Group: "portal"}
	_, rToken, err := GenToken(id, []byte(auth.SecretKey), auth.AccessExpire, auth.RefreshExpire)
	if err != nil {
		t.Fatalf("GenToken error: %v", err)
	}

	newToken, err := RefreshToken(auth, id, rToken)
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if newToken["accessToken"] == "" || newToken["refreshToken"] == "" {
		t.Errorf("refresh should return both tokens: %v", newToken)
	}

	// subject 不一致
	if _, err := RefreshToken(auth, Identity{AccountId: "other"}, rToken); err == nil {
		t.Error("expected error for mismatched subject")
	}
}
