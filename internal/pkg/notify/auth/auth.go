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

package auth

import (
	"context"
	"errors"
)

// AuthType represents the authentication type
type AuthType string

const (
	AuthTypeToken  AuthType = "token"  // Token authentication
	AuthTypeBasic  AuthType = "basic"  // Basic authentication
	AuthTypeBearer AuthType = "bearer" // Bearer token authentication
)

// IAuthProvider defines the interface for authentication providers
type IAuthProvider interface {
	// GetAuthType gets the authentication type
	GetAuthType() AuthType
	// Authenticate performs authentication and returns token or credentials
	Authenticate(ctx context.Context) (string, error)
	// GetAuthHeader gets the authentication header key and value
	GetAuthHeader() (string, string)
	// Validate validates the authentication configuration
	Validate() error
}

// TokenAuth sends the token as-is in a custom header
type TokenAuth struct {
	Header string
	Token  string
}

func NewTokenAuth(header, token string) *TokenAuth {
	if header == "" {
		header = "X-Notify-Token"
	}
	return &TokenAuth{Header: header, Token: token}
}

func (a *TokenAuth) GetAuthType() AuthType {
	return AuthTypeToken
}

func (a *TokenAuth) Authenticate(ctx context.Context) (string, error) {
	if a.Token == "" {
		return "", errors.New("token cannot be empty")
	}
	return a.Token, nil
}

func (a *TokenAuth) GetAuthHeader() (string, string) {
	return a.Header, a.Token
}

func (a *TokenAuth) Validate() error {
	if a.Token == "" {
		return errors.New("token is required")
	}
	return nil
}

// BearerAuth implements bearer token authentication
type BearerAuth struct {
	Token string
}

func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{Token: token}
}

func (a *BearerAuth) GetAuthType() AuthType {
	return AuthTypeBearer
}

func (a *BearerAuth) Authenticate(ctx context.Context) (string, error) {
	if a.Token == "" {
		return "", errors.New("bearer token cannot be empty")
	}
	return a.Token, nil
}

func (a *BearerAuth) GetAuthHeader() (string, string) {
	return "Authorization", "Bearer " + a.Token
}

func (a *BearerAuth) Validate() error {
	if a.Token == "" {
		return errors.New("bearer token is required")
	}
	return nil
}
