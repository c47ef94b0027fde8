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
	"encoding/base64"
	"errors"
)

// BasicAuth carries SMTP or HTTP basic credentials
type BasicAuth struct {
	Username string
	Password string
}

func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{Username: username, Password: password}
}

func (a *BasicAuth) GetAuthType() AuthType {
	return AuthTypeBasic
}

func (a *BasicAuth) Authenticate(ctx context.Context) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a.encode(), nil
}

func (a *BasicAuth) GetAuthHeader() (string, string) {
	return "Authorization", "Basic " + a.encode()
}

func (a *BasicAuth) Validate() error {
	if a.Username == "" || a.Password == "" {
		return errors.New("username and password are required")
	}
	return nil
}

func (a *BasicAuth) encode() string {
	return base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
}
