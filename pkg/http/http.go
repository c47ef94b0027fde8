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

package http

import (
	"fmt"
	"time"
)

/**
 * @file: http.go
 * @description: http server config
 */

type Http struct {
	Host            string
	Port            int
	AppName         string
	BodyLimit       int // MB
	ExposeMetrics   bool
	AccessLog       bool
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	AllowOrigins    string
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

// Auth 门户登录令牌配置, 过期时间为 time.Duration (e.g. "2h")
type Auth struct {
	SecretKey        string
	AccessExpire     time.Duration
	RefreshExpire    time.Duration
	SessionKeyPrefix string
}

// SetDefaults 填充未配置的字段
func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.AppName == "" {
		h.AppName = "membership"
	}
	if h.BodyLimit <= 0 {
		h.BodyLimit = 10
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 60
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10
	}
	if h.AllowOrigins == "" {
		h.AllowOrigins = "*"
	}
	if h.Auth.AccessExpire <= 0 {
		h.Auth.AccessExpire = 2 * time.Hour
	}
	if h.Auth.RefreshExpire <= 0 {
		h.Auth.RefreshExpire = 7 * 24 * time.Hour
	}
	if h.Auth.SessionKeyPrefix == "" {
		h.Auth.SessionKeyPrefix = "membership:session:"
	}
}

func (h *Http) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func (h *Http) UseTLS() bool {
	return h.TLS.CertFile != "" && h.TLS.KeyFile != ""
}
