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
	"errors"
	"slices"
	"strings"

	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/jwt"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// AuthorizationMiddleware 认证中间件
// auth: 令牌密钥与会话前缀
// sessions: 会话存储, 为 nil 时只校验 JWT
func AuthorizationMiddleware(auth http.Auth, sessions cache.ICache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get("Authorization")
		if aToken == "" {
			return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		// 按空格分割
		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return http.WithRepErrMsg(c, http.TokenFormatIncorrect.Code, http.TokenFormatIncorrect.Msg, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], auth.SecretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
			log.Debugf("parse token failed: %v", err)
			return http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
		}

		// 检查 Redis 中的会话, 登出后令牌即失效
		if sessions != nil {
			stored, err := sessions.Get(c.UserContext(), auth.SessionKeyPrefix+claims.AccountId).Result()
			if errors.Is(err, redis.Nil) || (err == nil && stored != parts[1]) {
				return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
			if err != nil {
				log.Errorf("redis check session failed: %v", err)
				return http.WithRepErrMsg(c, http.InternalError.Code, http.InternalError.Msg, c.Path())
			}
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RequireGroup 要求调用者属于给定的权限组之一, 必须放在 AuthorizationMiddleware 之后
func RequireGroup(groups ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok || !slices.Contains(groups, claims.Group) {
			return http.WithRepErrMsg(c, http.PermissionDenied.Code, http.PermissionDenied.Msg, c.Path())
		}
		return c.Next()
	}
}

// Claims 返回认证中间件写入的令牌信息
func Claims(c *fiber.Ctx) (*jwt.AuthClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*jwt.AuthClaims)
	return claims, ok && claims != nil
}
