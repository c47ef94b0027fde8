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
	"fmt"
	"time"

	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/golang-jwt/jwt/v5"
)

// Identity 令牌携带的身份信息
type Identity struct {
	AccountId string
	ContactId string
	Group     string
}

type AuthClaims struct {
	AccountId string `json:"accountId"`
	ContactId string `json:"contactId"`
	Group     string `json:"group"`
	jwt.RegisteredClaims
}

func (a *AuthClaims) Identity() Identity {
	return Identity{AccountId: a.AccountId, ContactId: a.ContactId, Group: a.Group}
}

var (
	issUser = "membership"
)

// GenToken 生成 access_token 和 refresh_token
func GenToken(id Identity, secretKey []byte, accessExpired, refreshExpired time.Duration) (aToken, rToken string, err error) {
	now := time.Now()

	// aToken
	aClaims := &AuthClaims{
		AccountId: id.AccountId,
		ContactId: id.ContactId,
		Group:     id.Group,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issUser, // 签发人
			Subject:   id.AccountId,
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpired)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	aToken, aErr := jwt.NewWithClaims(jwt.SigningMethodHS256, aClaims).SignedString(secretKey)
	if aErr != nil {
		log.Errorw("jwt.NewWithClaims err", "error", aErr)
		return "", "", aErr
	}

	// rToken
	rClaims := jwt.RegisteredClaims{
		Issuer:    issUser,
		Subject:   id.AccountId,
		ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpired)),
	}
	rToken, rErr := jwt.NewWithClaims(jwt.SigningMethodHS256, rClaims).SignedString(secretKey)
	if rErr != nil {
		log.Debugw("jwt.NewWithClaims err", "error", rErr)
		return "", "", rErr
	}

	return aToken, rToken, nil
}

func keyFunc(secretKey string) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}
}

// ParseToken 校验 access_token
func ParseToken(aToken, secretKey string) (claims *AuthClaims, err error) {
	claims = new(AuthClaims)
	token, err := jwt.ParseWithClaims(aToken, claims, keyFunc(secretKey))
	if err != nil {
		// 细化错误处理
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// RefreshToken 使用 refresh_token 换发新的令牌对, refresh_token 的 subject 必须与账号一致
func RefreshToken(auth http.Auth, id Identity, rToken string) (map[string]string, error) {
	newToken := make(map[string]string)

	var refreshClaims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(rToken, &refreshClaims, keyFunc(auth.SecretKey))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return newToken, errors.New(http.TokenExpired.Msg)
		}
		return newToken, errors.New(http.InvalidToken.Msg)
	}
	if !token.Valid || refreshClaims.Subject != id.AccountId {
		return newToken, errors.New(http.InvalidToken.Msg)
	}

	newAToken, newRToken, err := GenToken(id, []byte(auth.SecretKey), auth.AccessExpire, auth.RefreshExpire)
	if err != nil {
		return newToken, err
	}

	newToken["accessToken"] = newAToken
	newToken["refreshToken"] = newRToken

	return newToken, nil
}
