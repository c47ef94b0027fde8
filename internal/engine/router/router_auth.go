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

package router

import (
	"strings"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/setup", rt.setupPassword)
		authGroup.Post("/login", rt.login)

		authGroup.Post("/logout", auth, rt.logout)
		authGroup.Get("/refresh", auth, rt.refresh)
	}
}

// setupPassword 通过邀请令牌设置门户密码
func (rt *Router) setupPassword(c *fiber.Ctx) error {
	var req model.SetupPassword
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, err.Error(), c.Path())
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	if err := rt.Services.Accounts.AcceptInvitation(c.UserContext(), req.Token, req.Password); err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.Login
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, err.Error(), c.Path())
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		return http.WithRepErrMsg(c, http.LoginAndPasswordAreRequired.Code, http.LoginAndPasswordAreRequired.Msg, c.Path())
	}

	resp, err := rt.Services.Accounts.Login(c.UserContext(), strings.ToLower(strings.TrimSpace(req.Login)), req.Password)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.DETAIL, resp)
	return nil
}

func (rt *Router) logout(c *fiber.Ctx) error {
	if err := rt.Services.Accounts.Logout(c.UserContext(), actor(c).AccountId); err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	refreshToken := c.Query("refreshToken")
	if refreshToken == "" {
		return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
	}

	token, err := rt.Services.Accounts.Refresh(c.UserContext(), actor(c).AccountId, refreshToken)
	if err != nil {
		switch err.Error() {
		case http.TokenExpired.Msg:
			return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
		case http.InvalidToken.Msg:
			return http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
		}
		return fail(c, err)
	}

	c.Locals(middleware.DETAIL, token)
	return nil
}
