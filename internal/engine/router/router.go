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
	"errors"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/pkg/cache"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/middleware"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/metrics"
	"github.com/go-arcade/membership/pkg/trace/inject"
	"github.com/go-arcade/membership/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Router struct {
	Http     http.Http
	Services *service.Services
	Sessions cache.ICache
	Metrics  *metrics.Server
}

func NewRouter(httpConf http.Http, services *service.Services, sessions cache.ICache, metricsServer *metrics.Server) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Sessions: sessions,
		Metrics:  metricsServer,
	}
}

// Router 构建 fiber 实例并注册全部路由
func (rt *Router) Router() *fiber.App {
	app := http.NewFiberApp(rt.Http)

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.RequestMiddleware(),
		middleware.RealIPMiddleware(),
		middleware.CorsMiddleware(rt.Http.AllowOrigins),
		inject.FiberMiddleware(),
		middleware.AccessLogMiddleware(&rt.Http),
		middleware.UnifiedResponseMiddleware(),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get(rt.Metrics.Path(), adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	auth := middleware.AuthorizationMiddleware(rt.Http.Auth, rt.Sessions)

	rt.membershipRouter(app)
	rt.authRouter(app, auth)
	rt.portalRouter(app, auth)
	rt.adminRouter(app, auth, middleware.RequireGroup(consts.GroupStaff))

	// 找不到路径时的处理, 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Path())
	})

	return app
}

// actor 由认证中间件写入的令牌构造调用者
func actor(c *fiber.Ctx) service.Actor {
	claims, ok := middleware.Claims(c)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{AccountId: claims.AccountId, ContactId: claims.ContactId, Group: claims.Group}
}

// fail 将业务错误映射为统一响应码
func fail(c *fiber.Ctx, err error) error {
	return failDetail(c, err, nil)
}

func failDetail(c *fiber.Ctx, err error, detail any) error {
	code, msg := errorCode(err)
	if code == http.InternalError.Code {
		log.WithContext(c.UserContext()).Errorw("request failed", "path", c.Path(), "error", err)
	}
	if detail != nil {
		return http.WithRepErrDetail(c, code, msg, c.Path(), detail)
	}
	return http.WithRepErrMsg(c, code, msg, c.Path())
}

func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAccountNotExist):
		return http.AccountNotExist.Code, http.AccountNotExist.Msg
	case errors.Is(err, service.ErrIncorrectPassword):
		return http.AccountIncorrectPassword.Code, http.AccountIncorrectPassword.Msg
	case errors.Is(err, service.ErrAccountDisabled):
		return http.PermissionDenied.Code, err.Error()
	case errors.Is(err, service.ErrInvitationInvalid):
		return http.InvitationInvalid.Code, http.InvitationInvalid.Msg
	}

	var e *service.Error
	if !errors.As(err, &e) {
		return http.InternalError.Code, http.InternalError.Msg
	}
	msg := e.Msg
	switch e.Kind {
	case service.KindValidation:
		return http.BadRequest.Code, msg
	case service.KindNotAllowed:
		return http.OperationNotAllowed.Code, msg
	case service.KindConfiguration:
		return http.ConfigurationError.Code, msg
	case service.KindNotFound:
		return http.NotFound.Code, msg
	default:
		return http.InternalError.Code, http.InternalError.Msg
	}
}
