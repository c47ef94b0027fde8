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
	"context"

	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/middleware"
	"github.com/go-arcade/membership/pkg/statemachine"
	"github.com/gofiber/fiber/v2"
)

// portalRouter 门户, 只能访问与当前账号联系人关联的记录
func (rt *Router) portalRouter(r fiber.Router, auth fiber.Handler) {
	myGroup := r.Group("/my", auth)
	{
		myGroup.Get("/memberships", rt.listMyMemberships)
		myGroup.Get("/memberships/:id", rt.getMyMembership)
		myGroup.Get("/memberships/:id/card", rt.downloadMyCard)
		myGroup.Post("/memberships/:id/create_invoice", rt.createMyInvoice)
		myGroup.Post("/memberships/:id/check_payment", rt.checkMyPayment)
	}
}

func (rt *Router) listMyMemberships(c *fiber.Ctx) error {
	list, err := rt.Services.Records.ListOwned(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, list)
	return nil
}

func (rt *Router) getMyMembership(c *fiber.Ctx) error {
	m, err := rt.Services.Records.GetOwned(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, m)
	return nil
}

// downloadMyCard 直接返回 PDF, 不经过统一响应
func (rt *Router) downloadMyCard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	m, err := rt.Services.Records.GetOwned(ctx, actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if m.State != statemachine.MembershipActive {
		return http.WithRepErrMsg(c, http.OperationNotAllowed.Code, "The membership card is available once the membership is active.", c.Path())
	}

	pdf, filename, err := rt.Services.Cards.Download(ctx, m)
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepFile(c, "application/pdf", filename, true, pdf)
}

func (rt *Router) createMyInvoice(c *fiber.Ctx) error {
	return rt.ownedAction(c, rt.Services.Lifecycle.CreateInvoiceOwned)
}

func (rt *Router) checkMyPayment(c *fiber.Ctx) error {
	return rt.ownedAction(c, rt.Services.Lifecycle.CheckPaymentOwned)
}

type lifecycleAction func(ctx context.Context, actor service.Actor, membershipId string) (service.Outcome, error)

func (rt *Router) ownedAction(c *fiber.Ctx, action lifecycleAction) error {
	a := actor(c)
	out, err := action(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	m, err := rt.Services.Records.GetOwned(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"outcome": out, "membership": m})
	return nil
}
