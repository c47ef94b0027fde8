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
	"time"

	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// adminRouter 后台, 仅 staff 组账号可访问
func (rt *Router) adminRouter(r fiber.Router, auth, staff fiber.Handler) {
	adminGroup := r.Group("/admin", auth, staff)

	memberships := adminGroup.Group("/memberships")
	{
		memberships.Get("", rt.listMemberships)
		memberships.Post("", rt.createMembership)
		memberships.Get("/:id", rt.getMembership)
		memberships.Post("/:id/approve", rt.action(rt.Services.Lifecycle.Approve))
		memberships.Post("/:id/reject", rt.action(rt.Services.Lifecycle.Reject))
		memberships.Post("/:id/create_invoice", rt.action(rt.Services.Lifecycle.CreateInvoice))
		memberships.Post("/:id/check_payment", rt.action(rt.Services.Lifecycle.CheckPayment))
		memberships.Post("/:id/activate", rt.action(rt.Services.Lifecycle.Activate))
		memberships.Post("/:id/expire", rt.action(rt.Services.Lifecycle.Expire))
		memberships.Post("/:id/mark_paid", rt.markPaid)
		memberships.Post("/:id/tier", rt.changeTier)
		memberships.Get("/:id/effects", rt.listEffects)
	}

	invoices := adminGroup.Group("/invoices")
	{
		invoices.Get("/:id", rt.getInvoice)
		invoices.Post("/:id/payments", rt.registerPayment)
	}

	adminGroup.Post("/renewals/run", rt.runRenewals)
}

func (rt *Router) listMemberships(c *fiber.Ctx) error {
	q := model.MembershipQuery{
		State:    c.Query("state"),
		Keyword:  c.Query("keyword"),
		PageNum:  c.QueryInt("pageNum", 1),
		PageSize: c.QueryInt("pageSize", 20),
	}
	list, total, err := rt.Services.Records.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.DETAIL, fiber.Map{
		"list":     list,
		"total":    total,
		"pageNum":  q.PageNum,
		"pageSize": q.PageSize,
	})
	return nil
}

// createMembership 工作人员代为录入, 与公开表单走同一校验
func (rt *Router) createMembership(c *fiber.Ctx) error {
	in, values, cleanup, err := parseCreateInput(c)
	defer cleanup()
	if err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, err.Error(), c.Path())
	}

	m, err := rt.Services.Records.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return failDetail(c, err, fiber.Map{"values": values})
	}
	c.Locals(middleware.DETAIL, m)
	return nil
}

func (rt *Router) getMembership(c *fiber.Ctx) error {
	m, err := rt.Services.Records.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, m)
	return nil
}

// action 包装生命周期操作, 返回结果与最新记录
func (rt *Router) action(fn lifecycleAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		out, err := fn(c.UserContext(), actor(c), id)
		if err != nil {
			return fail(c, err)
		}
		return rt.outcome(c, id, out)
	}
}

func (rt *Router) outcome(c *fiber.Ctx, id string, out service.Outcome) error {
	m, err := rt.Services.Records.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"outcome": out, "membership": m})
	return nil
}

type markPaidReq struct {
	Reference string `json:"reference"`
}

func (rt *Router) markPaid(c *fiber.Ctx) error {
	var req markPaidReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, err.Error(), c.Path())
		}
	}
	id := c.Params("id")
	out, err := rt.Services.Lifecycle.MarkPaid(c.UserContext(), actor(c), id, req.Reference)
	if err != nil {
		return fail(c, err)
	}
	return rt.outcome(c, id, out)
}

type changeTierReq struct {
	MembershipType string `json:"membership_type"`
}

func (rt *Router) changeTier(c *fiber.Ctx) error {
	var req changeTierReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, err.Error(), c.Path())
	}
	m, err := rt.Services.Records.ChangeTier(c.UserContext(), actor(c), c.Params("id"), strings.TrimSpace(req.MembershipType))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, m)
	return nil
}

func (rt *Router) listEffects(c *fiber.Ctx) error {
	effects, err := rt.Services.Lifecycle.Effects(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, effects)
	return nil
}

func (rt *Router) getInvoice(c *fiber.Ctx) error {
	invoice, err := rt.Services.Billing.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, invoice)
	return nil
}

type paymentReq struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

// registerPayment 登记线下收款, 金额不能超过未结金额
func (rt *Router) registerPayment(c *fiber.Ctx) error {
	var req paymentReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, err.Error(), c.Path())
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "amount must be a decimal number", c.Path())
	}

	invoice, err := rt.Services.Billing.RegisterPayment(c.UserContext(), c.Params("id"), amount, req.Reference)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, invoice)
	return nil
}

// runRenewals 手动触发续费, date 形如 2006-01-02, 缺省为今天
func (rt *Router) runRenewals(c *fiber.Ctx) error {
	today := time.Now()
	if date := c.Query("date"); date != "" {
		d, err := time.ParseInLocation(time.DateOnly, date, time.Local)
		if err != nil {
			return http.WithRepErrMsg(c, http.BadRequest.Code, "date must be formatted as YYYY-MM-DD", c.Path())
		}
		today = d
	}

	report, err := rt.Services.Renewal.RunDueRenewals(c.UserContext(), today)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, report)
	return nil
}
