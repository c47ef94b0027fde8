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
	"mime/multipart"
	"strings"

	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/pkg/http"
	"github.com/go-arcade/membership/pkg/http/middleware"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// 公开申请表字段, 顺序即表单展示顺序
var formFields = []string{
	"name", "phone", "email", "nationality", "id_number", "birth_date",
	"secondary_id_number", "job_title", "address", "membership_type", "accept_terms",
}

func (rt *Router) membershipRouter(r fiber.Router) {
	membershipGroup := r.Group("/membership")
	{
		membershipGroup.Get("", rt.membershipForm)
		membershipGroup.Post("/submit", rt.submitMembership)
	}

	r.Get("/verify/:token", rt.verifyMembership)
}

type tierOption struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Fee    decimal.Decimal `json:"fee"`
	Period string          `json:"period"`
}

// membershipForm 返回申请表所需的等级、条款与默认值
func (rt *Router) membershipForm(c *fiber.Ctx) error {
	records := rt.Services.Records
	tiers := records.Tiers().List()
	options := make([]tierOption, 0, len(tiers))
	for _, t := range tiers {
		options = append(options, tierOption{Code: t.Code, Name: t.Name, Fee: t.Fee, Period: t.EffectivePeriod().String()})
	}

	c.Locals(middleware.DETAIL, fiber.Map{
		"tiers":       options,
		"defaultTier": records.DefaultTier(),
		"termsText":   records.TermsText(),
		"fields":      formFields,
	})
	return nil
}

func (rt *Router) submitMembership(c *fiber.Ctx) error {
	in, values, cleanup, err := parseCreateInput(c)
	defer cleanup()
	if err != nil {
		return http.WithRepErrDetail(c, http.BadRequest.Code, err.Error(), c.Path(), fiber.Map{"values": values})
	}

	m, err := rt.Services.Records.Create(c.UserContext(), service.Actor{}, in)
	if err != nil {
		// 表单回显
		return failDetail(c, err, fiber.Map{"values": values})
	}

	c.Locals(middleware.DETAIL, fiber.Map{
		"membershipId": m.MembershipId,
		"sequence":     m.Sequence,
		"state":        m.State,
		"amount":       m.Amount,
	})
	return nil
}

func (rt *Router) verifyMembership(c *fiber.Ctx) error {
	v, err := rt.Services.Records.Verify(c.UserContext(), c.Params("token"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, v)
	return nil
}

// parseCreateInput 支持 JSON 与表单两种提交方式, values 用于出错时回显
func parseCreateInput(c *fiber.Ctx) (service.CreateInput, map[string]string, func(), error) {
	var in service.CreateInput
	values := map[string]string{}
	cleanup := func() {}

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(&in); err != nil {
			return in, values, cleanup, err
		}
		values = echoValues(in)
		return in, values, cleanup, nil
	}

	for _, field := range formFields {
		values[field] = strings.TrimSpace(c.FormValue(field))
	}
	in = service.CreateInput{
		Name:              values["name"],
		Phone:             values["phone"],
		Email:             values["email"],
		Nationality:       values["nationality"],
		IdNumber:          values["id_number"],
		BirthDate:         values["birth_date"],
		SecondaryIdNumber: values["secondary_id_number"],
		JobTitle:          values["job_title"],
		Address:           values["address"],
		MembershipType:    values["membership_type"],
		AcceptTerms:       checked(values["accept_terms"]),
	}

	var files []multipart.File
	cleanup = func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	for field, dst := range map[string]**service.Upload{"photo": &in.Photo, "id_image": &in.IdImage} {
		upload, f, err := formUpload(c, field)
		if err != nil {
			return in, values, cleanup, err
		}
		if f != nil {
			files = append(files, f)
		}
		*dst = upload
	}
	return in, values, cleanup, nil
}

// formUpload 读取可选的上传文件, 未上传时返回 nil
func formUpload(c *fiber.Ctx, field string) (*service.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Size == 0 {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		log.WithContext(c.UserContext()).Warnw("failed to open upload", "field", field, "error", err)
		return nil, nil, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}, f, nil
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func echoValues(in service.CreateInput) map[string]string {
	accept := ""
	if in.AcceptTerms {
		accept = "on"
	}
	return map[string]string{
		"name":                in.Name,
		"phone":               in.Phone,
		"email":               in.Email,
		"nationality":         in.Nationality,
		"id_number":           in.IdNumber,
		"birth_date":          in.BirthDate,
		"secondary_id_number": in.SecondaryIdNumber,
		"job_title":           in.JobTitle,
		"address":             in.Address,
		"membership_type":     in.MembershipType,
		"accept_terms":        accept,
	}
}
