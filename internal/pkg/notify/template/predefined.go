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

package template

// PredefinedTemplates are registered when no template directory overrides them
var PredefinedTemplates = []*Template{
	{
		Name:  "invitation",
		Title: "Set up your membership portal account",
		Content: `Hello {{.name}},

An account has been created for you on the fan club membership portal.
Login: {{.login}}

Choose your password here (valid until {{.expires_at}}):
{{.setup_url}}
`,
		Format:      "text",
		Description: "Portal account setup invitation",
	},
	{
		Name:  "membership_approved",
		Title: "Membership {{.sequence}} approved",
		Content: `Hello {{.name}},

Your {{title .tier}} membership application {{.sequence}} has been approved.
{{if .amount}}An invoice for {{.amount}} {{.currency}} will follow.{{end}}
`,
		Format:      "text",
		Description: "Sent when staff approves an application",
	},
	{
		Name:  "membership_card",
		Title: "Your membership card {{.sequence}}",
		Content: `Hello {{.name}},

Your membership is active from {{.start_date}} to {{.end_date}}.
Your card is attached as {{.filename}}.
`,
		Format:      "text",
		Description: "Carries the membership card PDF",
	},
}
