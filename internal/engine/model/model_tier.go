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

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Period 会员周期, 按自然月计算, 月末日期向前对齐 (1/31 + 1m = 2/28)
type Period struct {
	Years  int `json:"years,omitempty"`
	Months int `json:"months,omitempty"`
	Days   int `json:"days,omitempty"`
}

// FallbackPeriod 未定义周期的等级使用
var FallbackPeriod = Period{Years: 1}

// ParsePeriod 解析 "1m" "6m" "1y" "30d", 空字符串返回零值
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Period{}, nil
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	switch s[len(s)-1] {
	case 'y':
		return Period{Years: n}, nil
	case 'm':
		return Period{Months: n}, nil
	case 'd':
		return Period{Days: n}, nil
	}
	return Period{}, fmt.Errorf("invalid period unit in %q", s)
}

func (p Period) IsZero() bool {
	return p.Years == 0 && p.Months == 0 && p.Days == 0
}

func (p Period) String() string {
	switch {
	case p.IsZero():
		return ""
	case p.Months == 0 && p.Days == 0:
		return fmt.Sprintf("%dy", p.Years)
	case p.Years == 0 && p.Days == 0:
		return fmt.Sprintf("%dm", p.Months)
	case p.Years == 0 && p.Months == 0:
		return fmt.Sprintf("%dd", p.Days)
	}
	return fmt.Sprintf("%dy%dm%dd", p.Years, p.Months, p.Days)
}

// AddTo 将周期加到 t 上
func (p Period) AddTo(t time.Time) time.Time {
	y, m, d := t.Date()
	months := int(m) - 1 + p.Months + 12*p.Years
	ty, tm := y+months/12, time.Month(months%12+1)
	if months < 0 {
		ty, tm = y+(months-11)/12, time.Month((months%12+12)%12+1)
	}
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	out := time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	return out.AddDate(0, 0, p.Days)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Tier 会员等级
type Tier struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Fee     decimal.Decimal `json:"fee"`
	Period  Period          `json:"period"`
	Product string          `json:"product,omitempty"`
}

// Free 零费用等级 (荣誉会员) 审批后直接激活
func (t Tier) Free() bool {
	return t.Fee.IsZero()
}

// EffectivePeriod 未配置周期时使用 FallbackPeriod
func (t Tier) EffectivePeriod() Period {
	if t.Period.IsZero() {
		return FallbackPeriod
	}
	return t.Period
}

// Extend 返回 d 延长一个周期后的日期
func (t Tier) Extend(d datatypes.Date) datatypes.Date {
	return Day(t.EffectivePeriod().AddTo(time.Time(d)))
}

// TierConfig 配置文件中的等级定义
type TierConfig struct {
	Code    string `mapstructure:"code"`
	Name    string `mapstructure:"name"`
	Fee     string `mapstructure:"fee"`
	Period  string `mapstructure:"period"`
	Product string `mapstructure:"product"`
}

func DefaultTierConfigs() []TierConfig {
	return []TierConfig{
		{Code: "monthly", Name: "عضوية شهرية", Fee: "20", Period: "1m", Product: "MEMBERSHIP-MONTHLY"},
		{Code: "semiannual", Name: "عضوية 6 أشهر", Fee: "120", Period: "6m", Product: "MEMBERSHIP-SEMIANNUAL"},
		{Code: "annual", Name: "عضوية سنوية", Fee: "240", Period: "1y", Product: "MEMBERSHIP-ANNUAL"},
		{Code: "honorary", Name: "عضوية شرفية", Fee: "0"},
	}
}

// TierTable 等级表, 保持配置顺序
type TierTable struct {
	tiers map[string]Tier
	order []string
}

// NewTierTable 由配置构建等级表, 配置为空时使用默认等级
func NewTierTable(cfgs []TierConfig) (*TierTable, error) {
	if len(cfgs) == 0 {
		cfgs = DefaultTierConfigs()
	}
	table := &TierTable{tiers: make(map[string]Tier, len(cfgs))}
	for _, c := range cfgs {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			return nil, fmt.Errorf("tier code is required")
		}
		if _, dup := table.tiers[code]; dup {
			return nil, fmt.Errorf("duplicate tier %q", code)
		}
		fee := decimal.Zero
		if c.Fee != "" {
			var err error
			if fee, err = decimal.NewFromString(c.Fee); err != nil {
				return nil, fmt.Errorf("tier %q: invalid fee: %w", code, err)
			}
		}
		if fee.IsNegative() {
			return nil, fmt.Errorf("tier %q: fee must not be negative", code)
		}
		period, err := ParsePeriod(c.Period)
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", code, err)
		}
		table.tiers[code] = Tier{Code: code, Name: c.Name, Fee: fee, Period: period, Product: c.Product}
		table.order = append(table.order, code)
	}
	return table, nil
}

func (t *TierTable) Get(code string) (Tier, bool) {
	tier, ok := t.tiers[code]
	return tier, ok
}

func (t *TierTable) List() []Tier {
	out := make([]Tier, 0, len(t.order))
	for _, code := range t.order {
		out = append(out, t.tiers[code])
	}
	return out
}
