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
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodAddTo(t *testing.T) {
	cases := []struct {
		period string
		from   time.Time
		want   time.Time
	}{
		{"1m", date(2026, 1, 15), date(2026, 2, 15)},
		{"1m", date(2026, 1, 31), date(2026, 2, 28)},
		{"1m", date(2024, 1, 31), date(2024, 2, 29)},
		{"6m", date(2026, 8, 31), date(2027, 2, 28)},
		{"1y", date(2024, 2, 29), date(2025, 2, 28)},
		{"12m", date(2026, 12, 1), date(2027, 12, 1)},
		{"30d", date(2026, 1, 15), date(2026, 2, 14)},
	}
	for _, tc := range cases {
		p, err := ParsePeriod(tc.period)
		if err != nil {
			t.Fatalf("ParsePeriod(%q) error: %v", tc.period, err)
		}
		if got := p.AddTo(tc.from); !got.Equal(tc.want) {
			t.Errorf("%s + %s = %s, want %s", tc.from.Format(time.DateOnly), tc.period,
				got.Format(time.DateOnly), tc.want.Format(time.DateOnly))
		}
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, s := range []string{"m", "0m", "3w", "-1y"} {
		if _, err := ParsePeriod(s); err == nil {
			t.Errorf("ParsePeriod(%q) should fail", s)
		}
	}
	if p, err := ParsePeriod(""); err != nil || !p.IsZero() {
		t.Errorf("empty period should be zero, got %v %v", p, err)
	}
}

func TestNewTierTable_Defaults(t *testing.T) {
	table, err := NewTierTable(nil)
	if err != nil {
		t.Fatalf("NewTierTable error: %v", err)
	}
	monthly, ok := table.Get("monthly")
	if !ok || monthly.Fee.String() != "20" || monthly.Period.String() != "1m" {
		t.Errorf("unexpected monthly tier: %+v", monthly)
	}
	honorary, ok := table.Get("honorary")
	if !ok || !honorary.Free() {
		t.Errorf("honorary should be free: %+v", honorary)
	}
	if honorary.EffectivePeriod() != FallbackPeriod {
		t.Errorf("honorary should use fallback period, got %v", honorary.EffectivePeriod())
	}
	if len(table.List()) != 4 || table.List()[0].Code != "monthly" {
		t.Errorf("unexpected order: %+v", table.List())
	}
}

func TestNewTierTable_Invalid(t *testing.T) {
	bad := [][]TierConfig{
		{{Code: ""}},
		{{Code: "a", Fee: "x"}},
		{{Code: "a", Fee: "-1"}},
		{{Code: "a", Period: "1q"}},
		{{Code: "a"}, {Code: "a"}},
	}
	for i, cfgs := range bad {
		if _, err := NewTierTable(cfgs); err == nil {
			t.Errorf("case %d should fail", i)
		}
	}
}

func TestTierExtend(t *testing.T) {
	table, _ := NewTierTable(nil)
	annual, _ := table.Get("annual")
	got := annual.Extend(Day(date(2026, 3, 1)))
	if FormatDay(&got) != "2027-03-01" {
		t.Errorf("extend = %s", FormatDay(&got))
	}
}
