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

package pprof

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetDefaults(t *testing.T) {
	c := PprofConfig{}
	c.SetDefaults()
	if c.Host != "127.0.0.1" || c.Port != 8083 || c.Path != "/debug/pprof" {
		t.Errorf("unexpected defaults: %+v", c)
	}
}

func TestMuxServesIndex(t *testing.T) {
	s := NewServer(PprofConfig{})
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestDisabledStartIsNoop(t *testing.T) {
	s := NewServer(PprofConfig{})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(t.Context()); err != nil {
		t.Fatal(err)
	}
}
