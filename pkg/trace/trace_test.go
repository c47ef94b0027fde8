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

package trace

import (
	"context"
	"testing"
)

func TestConf_SetDefaults(t *testing.T) {
	c := Conf{Protocol: "http"}
	c.SetDefaults()
	if c.ServiceName != "membership" {
		t.Errorf("ServiceName = %q", c.ServiceName)
	}
	if c.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", c.Endpoint)
	}
}

func TestInit_Disabled(t *testing.T) {
	cleanup, err := Init(context.Background(), Conf{})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer cleanup()

	ctx, span := StartSpan(context.Background(), "test", "op")
	defer span.End()
	if !span.SpanContext().IsValid() {
		t.Error("expected a valid span context when tracing is disabled")
	}
	if ctx == nil {
		t.Error("expected a context")
	}
}

func TestInit_UnsupportedProtocol(t *testing.T) {
	if _, err := Init(context.Background(), Conf{Enabled: true, Protocol: "zipkin"}); err == nil {
		t.Error("expected error for unsupported protocol")
	}
}
