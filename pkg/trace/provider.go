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

	"github.com/google/wire"
)

// ProviderSet 提供链路追踪相关的依赖
var ProviderSet = wire.NewSet(ProvideTracing)

// Tracing marks the global tracer provider as installed. Components that
// start spans depend on it so the injector orders Init before them.
type Tracing struct {
	ServiceName string
}

// ProvideTracing installs the global tracer provider, cleanup flushes it
func ProvideTracing(conf Conf) (*Tracing, func(), error) {
	shutdown, err := Init(context.Background(), conf)
	if err != nil {
		return nil, nil, err
	}
	conf.SetDefaults()
	return &Tracing{ServiceName: conf.ServiceName}, shutdown, nil
}
