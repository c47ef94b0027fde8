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

package metrics

import (
	"github.com/google/wire"
)

// ProviderSet 提供指标相关的依赖
var ProviderSet = wire.NewSet(ProvideMetricsServer, ProvideRecorder)

// ProvideMetricsServer 创建指标服务并注册定时任务指标
func ProvideMetricsServer(conf MetricsConfig) *Server {
	server := NewServer(conf)
	SetupCronMetrics(server.GetRegistry())
	return server
}

// ProvideRecorder 提供会员业务指标
func ProvideRecorder(server *Server) *Recorder {
	return NewRecorder(server.GetRegistry())
}
