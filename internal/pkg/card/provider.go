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

package card

import (
	"github.com/go-arcade/membership/pkg/log"
	"github.com/google/wire"
)

// ProviderSet provides card renderer
var ProviderSet = wire.NewSet(ProvideRenderer)

// DefaultLayoutName is the layout used when nothing else is configured
const DefaultLayoutName = "membership_card"

// ProvideRenderer registers DefaultLayout and then any layouts in LayoutDir,
// which may override it by name
func ProvideRenderer(conf Conf) (*Renderer, error) {
	r := NewRenderer(conf)
	if err := r.Register(DefaultLayoutName, DefaultLayout); err != nil {
		return nil, err
	}
	if conf.LayoutDir != "" {
		n, err := r.LoadDir(conf.LayoutDir)
		if err != nil {
			return nil, err
		}
		log.Infow("card layouts loaded", "dir", conf.LayoutDir, "count", n)
	}
	return r, nil
}
