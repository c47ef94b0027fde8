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

package bootstrap

import (
	"testing"

	"github.com/go-arcade/membership/internal/engine/config"
	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/go-arcade/membership/pkg/cron"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_SchedulesRenewal(t *testing.T) {
	scheduler := cron.New()
	appConf := &config.AppConfig{}
	appConf.Renewal.Enable = true

	app, cleanup, err := NewApp(nil, &service.Services{}, nil, nil, scheduler, nil, nil, nil, &log.Logger{}, appConf)
	require.NoError(t, err)
	defer cleanup()

	entries := app.Cron.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, RenewalJobName, entries[0].Name)
	assert.Equal(t, "0 0 2 * * *", entries[0].Spec)
}

func TestNewApp_RenewalDisabled(t *testing.T) {
	scheduler := cron.New()
	app, cleanup, err := NewApp(nil, &service.Services{}, nil, nil, scheduler, nil, nil, nil, &log.Logger{}, &config.AppConfig{})
	require.NoError(t, err)
	defer cleanup()
	assert.Empty(t, app.Cron.Entries())
}

func TestNewApp_InvalidSpec(t *testing.T) {
	appConf := &config.AppConfig{}
	appConf.Renewal.Enable = true
	appConf.Renewal.Spec = "not a spec"

	_, _, err := NewApp(nil, &service.Services{}, nil, nil, cron.New(), nil, nil, nil, &log.Logger{}, appConf)
	assert.Error(t, err)
}
