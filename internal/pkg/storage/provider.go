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

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/membership/pkg/log"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideStorage)

// ProvideStorage returns nil when no provider is configured, uploads are then
// accepted without files being stored
func ProvideStorage(conf Conf) (StorageProvider, error) {
	switch conf.Provider {
	case "":
		log.Info("object storage disabled, uploads will be ignored")
		return nil, nil
	case "minio":
		s, err := newMinio(conf)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.EnsureBucket(ctx); err != nil {
			log.Warnw("failed to ensure storage bucket", "bucket", conf.Bucket, "error", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported storage provider: %s", conf.Provider)
}
