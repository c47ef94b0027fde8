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
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-arcade/membership/pkg/id"
)

// StorageProvider stores applicant uploads (photo, ID image)
type StorageProvider interface {
	PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	GetObject(ctx context.Context, objectName string) ([]byte, error)
	Delete(ctx context.Context, objectName string) error
	// GetPresignedURL 生成预签名下载链接，expiry 参数指定链接有效期
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Conf 对象存储配置, Provider 为空时不启用上传
type Conf struct {
	Provider  string `mapstructure:"provider"` // minio
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	BasePath  string `mapstructure:"basePath"`
	UseTLS    bool   `mapstructure:"useTLS"`
}

// ObjectName builds kind/yyyy/mm/<shortid><ext> for an uploaded file
func ObjectName(kind, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(kind, now.Format("2006/01"), id.ShortId()+ext)
}

func getFullPath(basePath, objectName string) string {
	if basePath == "" {
		return objectName
	}
	return path.Join(basePath, objectName)
}
