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

package http

import (
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/membership/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// NewFiberApp 创建 fiber 实例, JSON 编解码使用 sonic
func NewFiberApp(cfg Http) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit * 1024 * 1024,
		ReadTimeout:           time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(cfg.IdleTimeout) * time.Second,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})
}

// ErrorHandler 将 fiber 抛出的错误转换为统一错误响应
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return WithRepErrMsg(c, NotFound.Code, NotFound.Msg, c.Path())
		case fiber.StatusRequestEntityTooLarge:
			return WithRepErrMsg(c, BadRequest.Code, fe.Message, c.Path())
		case fiber.StatusMethodNotAllowed:
			return WithRepErrMsg(c, BadRequest.Code, fe.Message, c.Path())
		}
	}
	log.Errorw("unhandled http error", "path", c.Path(), "error", err)
	return WithRepErrMsg(c, InternalError.Code, InternalError.Msg, c.Path())
}

// Server 包装 fiber.App 的启动与关闭
type Server struct {
	cfg Http
	app *fiber.App
}

func NewServer(cfg Http, app *fiber.App) *Server {
	return &Server{cfg: cfg, app: app}
}

// Start 阻塞直到监听失败或 Shutdown 被调用
func (s *Server) Start() error {
	log.Infof("http server listening on %s", s.cfg.Addr())
	if s.cfg.UseTLS() {
		return s.app.ListenTLS(s.cfg.Addr(), s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	}
	return s.app.Listen(s.cfg.Addr())
}

func (s *Server) Shutdown() error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	if err := s.app.ShutdownWithTimeout(timeout); err != nil {
		log.Errorf("http server shutdown error: %v", err)
		return err
	}
	log.Info("http server shut down gracefully")
	return nil
}

func (s *Server) App() *fiber.App {
	return s.app
}
