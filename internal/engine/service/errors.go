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

package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind 业务错误类型
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotAllowed    Kind = "not_allowed"
	KindConfiguration Kind = "configuration"
	KindNotFound      Kind = "not_found"
)

// 用于 errors.Is 判断的哨兵错误
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotAllowed    = &Error{Kind: KindNotAllowed}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

// Error is a typed business error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of Op and Msg.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func validationError(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notAllowed(op, format string, args ...any) error {
	return &Error{Kind: KindNotAllowed, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func configurationError(op, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: what + " not found"}
}

// wrapNotFound 将 gorm.ErrRecordNotFound 转换为 NotFound
func wrapNotFound(op, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Msg: what + " not found", Err: err}
	}
	return err
}

// KindOf returns the kind of err or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Outcome 描述一次操作是否真正生效
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
)

// Actor identifies who performs an operation. Staff actions carry the staff
// account; portal actions carry the member's contact id; the scheduler and
// CLI use SystemActor.
type Actor struct {
	AccountId string
	ContactId string
	Group     string
}

// SystemActor 定时任务与命令行使用
var SystemActor = Actor{AccountId: "system", Group: "system"}

func (a Actor) String() string {
	if a.AccountId == "" {
		return "anonymous"
	}
	return a.AccountId
}
