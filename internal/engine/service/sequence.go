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
	"context"
	"fmt"

	"github.com/go-arcade/membership/internal/engine/consts"
	"github.com/go-arcade/membership/internal/engine/repo"
)

type sequenceFormat struct {
	prefix  string
	padding int
}

// SequenceAllocator hands out gap-tolerant, never reused numbers per code.
type SequenceAllocator struct {
	repo    repo.ISequenceRepository
	formats map[string]sequenceFormat
}

func NewSequenceAllocator(seqRepo repo.ISequenceRepository, membership MembershipConf, billing BillingConf) *SequenceAllocator {
	return &SequenceAllocator{
		repo: seqRepo,
		formats: map[string]sequenceFormat{
			consts.SequenceMembership: {prefix: membership.SequencePrefix, padding: membership.SequencePadding},
			consts.SequenceInvoice:    {prefix: billing.JournalPrefix, padding: billing.Padding},
		},
	}
}

// Next 返回 code 的下一个编号
func (s *SequenceAllocator) Next(ctx context.Context, code string) (string, error) {
	f, ok := s.formats[code]
	if !ok {
		return "", configurationError("sequence.next", "no sequence configured for %q", code)
	}
	value, err := s.repo.Next(ctx, code, f.prefix, f.padding)
	if err != nil {
		return "", fmt.Errorf("allocate %s: %w", code, err)
	}
	return value, nil
}
