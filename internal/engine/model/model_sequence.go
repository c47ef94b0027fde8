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

package model

// Sequence 编号分配器, 每个 code 一行
type Sequence struct {
	Code       string `gorm:"column:code;primaryKey;size:64" json:"code"`
	Prefix     string `gorm:"column:prefix;size:32" json:"prefix"`
	Padding    int    `gorm:"column:padding" json:"padding"`
	NextNumber int64  `gorm:"column:next_number" json:"nextNumber"`
}

func (Sequence) TableName() string {
	return "t_sequence"
}
