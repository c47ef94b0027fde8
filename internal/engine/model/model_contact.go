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

// Contact 联系人目录, 会员记录只弱引用
type Contact struct {
	BaseModel
	ContactId string `gorm:"column:contact_id;size:64;uniqueIndex" json:"contactId"`
	Name      string `gorm:"column:name" json:"name"`
	Phone     string `gorm:"column:phone" json:"phone"`
	Email     string `gorm:"column:email;size:191;index" json:"email"`
}

func (Contact) TableName() string {
	return "t_contact"
}
