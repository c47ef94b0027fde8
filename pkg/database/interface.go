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

package database

import (
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// IDatabase gives repositories access to the gorm handle
type IDatabase interface {
	Database() *gorm.DB
}

type databaseAdapter struct {
	db *gorm.DB
}

// NewDatabase wraps a gorm handle as IDatabase
func NewDatabase(db *gorm.DB) IDatabase {
	return &databaseAdapter{db: db}
}

func (d *databaseAdapter) Database() *gorm.DB {
	return d.db
}

// ReadDB routes the query to replicas when dbresolver is registered
func ReadDB(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Read)
}

// WriteDB forces the query onto the sources
func WriteDB(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Write)
}
