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

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-arcade/membership/internal/engine/model"
	"github.com/go-arcade/membership/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (database.IDatabase, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return database.NewDatabase(db), mock
}

func TestMembershipRepo_ExtendEndDateSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	r := NewMembershipRepo(db)

	oldEnd := model.Day(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	newEnd := model.Day(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))

	mock.ExpectExec(`UPDATE "t_membership" SET "end_date"=\$1,"updated_at"=\$2 WHERE .*membership_id = \$3 AND end_date = \$4 AND state = \$5`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "m-1", sqlmock.AnyArg(), "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "t_membership" SET "end_date"=\$1,"updated_at"=\$2 WHERE .*membership_id = \$3 AND end_date = \$4 AND state = \$5`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "m-1", sqlmock.AnyArg(), "active").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.ExtendEndDate(context.Background(), "m-1", oldEnd, newEnd)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ExtendEndDate(context.Background(), "m-1", oldEnd, newEnd)
	require.NoError(t, err)
	assert.False(t, ok, "zero rows affected means another sweep won")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepo_TransitSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	r := NewMembershipRepo(db)

	mock.ExpectExec(`UPDATE "t_membership" SET "invoice_id"=\$1,"state"=\$2,"updated_at"=\$3 WHERE .*membership_id = \$4 AND state = \$5`).
		WithArgs("inv-1", "invoiced", sqlmock.AnyArg(), "m-1", "approved").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := r.Transit(context.Background(), "m-1", "approved", "invoiced", map[string]any{"invoice_id": "inv-1"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
