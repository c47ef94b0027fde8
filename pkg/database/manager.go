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
	"fmt"
	"time"

	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/trace/inject"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// Manager owns the primary gorm connection
type Manager interface {
	DB() *gorm.DB
	Close() error
}

type managerImpl struct {
	db *gorm.DB
}

func (m *managerImpl) DB() *gorm.DB {
	return m.db
}

func (m *managerImpl) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewManager opens the configured driver, applies pool settings and
// registers the tracing plugin.
func NewManager(cfg Database) (Manager, error) {
	gormCfg := newGormConfig(cfg)

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "", DriverMySQL:
		db, err = newMySQLConnection(cfg.MySQL, cfg, gormCfg)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(buildPostgresDSN(cfg.Postgres)), gormCfg)
	case DriverSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = "membership.db"
		}
		db, err = gorm.Open(sqlite.Open(path), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.Use(&inject.GormPlugin{WithQuery: cfg.OutPut}); err != nil {
		log.Warnw("failed to register OpenTelemetry gorm plugin", "error", err)
	}
	log.Infow("database connected", "driver", cfg.Driver)
	return &managerImpl{db: db}, nil
}

func newGormConfig(cfg Database) *gorm.Config {
	logConfig := gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	}
	var gormLogger gormlogger.Interface = gormlogger.Default.LogMode(gormlogger.Silent)
	if cfg.OutPut {
		logConfig.LogLevel = gormlogger.Info
		gormLogger = NewGormLoggerAdapter(logConfig, gormlogger.Info)
	}
	return &gorm.Config{
		Logger: gormLogger,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dataTablePrefix,
			SingularTable: true,
		},
	}
}

// newMySQLConnection creates a MySQL connection with optional dbresolver sources and replicas
func newMySQLConnection(mysqlCfg MySQLConfig, commonCfg Database, gormCfg *gorm.Config) (*gorm.DB, error) {
	dsn := buildMySQLDSN(mysqlCfg.User, mysqlCfg.Password, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.DBName)
	db, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}

	if len(mysqlCfg.Primary) == 0 && len(mysqlCfg.Replicas) == 0 {
		return db, nil
	}

	sources, err := buildDialectors(mysqlCfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("invalid primary config: %w", err)
	}
	replicas, err := buildDialectors(mysqlCfg.Replicas)
	if err != nil {
		return nil, fmt.Errorf("invalid replica config: %w", err)
	}
	resolver := dbresolver.Register(dbresolver.Config{
		Sources:           sources,
		Replicas:          replicas,
		Policy:            dbresolver.RandomPolicy{},
		TraceResolverMode: commonCfg.OutPut,
	}).
		SetConnMaxLifetime(GetConnMaxLifetime(commonCfg.MaxLifetime)).
		SetConnMaxIdleTime(GetConnMaxIdleTime(commonCfg.MaxIdleTime))
	if err := db.Use(resolver); err != nil {
		return nil, fmt.Errorf("failed to register dbresolver: %w", err)
	}
	log.Info("MySQL connected with DBResolver (read-write separation enabled)")
	return db, nil
}
