// Package database 提供 MySQL 与 Redis 连接的初始化。
package database

import (
	"fmt"
	"time"

	"freeark_web/internal/model"
	"freeark_web/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// MySQLOptions 是连接池参数，零值使用默认配置。
type MySQLOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// OpenMySQL 根据 DSN 连接 MySQL，SQL 日志通过 zapgorm2 输出到应用 logger。
func OpenMySQL(dsn string, opts MySQLOptions) (*gorm.DB, error) {
	gormLogger := zapgorm2.New(log.GetLogger())
	gormLogger.LogLevel = logger.Warn
	gormLogger.IgnoreRecordNotFoundError = true
	gormLogger.SetAsDefault()

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	// 获取底层 *sql.DB 以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 10
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 100
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	log.Info("MySQL initialized successfully")
	return db, nil
}

// Migrate 创建或更新 users、owners 表结构。
func Migrate(db *gorm.DB) error {
	log.Info("Running migrations...")
	if err := db.AutoMigrate(&model.User{}, &model.Owner{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Migrations completed successfully")
	return nil
}
