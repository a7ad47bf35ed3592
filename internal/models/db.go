package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	applogger "github.com/shopcart-next/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局数据库连接
var DB *gorm.DB

// DBPoolConfig 连接池配置，0 表示使用驱动默认值
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// OpenDialector 按驱动名选择 gorm 方言：sqlite（默认）或 postgres
func OpenDialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", driver)
}

// InitDB 打开全局连接并应用连接池配置
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	dialector, err := OpenDialector(driver, dsn)
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pool.apply(sqlDB)
	DB = db
	return nil
}

// newGormLogger SQL 日志写入 zap，仅输出慢查询与错误
func newGormLogger() gormlogger.Interface {
	return gormlogger.New(applogger.StdLogger(), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func (p DBPoolConfig) apply(sqlDB *sql.DB) {
	if p.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(p.ConnMaxLifetimeSeconds) * time.Second)
	}
	if p.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(p.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// AutoMigrate 迁移全局连接
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate 迁移目录与购物车表
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return db.AutoMigrate(&CatalogItem{}, &Cart{}, &CartLineItem{})
}
