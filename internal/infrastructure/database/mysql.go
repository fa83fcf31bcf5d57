package database

import (
	"fmt"
	"time"

	"teahouse/internal/config"
	"teahouse/internal/logger"
	"teahouse/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 连接
func InitMySQL(cfg *config.MySQLConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 DB 失败: %w", err)
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("自动迁移表结构失败: %w", err)
	}

	DB = db
	logger.Info("MySQL 连接成功", logger.String("host", cfg.Host), logger.String("database", cfg.Database))
	return db, nil
}

// AutoMigrate 迁移所有表，测试中对 sqlite 也用这个
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.RoomRecord{},
		&model.RateSetting{},
		&model.PrivateRoomRate{},
		&model.Product{},
		&model.TransactionRecord{},
		&model.OutboxMessage{},
	)
}
