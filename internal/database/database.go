package database

import (
	"realones/config"
	"realones/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), Options())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Options is the gorm configuration shared by every dialect. TranslateError makes
// duplicate keys surface as gorm.ErrDuplicatedKey where the dialect supports it.
func Options() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,
	}
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Credit{},
		&models.PioneerStatus{},
		&models.Friend{},
		&models.Streak{},
		&models.PushToken{},
		&models.Notification{},
		&models.Conversation{},
		&models.ConversationMember{},
		&models.Message{},
		&models.Post{},
		&models.Reaction{},
	)
}
