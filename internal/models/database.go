package models

import (
	"fmt"

	"github.com/huddlehq/huddle/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return MigrateAll(DB)
}

// MigrateAll runs schema migration on the given connection. Split out so
// tests can migrate their own in-memory databases.
func MigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Workspace{},
		&WorkspaceMember{},
		&Invite{},
		&Channel{},
		&Message{},
		&Task{},
		&SchedulerLock{},
	); err != nil {
		return err
	}

	// Rows written before the status column existed carry none. Normalize
	// them here; the read-time fallback in IsActive stays as a safety net.
	return db.Model(&WorkspaceMember{}).
		Where("status = '' OR status IS NULL").
		Update("status", MemberStatusActive).Error
}

func GetDB() *gorm.DB {
	return DB
}
