package main

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// Rows written before the status column existed carry an empty string.
// The server treats empty as ACTIVE at read time; this script makes the
// data explicit so that shim can eventually be retired.
type WorkspaceMember struct {
	ID     uint   `gorm:"primaryKey"`
	Status string `gorm:"size:20"`
}

func (WorkspaceMember) TableName() string { return "workspace_members" }

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		fmt.Printf("Unsupported database driver: %s\n", cfg.Database.Driver)
		os.Exit(1)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	var count int64
	if err := db.Model(&WorkspaceMember{}).
		Where("status IS NULL OR status = ''").
		Count(&count).Error; err != nil {
		fmt.Printf("Failed to count legacy rows: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d member rows with no status\n", count)
	if count == 0 {
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "--apply" {
		result := db.Model(&WorkspaceMember{}).
			Where("status IS NULL OR status = ''").
			Update("status", "ACTIVE")
		if result.Error != nil {
			fmt.Printf("Backfill failed: %v\n", result.Error)
			os.Exit(1)
		}
		fmt.Printf("Backfilled %d rows to ACTIVE\n", result.RowsAffected)
	} else {
		fmt.Println("\nTo backfill, run: go run scripts/backfill_member_status.go --apply")
	}
}
