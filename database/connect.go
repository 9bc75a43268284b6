// file: database/connect.go
package database

import (
	"log"
	"time"

	"EscapeCTF/config"
	"EscapeCTF/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	var err error
	DB, err = gorm.Open(mysql.Open(config.C.MySQLDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	// 连接最长复用 1 小时，绕开 MySQL 的 wait_timeout 断连
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection successfully established and connection pool configured.")
}

// MigrateTables 开发环境用的自动迁移；生产建表走 SQL 脚本
func MigrateTables() {
	err := DB.AutoMigrate(
		&models.User{}, &models.Team{}, &models.TeamMember{}, &models.TeamJoinRequest{},
		&models.Room{}, &models.Puzzle{}, &models.Clue{}, &models.Perk{},
		&models.Purchase{}, &models.Action{}, &models.Submission{}, &models.AuditLog{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	log.Println("Database migration completed.")
}
