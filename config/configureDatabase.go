package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"tts-guard-backend/db/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// allModels defines all models that should be migrated.
// This is the only place you need to add new models
var allModels = []interface{}{
	&models.User{},

	&models.Client{},
	&models.Building{},
	&models.Contract{},
	&models.Equipment{},

	&models.Inspection{},
	&models.Complaint{},

	&models.Invoice{},
	&models.Payment{},
}

// ConfigureDatabase opens the database named by DB_DRIVER (postgres by
// default, sqlite for local demos), migrates it and configures the pool.
func ConfigureDatabase() *gorm.DB {
	driver := strings.ToLower(GetEnvDefault("DB_DRIVER", "postgres"))

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := GetEnvDefault("SQLITE_PATH", "tts_guard.db")
		dialector = sqlite.Open(path + "?_foreign_keys=on")
		// sqlite keeps timestamps as text, so they are all written in UTC.
		gormConfig.NowFunc = func() time.Time { return time.Now().UTC() }
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			GetEnv("DB_HOST"),
			GetEnv("POSTGRES_USER"),
			GetEnv("POSTGRES_PASSWORD"),
			GetEnv("POSTGRES_DB"),
			GetEnvDefault("DB_PORT", "5432"),
			GetEnvDefault("DB_TIMEZONE", "Asia/Dubai"),
		)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		log.Fatalf("[DB-CONNECT] Failed to connect to database: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate tables: %v", err)
	}
	log.Println("Tables migrated successfully")

	// Connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("[DB-POOL] Failed to get underlying DB connection: %v", err)
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	log.Println("[DB-POOL] Connection pool configured")
	log.Println("[DB-STATUS] Database setup complete")
	return db
}

// AutoMigrate migrates every model and creates the indexes gorm tags cannot
// express.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := CreateActiveContractPartialIndex(db); err != nil {
		return fmt.Errorf("active contract index: %w", err)
	}
	return nil
}
