package db

import (
	"errors"
	"fmt"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// demoTables lists the domain tables children-first so deletes never trip a
// foreign key. Users are staff accounts and are left alone.
var demoTables = []interface{}{
	&models.Complaint{},
	&models.Payment{},
	&models.Inspection{},
	&models.Equipment{},
	&models.Invoice{},
	&models.Contract{},
	&models.Building{},
	&models.Client{},
}

// HasData reports whether any client exists.
func HasData(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.Client{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count clients: %w", err)
	}
	return count > 0, nil
}

// EnsureSeeded is called once at startup. It seeds the demo dataset when the
// store is empty and makes sure a staff account exists to log in with.
func EnsureSeeded(db *gorm.DB, today time.Time) error {
	if err := EnsureStaffUser(db); err != nil {
		return err
	}

	seeded, err := HasData(db)
	if err != nil {
		return err
	}
	if seeded {
		config.Logger.Info("Store already has data, skipping demo seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return seedDemoData(tx, today)
	})
}

// ResetDemoData wipes every domain table and reseeds the demo dataset in one
// transaction. Running it twice leaves the same counts as running it once.
func ResetDemoData(db *gorm.DB, today time.Time) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, table := range demoTables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("wipe %T: %w", table, err)
			}
		}
		return seedDemoData(tx, today)
	})
	if err != nil {
		config.Logger.Error("Demo data reset failed", zap.Error(err))
		return fmt.Errorf("reset demo data: %w", err)
	}

	config.Logger.Info("Demo data reset complete")
	return nil
}

// EnsureStaffUser creates the initial admin account from DEMO_ADMIN_EMAIL and
// DEMO_ADMIN_PASSWORD when no user exists yet.
func EnsureStaffUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := config.GetEnvDefault("DEMO_ADMIN_EMAIL", "admin@ttsguard.ae")
	password := config.GetEnvDefault("DEMO_ADMIN_PASSWORD", "ChangeMe123!")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := models.User{
		FullName:  "Operations Admin",
		Email:     email,
		Password:  string(hashed),
		Role:      models.AdminRole,
		Active:    true,
		CreatedBy: "system",
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	config.Logger.Info("Created initial staff account", zap.String("email", email))
	return nil
}
