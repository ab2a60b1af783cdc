package database

import (
	"github.com/profast/profast-backend/internal/models"
	"gorm.io/gorm"
)

// RunMigrations applies schema fixes that AutoMigrate does not cover:
// role/status check constraints and backfills for columns added after the
// first deployments.
func RunMigrations(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}

	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'rider', 'admin'))`).Error; err != nil {
			return err
		}
	}

	if db.Migrator().HasTable(&models.Rider{}) {
		db.Exec(`ALTER TABLE riders DROP CONSTRAINT IF EXISTS riders_status_check`)
		if err := db.Exec(`ALTER TABLE riders ADD CONSTRAINT riders_status_check CHECK (status IN ('pending', 'accepted', 'rejected'))`).Error; err != nil {
			return err
		}
	}

	if db.Migrator().HasTable(&models.Parcel{}) {
		// Parcels created before cashout shipped have no cashout_status.
		if err := db.Exec(`UPDATE parcels SET cashout_status = 'pending' WHERE cashout_status IS NULL OR cashout_status = ''`).Error; err != nil {
			return err
		}
	}

	return nil
}
