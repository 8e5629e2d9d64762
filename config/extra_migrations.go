package config

import "gorm.io/gorm"

// CreateActiveContractPartialIndex allows any number of expired contracts per
// building but only ONE active contract. The syntax is shared by postgres and
// sqlite.
func CreateActiveContractPartialIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_contracts_building_active
		ON contracts (building_id)
		WHERE status = 'active'
	`).Error
}
