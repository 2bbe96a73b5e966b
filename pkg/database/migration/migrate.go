package migration

import (
	"log"

	"github.com/rheyna/duncord/pkg/database/models"
	"gorm.io/gorm"
)

func RunMigration(db *gorm.DB) error {

	log.Println("Starting migrations...")

	// Create postgres extension for uuid
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return err
	}

	log.Println("Running database migrations...")
	// Auto-migrate the models
	if err := db.AutoMigrate(
		&models.CharacterIdentity{},
		&models.NicknameHistory{},
		&models.ClearRecord{},
		&models.SyncState{},
		&models.HarvestLog{},
	); err != nil {
		return err
	}

	// A nickname may be reused after its owner renames away, so uniqueness
	// only holds among live rows. GORM tags cannot express a partial index.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_live_nickname" +
			" ON character_identities (nickname) WHERE nickname_obsoleted = 0",
	).Error; err != nil {
		return err
	}

	log.Println("Migrations completed successfully!")
	return nil
}
