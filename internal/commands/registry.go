package commands

import (
	"gorm.io/gorm"

	"github.com/rheyna/duncord/internal/config"
	"github.com/rheyna/duncord/pkg/database/repository"
	"github.com/rheyna/duncord/pkg/embed"
	"github.com/rheyna/duncord/pkg/ranking/service"
)

var (
	recordStore *repository.RecordStore
	syncService *service.SyncService
	botConfig   *config.Config
	embeds      = embed.CreateRankingEmbeds()
)

// InitializeRankingCommands wires the command layer to the identity store
// and the sync service. Must be called before the message handler is
// registered.
func InitializeRankingCommands(db *gorm.DB, sync *service.SyncService, cfg *config.Config) {
	recordStore = repository.NewRecordStore(db)
	syncService = sync
	botConfig = cfg
}
