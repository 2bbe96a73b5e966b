package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/logging"
	"gorm.io/gorm"
)

// HarvestLogRepository persists scrape diagnostics for the logging layer.
type HarvestLogRepository struct {
	db *gorm.DB
}

var _ logging.LogRepository = (*HarvestLogRepository)(nil)

func NewHarvestLogRepository(db *gorm.DB) *HarvestLogRepository {
	return &HarvestLogRepository{db: db}
}

// SaveLog implements logging.LogRepository
func (r *HarvestLogRepository) SaveLog(entry logging.LogEntry) error {
	return r.db.Create(&models.HarvestLog{
		ID:          uuid.New(),
		RunID:       entry.RunID,
		Component:   entry.Component,
		Level:       entry.Level,
		Message:     entry.Message,
		Error:       entry.Error,
		URL:         entry.URL,
		StatusCode:  entry.StatusCode,
		BodySnippet: entry.BodySnippet,
		Timestamp:   time.Now(),
	}).Error
}
