package repository

import (
	"errors"

	"github.com/rheyna/duncord/pkg/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertClearRecord upserts one party clear keyed by its shortened party id.
// Re-ingesting an already synced page replaces the row with identical data,
// which keeps page re-runs idempotent.
func (r *RecordStore) InsertClearRecord(record *models.ClearRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "party_id"}},
		UpdateAll: true,
	}).Create(record).Error
}

// FindClearRecord returns the clear record for a party id, or nil.
func (r *RecordStore) FindClearRecord(partyID int64) (*models.ClearRecord, error) {
	var record models.ClearRecord
	err := r.db.First(&record, "party_id = ?", partyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RecentClearsByCharacter returns the newest clear records a character
// appears in, for the consumer-facing record lookup.
func (r *RecordStore) RecentClearsByCharacter(id int64, limit int) ([]models.ClearRecord, error) {
	var records []models.ClearRecord
	err := r.db.
		Where("leader_id = ?"+
			" OR member1 = ? OR member2 = ? OR member3 = ? OR member4 = ? OR member5 = ?"+
			" OR member6 = ? OR member7 = ? OR member8 = ? OR member9 = ? OR member10 = ?",
			id, id, id, id, id, id, id, id, id, id, id).
		Order("clear_date DESC, rank ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LastPage returns the highest fully ingested page for a category, 0 when
// the category has never been synced.
func (r *RecordStore) LastPage(categoryID int) (int, error) {
	var state models.SyncState
	err := r.db.First(&state, "category_id = ?", categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.LastPage, nil
}

// SetLastPage advances the ingestion watermark for a category.
func (r *RecordStore) SetLastPage(categoryID, page int) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_page", "updated_at"}),
	}).Create(&models.SyncState{CategoryID: categoryID, LastPage: page}).Error
}
