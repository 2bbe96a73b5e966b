package repository

import (
	"errors"

	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/ranking"
	"gorm.io/gorm"
)

// RecordStore handles database operations for the identity graph: character
// identities, nickname history, clear records and sync state.
type RecordStore struct {
	db *gorm.DB
}

var _ ranking.IdentityStore = (*RecordStore)(nil)
var _ ranking.SyncStateStore = (*RecordStore)(nil)

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// FindByID returns the identity for a character id, or nil when unknown.
func (r *RecordStore) FindByID(id int64) (*models.CharacterIdentity, error) {
	var identity models.CharacterIdentity
	err := r.db.First(&identity, "character_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// FindByNickname returns the identity currently holding a nickname. Renamed
// away and recovered rows are skipped unless includeObsoleted is set, in
// which case the live row still wins and obsoleted rows break ties by most
// recent update.
func (r *RecordStore) FindByNickname(nickname string, includeObsoleted bool) (*models.CharacterIdentity, error) {
	var identity models.CharacterIdentity
	q := r.db.Where("nickname = ?", nickname)
	if includeObsoleted {
		q = q.Order("nickname_obsoleted ASC, last_updated_time DESC")
	} else {
		q = q.Where("nickname_obsoleted = ?", models.NicknameLive)
	}
	err := q.First(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// FindByAccount returns every identity linked to an account, main character
// first.
func (r *RecordStore) FindByAccount(accountID int64) ([]models.CharacterIdentity, error) {
	var identities []models.CharacterIdentity
	err := r.db.
		Where("account_id = ?", accountID).
		Order("(character_id = main_character_id) DESC, character_id ASC").
		Find(&identities).Error
	if err != nil {
		return nil, err
	}
	return identities, nil
}

func (r *RecordStore) Insert(identity *models.CharacterIdentity) error {
	return r.db.Create(identity).Error
}

// Update applies a partial field update to one identity row.
func (r *RecordStore) Update(id int64, fields map[string]interface{}) error {
	return r.db.Model(&models.CharacterIdentity{}).
		Where("character_id = ?", id).
		Updates(fields).Error
}

// AppendNickname adds a nickname to the end of a character's history.
func (r *RecordStore) AppendNickname(id int64, nickname string) error {
	var maxSeq int
	err := r.db.Model(&models.NicknameHistory{}).
		Where("character_id = ?", id).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return err
	}
	return r.db.Create(&models.NicknameHistory{
		CharacterID: id,
		Seq:         maxSeq + 1,
		Nickname:    nickname,
	}).Error
}

// NicknameHistory returns every nickname ever observed for a character id,
// oldest first.
func (r *RecordStore) NicknameHistory(id int64) ([]string, error) {
	var rows []models.NicknameHistory
	err := r.db.Where("character_id = ?", id).Order("seq ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Nickname)
	}
	return names, nil
}

// Atomically runs fn inside one transaction. The reconciler wraps each
// party's member resolution and clear record insert in it.
func (r *RecordStore) Atomically(fn func(ranking.IdentityStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRecordStore(tx))
	})
}
