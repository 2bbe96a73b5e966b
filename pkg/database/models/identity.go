package models

import "time"

// Nickname states for CharacterIdentity. The source site allows a nickname to
// be reused after its owner renames away, so nickname uniqueness only holds
// among live rows.
const (
	// NicknameLive marks the row whose nickname currently resolves on the site.
	NicknameLive = 0
	// NicknameRenamedAway marks a row whose nickname was since claimed by a
	// different character id.
	NicknameRenamedAway = 1
	// NicknameRecovered marks a row rebuilt from the clear rate fallback
	// search; its nickname may or may not still be current.
	NicknameRecovered = 2
)

// CharacterIdentity is one stable character id and its last observed state.
// Rows are never deleted; renamed-away and recovered rows stay behind to keep
// historical clear records resolvable.
type CharacterIdentity struct {
	CharacterID       int64  `gorm:"primaryKey;autoIncrement:false"`
	Nickname          string `gorm:"index;not null"`
	Job               *string
	Level             *int
	Trophy            *int
	MainCharacterID   *int64 `gorm:"index"`
	AccountID         *int64 `gorm:"index"`
	NicknameObsoleted int    `gorm:"not null;default:0"`
	HouseQueryDate    *int   // YYYYMM of the last account linkage attempt
	StarHouseDate     *int   // YYYYMMDD
	HouseName         *string
	LastUpdatedTime   time.Time `gorm:"not null"`
}

// NicknameHistory is one observed nickname of a character id. Rows are append
// only, ordered by Seq; the highest Seq always matches the identity's current
// nickname once a reconcile pass completes.
type NicknameHistory struct {
	ID          uint   `gorm:"primaryKey"`
	CharacterID int64  `gorm:"index;not null"`
	Seq         int    `gorm:"not null"`
	Nickname    string `gorm:"not null"`
	CreatedAt   time.Time
}

// LinkagePopulated reports whether the expensive account linkage lookup has
// already produced a result for this row.
func (c *CharacterIdentity) LinkagePopulated() bool {
	return c.AccountID != nil && *c.AccountID != 0 && c.StarHouseDate != nil
}
