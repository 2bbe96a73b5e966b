package models

import "time"

// MaxPartySize is the largest roster the dungeon ranking publishes per party.
const MaxPartySize = 10

// ClearRecord is one party clearing one dungeon instance. The primary key is
// the shortened party id derived from the site's long id string, which makes
// re-ingesting a page an upsert rather than a duplicate. Member slots hold a
// character id, 0 for a member that could not be resolved, or null past
// MemberCount.
type ClearRecord struct {
	PartyID     int64 `gorm:"primaryKey;autoIncrement:false"`
	CategoryID  int   `gorm:"index;not null"`
	Rank        int   `gorm:"not null"`
	ClearTime   int   `gorm:"not null"` // seconds
	ClearDate   int   `gorm:"index;not null"` // YYYYMMDD
	LeaderID    int64 `gorm:"index;not null"`
	MemberCount int   `gorm:"not null"`
	Member1     *int64
	Member2     *int64
	Member3     *int64
	Member4     *int64
	Member5     *int64
	Member6     *int64
	Member7     *int64
	Member8     *int64
	Member9     *int64
	Member10    *int64
	CreatedAt   time.Time
}

// SetMembers fills the member slots from ids, leaving the remaining slots
// null. A 0 id is stored as-is: it marks a party slot whose character could
// not be recovered.
func (r *ClearRecord) SetMembers(ids []int64) {
	slots := []**int64{
		&r.Member1, &r.Member2, &r.Member3, &r.Member4, &r.Member5,
		&r.Member6, &r.Member7, &r.Member8, &r.Member9, &r.Member10,
	}
	if len(ids) > MaxPartySize {
		ids = ids[:MaxPartySize]
	}
	r.MemberCount = len(ids)
	for i := range slots {
		if i < len(ids) {
			v := ids[i]
			*slots[i] = &v
		} else {
			*slots[i] = nil
		}
	}
}

// Members returns the populated member slots in order.
func (r *ClearRecord) Members() []int64 {
	slots := []*int64{
		r.Member1, r.Member2, r.Member3, r.Member4, r.Member5,
		r.Member6, r.Member7, r.Member8, r.Member9, r.Member10,
	}
	out := make([]int64, 0, r.MemberCount)
	for _, s := range slots {
		if s == nil {
			break
		}
		out = append(out, *s)
	}
	return out
}

// SyncState is the per-category ingestion watermark: the highest ranking page
// whose parties have been fully reconciled and persisted.
type SyncState struct {
	CategoryID int `gorm:"primaryKey;autoIncrement:false"`
	LastPage   int `gorm:"not null"`
	UpdatedAt  time.Time
}
