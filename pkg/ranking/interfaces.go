package ranking

import (
	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

// PageFetcher is the leaderboard client the locator and reconciler consume.
// Implementations serialize requests behind a courtesy cooldown; none of the
// methods are safe to call concurrently from independent sync runs sharing
// one instance.
type PageFetcher interface {
	// FetchClearsByDate returns the ranked parties of one clears-by-date
	// page. With detailed set, each party's member roster is resolved
	// through one extra sub-request per party.
	FetchClearsByDate(categoryID, page int, detailed bool) ([]shared.PartyRecord, error)
	// FetchClearRate searches the clear rate ranking of a category for a
	// nickname and returns every candidate entry, newest rank first.
	FetchClearRate(categoryID int, nickname string) ([]shared.RankedObservation, error)
	// FetchTrophyCount resolves a nickname to its authoritative current
	// character id plus trophy count.
	FetchTrophyCount(nickname string) (*shared.TrophyObservation, error)
	// FetchMainCharacter runs the account linkage lookup for a nickname in
	// a given YYYYMM month.
	FetchMainCharacter(nickname string, yearMonth int) (*shared.MainCharacterObservation, error)
}

// IdentityStore is the durable identity graph consumed by the reconciler.
// It is implemented by the repository layer; tests substitute an in-memory
// fake. FindByNickname only sees live rows unless includeObsoleted is set.
type IdentityStore interface {
	FindByID(id int64) (*models.CharacterIdentity, error)
	FindByNickname(nickname string, includeObsoleted bool) (*models.CharacterIdentity, error)
	FindByAccount(accountID int64) ([]models.CharacterIdentity, error)
	Insert(identity *models.CharacterIdentity) error
	Update(id int64, fields map[string]interface{}) error
	AppendNickname(id int64, nickname string) error
	NicknameHistory(id int64) ([]string, error)
	InsertClearRecord(record *models.ClearRecord) error
	FindClearRecord(partyID int64) (*models.ClearRecord, error)
	// Atomically runs fn against a transaction-scoped store. All writes for
	// one party go through it: either every member resolves and the clear
	// record lands, or nothing is persisted.
	Atomically(fn func(IdentityStore) error) error
}

// SyncStateStore persists the per-category ingestion frontier.
type SyncStateStore interface {
	LastPage(categoryID int) (int, error)
	SetLastPage(categoryID, page int) error
}
