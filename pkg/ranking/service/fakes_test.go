package service_test

import (
	"fmt"
	"time"

	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/logging"
	"github.com/rheyna/duncord/pkg/ranking"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

func testLogger() logging.Logger {
	return logging.NewLoggerFactory().CreateLogger("test")
}

// fakeFetcher scripts the four leaderboard endpoints and counts lookups.
type fakeFetcher struct {
	pages       map[int]map[int][]shared.PartyRecord // categoryID -> page -> rows
	trophies    map[string]*shared.TrophyObservation
	clearRates  map[string][]shared.RankedObservation
	mains       map[string]map[int]*shared.MainCharacterObservation
	badCategory int

	pageCalls   int
	trophyCalls int
	mainMonths  []int
	failTrophy  map[string]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:      map[int]map[int][]shared.PartyRecord{},
		trophies:   map[string]*shared.TrophyObservation{},
		clearRates: map[string][]shared.RankedObservation{},
		mains:      map[string]map[int]*shared.MainCharacterObservation{},
		failTrophy: map[string]error{},
	}
}

func (f *fakeFetcher) FetchClearsByDate(categoryID, page int, detailed bool) ([]shared.PartyRecord, error) {
	f.pageCalls++
	if categoryID == f.badCategory && f.badCategory != 0 {
		return nil, &ranking.DungeonNotFoundError{CategoryID: categoryID}
	}
	rows := f.pages[categoryID][page]
	out := make([]shared.PartyRecord, len(rows))
	copy(out, rows)
	if !detailed {
		for i := range out {
			out[i].Members = nil
		}
	}
	return out, nil
}

func (f *fakeFetcher) FetchClearRate(categoryID int, nickname string) ([]shared.RankedObservation, error) {
	rows, ok := f.clearRates[nickname]
	if !ok {
		return nil, &ranking.CharacterNotFoundError{Nickname: nickname}
	}
	return rows, nil
}

func (f *fakeFetcher) FetchTrophyCount(nickname string) (*shared.TrophyObservation, error) {
	f.trophyCalls++
	if err := f.failTrophy[nickname]; err != nil {
		return nil, err
	}
	obs, ok := f.trophies[nickname]
	if !ok {
		return nil, &ranking.CharacterNotFoundError{Nickname: nickname}
	}
	return obs, nil
}

func (f *fakeFetcher) FetchMainCharacter(nickname string, yearMonth int) (*shared.MainCharacterObservation, error) {
	f.mainMonths = append(f.mainMonths, yearMonth)
	if obs, ok := f.mains[nickname][yearMonth]; ok {
		return obs, nil
	}
	return nil, &ranking.CharacterNotFoundError{Nickname: nickname}
}

var _ ranking.PageFetcher = (*fakeFetcher)(nil)

// fakeStore is an in-memory IdentityStore and SyncStateStore. Atomically
// snapshots the state and restores it when fn fails, mirroring the
// transaction rollback of the repository implementation.
type fakeStore struct {
	identities map[int64]*models.CharacterIdentity
	history    map[int64][]string
	clears     map[int64]*models.ClearRecord
	lastPages  map[int]int
	writes     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		identities: map[int64]*models.CharacterIdentity{},
		history:    map[int64][]string{},
		clears:     map[int64]*models.ClearRecord{},
		lastPages:  map[int]int{},
	}
}

func (s *fakeStore) FindByID(id int64) (*models.CharacterIdentity, error) {
	row, ok := s.identities[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (s *fakeStore) FindByNickname(nickname string, includeObsoleted bool) (*models.CharacterIdentity, error) {
	var best *models.CharacterIdentity
	for _, row := range s.identities {
		if row.Nickname != nickname {
			continue
		}
		if row.NicknameObsoleted == models.NicknameLive {
			cp := *row
			return &cp, nil
		}
		if includeObsoleted && best == nil {
			cp := *row
			best = &cp
		}
	}
	return best, nil
}

func (s *fakeStore) FindByAccount(accountID int64) ([]models.CharacterIdentity, error) {
	var out []models.CharacterIdentity
	for _, row := range s.identities {
		if row.AccountID != nil && *row.AccountID == accountID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeStore) Insert(identity *models.CharacterIdentity) error {
	s.writes++
	cp := *identity
	s.identities[identity.CharacterID] = &cp
	return nil
}

func (s *fakeStore) Update(id int64, fields map[string]interface{}) error {
	row, ok := s.identities[id]
	if !ok {
		return fmt.Errorf("identity %d not found", id)
	}
	s.writes++
	for col, v := range fields {
		switch col {
		case "nickname":
			row.Nickname = v.(string)
		case "job":
			row.Job = v.(*string)
		case "level":
			row.Level = v.(*int)
		case "trophy":
			row.Trophy = v.(*int)
		case "nickname_obsoleted":
			row.NicknameObsoleted = v.(int)
		case "last_updated_time":
			row.LastUpdatedTime = v.(time.Time)
		case "house_query_date":
			n := v.(int)
			row.HouseQueryDate = &n
		case "account_id":
			n := v.(int64)
			row.AccountID = &n
		case "main_character_id":
			n := v.(int64)
			row.MainCharacterID = &n
		case "star_house_date":
			row.StarHouseDate = v.(*int)
		case "house_name":
			name := v.(string)
			row.HouseName = &name
		default:
			return fmt.Errorf("unexpected column %q", col)
		}
	}
	return nil
}

func (s *fakeStore) AppendNickname(id int64, nickname string) error {
	s.writes++
	s.history[id] = append(s.history[id], nickname)
	return nil
}

func (s *fakeStore) NicknameHistory(id int64) ([]string, error) {
	return append([]string(nil), s.history[id]...), nil
}

func (s *fakeStore) InsertClearRecord(record *models.ClearRecord) error {
	s.writes++
	cp := *record
	s.clears[record.PartyID] = &cp
	return nil
}

func (s *fakeStore) FindClearRecord(partyID int64) (*models.ClearRecord, error) {
	rec, ok := s.clears[partyID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) Atomically(fn func(ranking.IdentityStore) error) error {
	snapshot := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *fakeStore) LastPage(categoryID int) (int, error) {
	return s.lastPages[categoryID], nil
}

func (s *fakeStore) SetLastPage(categoryID, page int) error {
	s.writes++
	s.lastPages[categoryID] = page
	return nil
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	for id, row := range s.identities {
		r := *row
		cp.identities[id] = &r
	}
	for id, names := range s.history {
		cp.history[id] = append([]string(nil), names...)
	}
	for id, rec := range s.clears {
		r := *rec
		cp.clears[id] = &r
	}
	for id, page := range s.lastPages {
		cp.lastPages[id] = page
	}
	cp.writes = s.writes
	return cp
}

func (s *fakeStore) restore(snapshot *fakeStore) {
	s.identities = snapshot.identities
	s.history = snapshot.history
	s.clears = snapshot.clears
	s.lastPages = snapshot.lastPages
	s.writes = snapshot.writes
}

var _ ranking.IdentityStore = (*fakeStore)(nil)
var _ ranking.SyncStateStore = (*fakeStore)(nil)
