package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/ranking/service"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

const testAsOf = 201403

func testLinkage() service.LinkageConfig {
	return service.LinkageConfig{
		RecentMonths: 3,
		SearchBudget: 10,
		GapRanges:    []service.GapRange{{From: 201301, To: 201212}},
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

// linkedIdentity seeds a live row with full account linkage.
func linkedIdentity(id int64, nickname string, job string, level int) *models.CharacterIdentity {
	star := 20130501
	return &models.CharacterIdentity{
		CharacterID:     id,
		Nickname:        nickname,
		Job:             strPtr(job),
		Level:           intPtr(level),
		Trophy:          intPtr(100),
		AccountID:       int64Ptr(id * 10),
		MainCharacterID: int64Ptr(id),
		StarHouseDate:   &star,
		LastUpdatedTime: time.Now(),
	}
}

func TestReconcileFreshMatchSkipsLookups(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	require.NoError(t, store.Insert(linkedIdentity(1, "Hero", "Warrior", 50)))
	writesBefore := store.writes

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Hero", Job: "Warrior", Level: 50}, testAsOf)
	require.NoError(t, err)

	assert.Equal(t, int64(1), id)
	assert.Equal(t, 0, fetcher.trophyCalls, "fresh rows must not hit the network")
	assert.Empty(t, fetcher.mainMonths)
	assert.Equal(t, 1, store.writes-writesBefore, "only the watermark is touched")
}

func TestReconcileStaleRowRefreshes(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	row := linkedIdentity(1, "Hero", "Warrior", 50)
	row.LastUpdatedTime = time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, store.Insert(row))
	fetcher.trophies["Hero"] = &shared.TrophyObservation{
		CharacterID: 1, Nickname: "Hero", Job: "Warrior", Level: 51, TrophyCount: 250,
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Hero", Job: "Warrior", Level: 51}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, 1, fetcher.trophyCalls)

	got, _ := store.FindByID(1)
	assert.Equal(t, 51, *got.Level)
	assert.Equal(t, 250, *got.Trophy)
	assert.Empty(t, fetcher.mainMonths, "populated linkage is not re-searched")
}

func TestReconcileRenameRecordsHistory(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	require.NoError(t, store.Insert(linkedIdentity(1, "OldName", "Warrior", 50)))
	fetcher.trophies["NewName"] = &shared.TrophyObservation{
		CharacterID: 1, Nickname: "NewName", Job: "Warrior", Level: 50, TrophyCount: 100,
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "NewName", Job: "Warrior", Level: 50}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, _ := store.FindByID(1)
	assert.Equal(t, "NewName", got.Nickname)
	assert.Equal(t, models.NicknameLive, got.NicknameObsoleted)

	// The first rename seeds the history with the previous name, so the
	// whole sequence stays reconstructable.
	history, _ := store.NicknameHistory(1)
	assert.Equal(t, []string{"OldName", "NewName"}, history)
}

func TestReconcileNicknameReclaimedByOtherCharacter(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	row := linkedIdentity(1, "Hero", "Warrior", 50)
	row.LastUpdatedTime = time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, store.Insert(row))
	// The trophy lookup now resolves "Hero" to a different character id.
	fetcher.trophies["Hero"] = &shared.TrophyObservation{
		CharacterID: 2, Nickname: "Hero", Job: "Mage", Level: 30, TrophyCount: 10,
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Hero", Job: "Mage", Level: 30}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	old, _ := store.FindByID(1)
	assert.Equal(t, models.NicknameRenamedAway, old.NicknameObsoleted)
	assert.Equal(t, "Hero", old.Nickname, "retired rows keep their last nickname")

	claimed, _ := store.FindByID(2)
	require.NotNil(t, claimed)
	assert.Equal(t, "Hero", claimed.Nickname)
	assert.Equal(t, models.NicknameLive, claimed.NicknameObsoleted)
	require.NotNil(t, claimed.HouseQueryDate)
	assert.Equal(t, testAsOf, *claimed.HouseQueryDate)
}

func TestReconcileFirstSightingDiscoversLinkage(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.trophies["Nova"] = &shared.TrophyObservation{
		CharacterID: 5, Nickname: "Nova", Job: "Mage", Level: 60, TrophyCount: 400,
	}
	star := 20130501
	fetcher.mains["Nova"] = map[int]*shared.MainCharacterObservation{
		201402: {
			MainCharacterID: 9, MainNickname: "Keystone",
			AccountID: 77, HouseName: "Starfall", StarHouseDate: &star,
		},
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Nova", Job: "Mage", Level: 60}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	// Newest month first, stopping at the hit.
	assert.Equal(t, []int{201403, 201402}, fetcher.mainMonths)

	got, _ := store.FindByID(5)
	require.NotNil(t, got)
	assert.Equal(t, int64(77), *got.AccountID)
	assert.Equal(t, int64(9), *got.MainCharacterID)
	assert.Equal(t, "Starfall", *got.HouseName)
	assert.Equal(t, 20130501, *got.StarHouseDate)

	// The referenced main character gets a stub row so account fan-outs
	// always resolve.
	stub, _ := store.FindByID(9)
	require.NotNil(t, stub)
	assert.Equal(t, "Keystone", stub.Nickname)
	assert.Equal(t, int64(77), *stub.AccountID)
	assert.Nil(t, stub.Job)
	assert.Nil(t, stub.Level)
}

func TestReconcileLinkageMissProbesRecentThenGaps(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.trophies["Nova"] = &shared.TrophyObservation{
		CharacterID: 5, Nickname: "Nova", Job: "Mage", Level: 60, TrophyCount: 400,
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Nova", Job: "Mage", Level: 60}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	// Three recent months, then the configured gap window.
	assert.Equal(t, []int{201403, 201402, 201401, 201301, 201212}, fetcher.mainMonths)

	got, _ := store.FindByID(5)
	assert.Nil(t, got.AccountID)
	require.NotNil(t, got.HouseQueryDate)
	assert.Equal(t, testAsOf, *got.HouseQueryDate, "the failed search month is recorded")
}

func TestReconcileLinkageNotRetriedSameMonth(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.trophies["Nova"] = &shared.TrophyObservation{
		CharacterID: 5, Nickname: "Nova", Job: "Mage", Level: 60, TrophyCount: 400,
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	_, err := r.Reconcile(1, shared.Observation{Nickname: "Nova", Job: "Mage", Level: 60}, testAsOf)
	require.NoError(t, err)
	probesAfterFirst := len(fetcher.mainMonths)

	// Age the row past the freshness window so the refresh path runs again.
	require.NoError(t, store.Update(5, map[string]interface{}{
		"last_updated_time": time.Now().Add(-8 * 24 * time.Hour),
	}))

	_, err = r.Reconcile(1, shared.Observation{Nickname: "Nova", Job: "Mage", Level: 60}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, probesAfterFirst, len(fetcher.mainMonths),
		"a month that already failed is not searched again")
}

func TestReconcileLostCharacterTieBreak(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.clearRates["Ghost"] = []shared.RankedObservation{
		{CharacterID: 11, Nickname: "Ghost", Job: "Mage", Level: 50, Rank: 1},
		{CharacterID: 12, Nickname: "Ghost", Job: "Thief", Level: 40, Rank: 2},
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())

	// Job and level match beats result order.
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Ghost", Job: "Thief", Level: 40}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	got, _ := store.FindByID(12)
	require.NotNil(t, got)
	assert.Equal(t, models.NicknameRecovered, got.NicknameObsoleted)

	// With no attribute match the first result wins.
	id, err = r.Reconcile(1, shared.Observation{Nickname: "Ghost", Job: "Gunner", Level: 99}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestReconcileCustomTieBreaker(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.clearRates["Ghost"] = []shared.RankedObservation{
		{CharacterID: 11, Nickname: "Ghost", Job: "Mage", Level: 50, Rank: 1},
		{CharacterID: 12, Nickname: "Ghost", Job: "Thief", Level: 40, Rank: 2},
	}

	last := func(obs shared.Observation, candidates []shared.RankedObservation) shared.RankedObservation {
		return candidates[len(candidates)-1]
	}
	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger()).WithTieBreaker(last)

	id, err := r.Reconcile(1, shared.Observation{Nickname: "Ghost", Job: "Mage", Level: 50}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestReconcileUnrecoverableYieldsPlaceholder(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Vanished", Job: "Bard", Level: 20}, testAsOf)
	require.NoError(t, err, "an unrecoverable member is not an error")
	assert.Equal(t, int64(0), id)
	assert.Empty(t, store.identities)
}

func TestReconcileUnusableFallbackIDs(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.clearRates["Ghost"] = []shared.RankedObservation{
		{CharacterID: -1, Nickname: "Ghost", Job: "Mage", Level: 50, Rank: 1},
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Ghost", Job: "Mage", Level: 50}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
	assert.Empty(t, store.identities)
}

func TestReconcileDemotesUnresolvableLiveRow(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	// Live row whose nickname the site no longer answers for.
	require.NoError(t, store.Insert(&models.CharacterIdentity{
		CharacterID: 3, Nickname: "Ghost", Job: strPtr("Mage"), Level: intPtr(50),
		LastUpdatedTime: time.Now().Add(-8 * 24 * time.Hour),
	}))
	fetcher.clearRates["Ghost"] = []shared.RankedObservation{
		{CharacterID: 3, Nickname: "Ghost", Job: "Mage", Level: 50, Rank: 1},
	}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	id, err := r.Reconcile(1, shared.Observation{Nickname: "Ghost", Job: "Mage", Level: 50}, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	got, _ := store.FindByID(3)
	assert.Equal(t, models.NicknameRecovered, got.NicknameObsoleted,
		"a nickname the direct lookup cannot resolve is no longer certain")
}

func TestReconcileSecondPassIsCheap(t *testing.T) {
	store := newFakeStore()
	fetcher := newFakeFetcher()
	fetcher.trophies["Nova"] = &shared.TrophyObservation{
		CharacterID: 5, Nickname: "Nova", Job: "Mage", Level: 60, TrophyCount: 400,
	}
	star := 20130501
	fetcher.mains["Nova"] = map[int]*shared.MainCharacterObservation{
		201403: {MainCharacterID: 5, MainNickname: "Nova", AccountID: 77, StarHouseDate: &star},
	}
	obs := shared.Observation{Nickname: "Nova", Job: "Mage", Level: 60}

	r := service.NewReconciler(store, fetcher, testLinkage(), testLogger())
	_, err := r.Reconcile(1, obs, testAsOf)
	require.NoError(t, err)
	writesAfterFirst := store.writes

	id, err := r.Reconcile(1, obs, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, 1, fetcher.trophyCalls, "second sighting takes the fresh path")
	assert.Equal(t, 1, store.writes-writesAfterFirst, "only the watermark moves")
}
