package shared

// Observation is a single (nickname, job, level) sighting scraped from a
// party roster. The ranking pages never expose a character id directly, so
// an observation has to be resolved against the identity table.
type Observation struct {
	Nickname string
	Job      string
	Level    int
}

// MemberRecord is one roster entry of a cleared party.
type MemberRecord struct {
	Nickname string
	Job      string
	Level    int
}

// PartyRecord is one ranked row of the dungeon clear ranking.
type PartyRecord struct {
	PartyID    int64  // shortened id derived from RawPartyID
	RawPartyID string // long decimal id string as published by the site
	Rank       int
	ClearTime  int // seconds
	ClearDate  int // YYYYMMDD
	Leader     string
	Members    []MemberRecord // populated only when fetched in detailed mode
}

// RankedObservation is one candidate row from the clear rate ranking. The
// clear rate pages keep entries for characters that no longer resolve via
// nickname lookup, which makes them the fallback source for lost characters.
type RankedObservation struct {
	CharacterID int64
	Nickname    string
	Job         string
	Level       int
	Rank        int
}

// TrophyObservation is the trophy ranking entry for a nickname. Its avatar
// URL carries the authoritative character id currently bound to the nickname.
type TrophyObservation struct {
	CharacterID int64
	Nickname    string
	Job         string
	Level       int
	TrophyCount int
}

// MainCharacterObservation is the result of the account linkage lookup for a
// given nickname and month.
type MainCharacterObservation struct {
	MainCharacterID int64
	MainNickname    string
	AccountID       int64
	HouseName       string
	StarHouseDate   *int // YYYYMMDD, nil when the account has no star house
}
