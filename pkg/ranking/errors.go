package ranking

import "fmt"

// CharacterNotFoundError means a nickname has no current entry on the
// leaderboard view that was queried. It is an expected outcome and drives the
// fallback paths in the reconciler; it is never fatal.
type CharacterNotFoundError struct {
	Nickname string
	URL      string
}

func (e *CharacterNotFoundError) Error() string {
	return fmt.Sprintf("character %q not found on %s", e.Nickname, e.URL)
}

// DungeonNotFoundError means the source site does not recognize the category
// id. The sync run for that category cannot proceed.
type DungeonNotFoundError struct {
	CategoryID int
}

func (e *DungeonNotFoundError) Error() string {
	return fmt.Sprintf("dungeon category %d unknown to the ranking site", e.CategoryID)
}

// InternalServerError is returned after the retry budget for a request is
// exhausted. It carries the last response so scraping breakage can be
// diagnosed offline from the persisted harvest log.
type InternalServerError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *InternalServerError) Error() string {
	return fmt.Sprintf("ranking request failed with status %d after retries: %s", e.StatusCode, e.URL)
}

// WrongPageError means the fetched page did not carry the expected title
// marker. Either the site changed its layout or the request was redirected;
// all scraping must halt until it is investigated.
type WrongPageError struct {
	URL       string
	WantTitle string
	GotTitle  string
}

func (e *WrongPageError) Error() string {
	return fmt.Sprintf("unexpected page title %q (want %q) at %s", e.GotTitle, e.WantTitle, e.URL)
}

// InvalidParameterError flags a caller-supplied value the source site cannot
// answer for, such as a linkage month before service launch. It is a
// programmer error and is never retried.
type InvalidParameterError struct {
	Param string
	Value interface{}
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v", e.Param, e.Value)
}
