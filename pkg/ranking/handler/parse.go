package handler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

// The ranking pages encode gameplay attributes in image URLs rather than
// text: the job icon carries a numeric job code and the avatar path carries
// character id and level. Extraction is pure and total; anything with an
// unrecognized shape collapses to the documented fallbacks ("Beginner" job,
// -1 id/level) so a cosmetic site change degrades data instead of aborting
// a sync run.

var jobIconRegex = regexp.MustCompile(`icon_job_(\d+)\.png`)
var avatarRegex = regexp.MustCompile(`/avatar/(\d+)/(\d+)\.png`)
var digitsRegex = regexp.MustCompile(`\d`)

var jobCodeToName = map[string]string{
	"1":  "Warrior",
	"2":  "Mage",
	"3":  "Archer",
	"4":  "Cleric",
	"5":  "Thief",
	"6":  "Bard",
	"7":  "Lancer",
	"8":  "Gunner",
	"9":  "Ninja",
	"10": "Puppeteer",
}

// FallbackJob is reported when a job icon URL has an unknown shape or code.
const FallbackJob = "Beginner"

// ParseJobIcon maps a job icon URL to a job name.
func ParseJobIcon(url string) string {
	matches := jobIconRegex.FindStringSubmatch(url)
	if len(matches) < 2 {
		return FallbackJob
	}
	name, ok := jobCodeToName[matches[1]]
	if !ok {
		return FallbackJob
	}
	return name
}

// ParseAvatarURL extracts (characterID, level) from an avatar URL. Roster
// pages publish avatars with a zeroed id segment, so id 0 means "hidden by
// the site" while -1 means the URL shape was not recognized at all.
func ParseAvatarURL(url string) (int64, int) {
	matches := avatarRegex.FindStringSubmatch(url)
	if len(matches) < 3 {
		return -1, -1
	}
	id, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return -1, -1
	}
	level, err := strconv.Atoi(matches[2])
	if err != nil {
		return -1, -1
	}
	return id, level
}

// ShortenPartyID derives the 64-bit storage key from the site's long decimal
// party id string: every digit is kept in order and the last 18 are parsed
// as an integer. The mapping is total and deterministic, and the trailing
// digits carry the per-party sequence number, which keeps it collision free
// for the id format the site actually emits. Non-digit input maps to 0.
func ShortenPartyID(raw string) int64 {
	digits := strings.Join(digitsRegex.FindAllString(raw, -1), "")
	if digits == "" {
		return 0
	}
	if len(digits) > 18 {
		digits = digits[len(digits)-18:]
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseClearTime converts "mm:ss" or "hh:mm:ss" to seconds, 0 when the cell
// is malformed.
func parseClearTime(text string) int {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// parseDotDate converts "YYYY.MM.DD" to its YYYYMMDD integer form, 0 when
// malformed.
func parseDotDate(text string) int {
	parts := strings.Split(strings.TrimSpace(text), ".")
	if len(parts) != 3 {
		return 0
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0
	}
	return y*10000 + m*100 + d
}

// parseCount strips thousands separators from a numeric cell.
func parseCount(text string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
	if err != nil {
		return -1
	}
	return n
}

// parsePartyRows extracts the ranked party rows of a clears-by-date page.
// Member rosters come from a separate sub-request and are not filled here.
func parsePartyRows(doc *goquery.Document) []shared.PartyRecord {
	var parties []shared.PartyRecord
	doc.Find("table.rankingList tbody tr").Each(func(i int, s *goquery.Selection) {
		raw, ok := s.Attr("data-party-id")
		if !ok {
			return
		}
		rank := parseCount(s.Find("td.rank").Text())
		if rank < 0 {
			rank = 0
		}
		parties = append(parties, shared.PartyRecord{
			PartyID:    ShortenPartyID(raw),
			RawPartyID: raw,
			Rank:       rank,
			ClearTime:  parseClearTime(s.Find("td.clearTime").Text()),
			ClearDate:  parseDotDate(s.Find("td.clearDate").Text()),
			Leader:     strings.TrimSpace(s.Find("td.leader a").Text()),
		})
	})
	return parties
}

// parsePartyMembers extracts the roster of a party detail page. Roster
// avatars never expose character ids, which is why every member has to go
// through reconciliation.
func parsePartyMembers(doc *goquery.Document) []shared.MemberRecord {
	var members []shared.MemberRecord
	doc.Find("ul.partyMembers li").Each(func(i int, s *goquery.Selection) {
		nickname := strings.TrimSpace(s.Find("span.name").Text())
		if nickname == "" {
			return
		}
		avatarURL, _ := s.Find("img.avatar").Attr("src")
		_, level := ParseAvatarURL(avatarURL)
		jobURL, _ := s.Find("img.jobIcon").Attr("src")
		members = append(members, shared.MemberRecord{
			Nickname: nickname,
			Job:      ParseJobIcon(jobURL),
			Level:    level,
		})
	})
	return members
}

// parseClearRateRows extracts candidate entries from a clear rate search.
func parseClearRateRows(doc *goquery.Document) []shared.RankedObservation {
	var candidates []shared.RankedObservation
	doc.Find("table.rankingList tbody tr").Each(func(i int, s *goquery.Selection) {
		cell := s.Find("td.character")
		nickname := strings.TrimSpace(cell.Find("span.name").Text())
		if nickname == "" {
			return
		}
		avatarURL, _ := cell.Find("img.avatar").Attr("src")
		id, level := ParseAvatarURL(avatarURL)
		jobURL, _ := cell.Find("img.jobIcon").Attr("src")
		rank := parseCount(s.Find("td.rank").Text())
		if rank < 0 {
			rank = 0
		}
		candidates = append(candidates, shared.RankedObservation{
			CharacterID: id,
			Nickname:    nickname,
			Job:         ParseJobIcon(jobURL),
			Level:       level,
			Rank:        rank,
		})
	})
	return candidates
}

// parseTrophyEntry extracts the single trophy ranking entry of a nickname
// lookup, nil when the page has no entry block.
func parseTrophyEntry(doc *goquery.Document) *shared.TrophyObservation {
	entry := doc.Find("div.trophyEntry").First()
	if entry.Length() == 0 {
		return nil
	}
	avatarURL, _ := entry.Find("img.avatar").Attr("src")
	id, level := ParseAvatarURL(avatarURL)
	jobURL, _ := entry.Find("img.jobIcon").Attr("src")
	return &shared.TrophyObservation{
		CharacterID: id,
		Nickname:    strings.TrimSpace(entry.Find("span.name").Text()),
		Job:         ParseJobIcon(jobURL),
		Level:       level,
		TrophyCount: parseCount(entry.Find("span.trophyCount").Text()),
	}
}

// parseMainCharacterEntry extracts the account linkage block of a main
// character lookup, nil when the page has no entry block.
func parseMainCharacterEntry(doc *goquery.Document) *shared.MainCharacterObservation {
	entry := doc.Find("div.accountEntry").First()
	if entry.Length() == 0 {
		return nil
	}
	avatarURL, _ := entry.Find("img.avatar").Attr("src")
	mainID, _ := ParseAvatarURL(avatarURL)
	obs := &shared.MainCharacterObservation{
		MainCharacterID: mainID,
		MainNickname:    strings.TrimSpace(entry.Find("span.name").Text()),
		HouseName:       strings.TrimSpace(entry.Find("span.houseName").Text()),
	}
	if acc, ok := entry.Find("span.account").Attr("data-account-id"); ok {
		if id, err := strconv.ParseInt(acc, 10, 64); err == nil {
			obs.AccountID = id
		}
	}
	if date := parseDotDate(entry.Find("span.starHouseDate").Text()); date > 0 {
		obs.StarHouseDate = &date
	}
	return obs
}
