package service

import (
	"errors"
	"time"

	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/logging"
	"github.com/rheyna/duncord/pkg/ranking"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

// linkageFreshWindow is how long cached account linkage data is trusted
// before a sighting forces a refresh pass.
const linkageFreshWindow = 7 * 24 * time.Hour

// GapRange is one known outage window of the source site's main character
// ranking, probed during linkage discovery after the recent months miss.
// From and To are inclusive YYYYMM bounds with From the newer month. These
// windows are data about the site, not logic, and live in configuration.
type GapRange struct {
	From int
	To   int
}

// LinkageConfig bounds the account linkage month search.
type LinkageConfig struct {
	// RecentMonths is how many months backward from the sighting month are
	// probed before falling back to the gap ranges.
	RecentMonths int
	// SearchBudget caps the total lookup attempts per discovery.
	SearchBudget int
	GapRanges    []GapRange
}

// DefaultLinkageConfig returns the production search bounds.
func DefaultLinkageConfig() LinkageConfig {
	return LinkageConfig{
		RecentMonths: 12,
		SearchBudget: 24,
		GapRanges: []GapRange{
			{From: 201703, To: 201611},
			{From: 201301, To: 201203},
		},
	}
}

// searchMonths lists the months to probe for a sighting month, newest first,
// deduplicated and capped by the search budget.
func (c LinkageConfig) searchMonths(asOf int) []int {
	seen := make(map[int]bool)
	var months []int
	add := func(ym int) {
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	for _, ym := range shared.MonthsBackward(asOf, shared.ServiceLaunchMonth, c.RecentMonths) {
		add(ym)
	}
	for _, g := range c.GapRanges {
		for _, ym := range shared.MonthsBackward(g.From, g.To, 600) {
			add(ym)
		}
	}
	if c.SearchBudget > 0 && len(months) > c.SearchBudget {
		months = months[:c.SearchBudget]
	}
	return months
}

// TieBreaker picks one candidate from an ambiguous lost-character fallback
// result. Candidates are never empty.
type TieBreaker func(obs shared.Observation, candidates []shared.RankedObservation) shared.RankedObservation

// FirstMatchTieBreaker prefers the candidate whose job and level both match
// the observation and otherwise takes the first result. When job and level
// both mismatch there is no verified winner; first-result is a heuristic
// carried over from the site's result ordering.
func FirstMatchTieBreaker(obs shared.Observation, candidates []shared.RankedObservation) shared.RankedObservation {
	for _, c := range candidates {
		if c.Job == obs.Job && c.Level == obs.Level {
			return c
		}
	}
	return candidates[0]
}

// Reconciler maps one scraped (nickname, job, level) observation at a time
// onto the identity graph. The site exposes no stable id beyond a
// rank-dependent nickname lookup, so each sighting is classified as a fresh
// match, a rename or drift, a first sighting needing linkage discovery, or a
// lost character recovered through the clear rate fallback.
//
// A reconciler is built per party transaction: its store handle is the
// transaction-scoped one, so a failed member aborts the whole party.
type Reconciler struct {
	store    ranking.IdentityStore
	fetcher  ranking.PageFetcher
	linkage  LinkageConfig
	tieBreak TieBreaker
	logger   logging.Logger
}

func NewReconciler(store ranking.IdentityStore, fetcher ranking.PageFetcher, linkage LinkageConfig, logger logging.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		fetcher:  fetcher,
		linkage:  linkage,
		tieBreak: FirstMatchTieBreaker,
		logger:   logger,
	}
}

// WithTieBreaker swaps the lost-character tie-break policy.
func (r *Reconciler) WithTieBreaker(tb TieBreaker) *Reconciler {
	r.tieBreak = tb
	return r
}

// Reconcile resolves one observation to a character id, updating the
// identity graph on the way. It returns 0 when the character cannot be
// recovered at all; the party record still gets stored with the placeholder.
// Only CharacterNotFound outcomes are absorbed here; network and layout
// failures propagate to the sync driver.
func (r *Reconciler) Reconcile(categoryID int, obs shared.Observation, asOf int) (int64, error) {
	row, err := r.store.FindByNickname(obs.Nickname, false)
	if err != nil {
		return 0, err
	}

	if row != nil {
		if matchesObservation(row, obs) && row.LinkagePopulated() &&
			time.Since(row.LastUpdatedTime) < linkageFreshWindow {
			// Everything already known and fresh; skip the expensive
			// lookups and only touch the watermark.
			err := r.store.Update(row.CharacterID, map[string]interface{}{
				"last_updated_time": time.Now(),
			})
			return row.CharacterID, err
		}

		trophy, err := r.fetcher.FetchTrophyCount(obs.Nickname)
		if err != nil {
			if isCharacterNotFound(err) {
				return r.recoverLost(categoryID, obs)
			}
			return 0, err
		}

		if trophy.CharacterID != row.CharacterID {
			// The nickname now belongs to a different character. Retire
			// the stored row's claim and continue with the new owner.
			err := r.store.Update(row.CharacterID, map[string]interface{}{
				"nickname_obsoleted": models.NicknameRenamedAway,
			})
			if err != nil {
				return 0, err
			}
			r.logger.Info("Nickname reclaimed by another character", map[string]interface{}{
				"nickname": obs.Nickname,
				"old_id":   row.CharacterID,
				"new_id":   trophy.CharacterID,
			})
			return r.adopt(trophy, obs, asOf)
		}

		if trophy.Nickname != row.Nickname {
			if err := r.recordRename(row, trophy.Nickname); err != nil {
				return 0, err
			}
		}
		err = r.store.Update(row.CharacterID, map[string]interface{}{
			"nickname":          trophy.Nickname,
			"job":               stringPtr(obs.Job),
			"level":             levelPtr(obs.Level),
			"trophy":            countPtr(trophy.TrophyCount),
			"last_updated_time": time.Now(),
		})
		if err != nil {
			return 0, err
		}
		if err := r.ensureLinkage(row.CharacterID, asOf); err != nil {
			return 0, err
		}
		return row.CharacterID, nil
	}

	trophy, err := r.fetcher.FetchTrophyCount(obs.Nickname)
	if err != nil {
		if isCharacterNotFound(err) {
			return r.recoverLost(categoryID, obs)
		}
		return 0, err
	}
	return r.adopt(trophy, obs, asOf)
}

// adopt binds an authoritative trophy lookup result to the identity graph:
// either a known id resurfacing under a new (or reclaimed) nickname, or a
// genuinely new character needing account linkage discovery.
func (r *Reconciler) adopt(trophy *shared.TrophyObservation, obs shared.Observation, asOf int) (int64, error) {
	existing, err := r.store.FindByID(trophy.CharacterID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if existing.Nickname != trophy.Nickname {
			if err := r.recordRename(existing, trophy.Nickname); err != nil {
				return 0, err
			}
		}
		err := r.store.Update(existing.CharacterID, map[string]interface{}{
			"nickname":           trophy.Nickname,
			"job":                stringPtr(obs.Job),
			"level":              levelPtr(obs.Level),
			"trophy":             countPtr(trophy.TrophyCount),
			"nickname_obsoleted": models.NicknameLive,
			"last_updated_time":  time.Now(),
		})
		if err != nil {
			return 0, err
		}
		if err := r.ensureLinkage(existing.CharacterID, asOf); err != nil {
			return 0, err
		}
		return existing.CharacterID, nil
	}

	link, err := r.discoverLinkage(trophy.Nickname, asOf)
	if err != nil {
		return 0, err
	}

	identity := &models.CharacterIdentity{
		CharacterID:     trophy.CharacterID,
		Nickname:        trophy.Nickname,
		Job:             stringPtr(obs.Job),
		Level:           levelPtr(obs.Level),
		Trophy:          countPtr(trophy.TrophyCount),
		HouseQueryDate:  &asOf,
		LastUpdatedTime: time.Now(),
	}
	applyLinkage(identity, link)
	if err := r.store.Insert(identity); err != nil {
		return 0, err
	}

	if link != nil && link.MainCharacterID != trophy.CharacterID {
		if err := r.ensureMainStub(link); err != nil {
			return 0, err
		}
	}
	return trophy.CharacterID, nil
}

// recoverLost handles a nickname whose direct lookup fails: search the clear
// rate ranking of the current category for historical entries and take the
// best candidate. When even that fails the member slot stays a 0
// placeholder; the party is stored regardless.
func (r *Reconciler) recoverLost(categoryID int, obs shared.Observation) (int64, error) {
	candidates, err := r.fetcher.FetchClearRate(categoryID, obs.Nickname)
	if err != nil {
		if isCharacterNotFound(err) {
			r.logger.Warn("Lost character unrecoverable, storing placeholder", map[string]interface{}{
				"nickname":    obs.Nickname,
				"category_id": categoryID,
			})
			return 0, nil
		}
		return 0, err
	}

	usable := candidates[:0:0]
	for _, c := range candidates {
		if c.CharacterID > 0 {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		r.logger.Warn("Lost character fallback returned no usable ids", map[string]interface{}{
			"nickname":    obs.Nickname,
			"category_id": categoryID,
		})
		return 0, nil
	}

	pick := r.tieBreak(obs, usable)
	row, err := r.store.FindByID(pick.CharacterID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		err := r.store.Insert(&models.CharacterIdentity{
			CharacterID:       pick.CharacterID,
			Nickname:          pick.Nickname,
			Job:               stringPtr(pick.Job),
			Level:             levelPtr(pick.Level),
			NicknameObsoleted: models.NicknameRecovered,
			LastUpdatedTime:   time.Now(),
		})
		if err != nil {
			return 0, err
		}
	} else if row.NicknameObsoleted == models.NicknameLive && row.Nickname == obs.Nickname {
		// Direct lookup no longer resolves this nickname, so the row's
		// claim on it is no longer certain.
		err := r.store.Update(row.CharacterID, map[string]interface{}{
			"nickname_obsoleted": models.NicknameRecovered,
		})
		if err != nil {
			return 0, err
		}
	}
	return pick.CharacterID, nil
}

// ensureLinkage runs account linkage discovery for an identity that is
// missing it, at most once per sighting month.
func (r *Reconciler) ensureLinkage(id int64, asOf int) error {
	row, err := r.store.FindByID(id)
	if err != nil || row == nil {
		return err
	}
	if row.LinkagePopulated() {
		return nil
	}
	if row.HouseQueryDate != nil && *row.HouseQueryDate == asOf {
		// Already searched this month and found nothing.
		return nil
	}

	link, err := r.discoverLinkage(row.Nickname, asOf)
	if err != nil {
		return err
	}
	fields := map[string]interface{}{"house_query_date": asOf}
	if link != nil {
		fields["account_id"] = link.AccountID
		fields["main_character_id"] = link.MainCharacterID
		fields["star_house_date"] = link.StarHouseDate
		if link.HouseName != "" {
			fields["house_name"] = link.HouseName
		}
	}
	if err := r.store.Update(id, fields); err != nil {
		return err
	}
	if link != nil && link.MainCharacterID != id {
		return r.ensureMainStub(link)
	}
	return nil
}

// discoverLinkage probes the main character ranking month by month until a
// hit or the search budget runs out. A nil result without error means the
// nickname never appeared in any probed month.
func (r *Reconciler) discoverLinkage(nickname string, asOf int) (*shared.MainCharacterObservation, error) {
	for _, ym := range r.linkage.searchMonths(asOf) {
		link, err := r.fetcher.FetchMainCharacter(nickname, ym)
		if err != nil {
			if isCharacterNotFound(err) {
				continue
			}
			return nil, err
		}
		r.logger.Debug("Account linkage discovered", map[string]interface{}{
			"nickname":   nickname,
			"year_month": ym,
			"account_id": link.AccountID,
		})
		return link, nil
	}
	return nil, nil
}

// ensureMainStub guarantees the referenced main character has an identity
// row so account fan-outs always resolve. Gameplay attributes stay null
// until the main character is sighted directly.
func (r *Reconciler) ensureMainStub(link *shared.MainCharacterObservation) error {
	existing, err := r.store.FindByID(link.MainCharacterID)
	if err != nil || existing != nil {
		return err
	}
	stub := &models.CharacterIdentity{
		CharacterID:     link.MainCharacterID,
		Nickname:        link.MainNickname,
		LastUpdatedTime: time.Now(),
	}
	applyLinkage(stub, link)
	return r.store.Insert(stub)
}

// recordRename appends to the nickname history, seeding it with the previous
// nickname on the first rename so the full sequence stays reconstructable.
func (r *Reconciler) recordRename(row *models.CharacterIdentity, newName string) error {
	history, err := r.store.NicknameHistory(row.CharacterID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		if err := r.store.AppendNickname(row.CharacterID, row.Nickname); err != nil {
			return err
		}
	} else if history[len(history)-1] == newName {
		return nil
	}
	r.logger.Info("Character renamed", map[string]interface{}{
		"character_id": row.CharacterID,
		"old_nickname": row.Nickname,
		"new_nickname": newName,
	})
	return r.store.AppendNickname(row.CharacterID, newName)
}

// matchesObservation is the deliberately conservative freshness check: any
// single field mismatch forces the refresh path.
func matchesObservation(row *models.CharacterIdentity, obs shared.Observation) bool {
	return row.Nickname == obs.Nickname &&
		row.Job != nil && *row.Job == obs.Job &&
		row.Level != nil && *row.Level == obs.Level
}

func applyLinkage(identity *models.CharacterIdentity, link *shared.MainCharacterObservation) {
	if link == nil {
		return
	}
	identity.AccountID = &link.AccountID
	identity.MainCharacterID = &link.MainCharacterID
	identity.StarHouseDate = link.StarHouseDate
	if link.HouseName != "" {
		identity.HouseName = &link.HouseName
	}
}

func isCharacterNotFound(err error) bool {
	var nf *ranking.CharacterNotFoundError
	return errors.As(err, &nf)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// levelPtr collapses the parser's -1 "unknown" sentinel to null.
func levelPtr(level int) *int {
	if level < 0 {
		return nil
	}
	return &level
}

// countPtr collapses a negative count to null.
func countPtr(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}
