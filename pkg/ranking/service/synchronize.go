package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/logging"
	"github.com/rheyna/duncord/pkg/ranking"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

// SyncService drives one harvest pass: locate the ranking frontier per
// category, walk the pages past the stored resume point, and persist each
// party atomically with its members reconciled. Every run carries a uuid run
// id so the persisted logs of one pass can be correlated.
type SyncService struct {
	store   ranking.IdentityStore
	states  ranking.SyncStateStore
	fetcher ranking.PageFetcher
	locator *FrontierLocator
	linkage LinkageConfig
	logger  logging.Logger

	categories []int
}

func NewSyncService(store ranking.IdentityStore, states ranking.SyncStateStore, fetcher ranking.PageFetcher, categories []int, linkage LinkageConfig, logger logging.Logger) *SyncService {
	return &SyncService{
		store:      store,
		states:     states,
		fetcher:    fetcher,
		locator:    NewFrontierLocator(fetcher, logger),
		linkage:    linkage,
		logger:     logger,
		categories: categories,
	}
}

// Categories returns the configured category ids, in harvest order.
func (s *SyncService) Categories() []int {
	out := make([]int, len(s.categories))
	copy(out, s.categories)
	return out
}

// SyncAll harvests every configured category. A category whose dungeon does
// not exist (rotated out or misconfigured) is skipped with a warning; any
// other failure is logged and the remaining categories still run, with the
// joined errors returned at the end.
func (s *SyncService) SyncAll() error {
	var errs []error
	for _, categoryID := range s.categories {
		if err := s.SyncCategory(categoryID); err != nil {
			var dnf *ranking.DungeonNotFoundError
			if errors.As(err, &dnf) {
				s.logger.Warn("Skipping unknown dungeon category", map[string]interface{}{
					"category_id": categoryID,
				})
				continue
			}
			s.logger.Error("Category sync failed", err, map[string]interface{}{
				"category_id": categoryID,
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SyncCategory harvests one category from its resume point up to the current
// frontier. The frontier page itself is only marked done when it is full, so
// a still-filling page gets re-scanned on the next run; parties already
// stored are skipped, which keeps the re-scan cheap.
func (s *SyncService) SyncCategory(categoryID int) error {
	runID := uuid.New().String()
	log := s.logger.WithRun(runID)
	asOf := shared.YearMonth(time.Now())

	last, err := s.states.LastPage(categoryID)
	if err != nil {
		return err
	}
	frontier, err := s.locator.FindFrontier(categoryID)
	if err != nil {
		return err
	}
	if frontier <= last {
		log.Info("Category already up to date", map[string]interface{}{
			"category_id": categoryID,
			"last_page":   last,
		})
		return nil
	}

	log.Info("Harvesting category", map[string]interface{}{
		"category_id": categoryID,
		"from_page":   last + 1,
		"to_page":     frontier,
	})

	for page := last + 1; page <= frontier; page++ {
		parties, err := s.fetcher.FetchClearsByDate(categoryID, page, true)
		if err != nil {
			return err
		}
		for _, party := range parties {
			if err := s.storeParty(categoryID, party, asOf, log); err != nil {
				return err
			}
		}
		done := page
		if page == frontier && len(parties) < fullPageRows {
			done = page - 1
		}
		if done > last {
			if err := s.states.SetLastPage(categoryID, done); err != nil {
				return err
			}
		}
	}

	log.Info("Category harvest complete", map[string]interface{}{
		"category_id": categoryID,
		"frontier":    frontier,
	})
	return nil
}

// storeParty reconciles every roster member and writes the clear record in
// one transaction. A member that cannot be resolved at all keeps the 0
// placeholder in its slot; a failing lookup aborts the whole party so a
// partial roster is never persisted.
func (s *SyncService) storeParty(categoryID int, party shared.PartyRecord, asOf int, log logging.Logger) error {
	existing, err := s.store.FindClearRecord(party.PartyID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	return s.store.Atomically(func(tx ranking.IdentityStore) error {
		reconciler := NewReconciler(tx, s.fetcher, s.linkage, log)
		record := &models.ClearRecord{
			PartyID:     party.PartyID,
			CategoryID:  categoryID,
			Rank:        party.Rank,
			ClearTime:   party.ClearTime,
			ClearDate:   party.ClearDate,
			MemberCount: len(party.Members),
			CreatedAt:   time.Now(),
		}
		members := make([]int64, 0, len(party.Members))
		for _, m := range party.Members {
			id, err := reconciler.Reconcile(categoryID, shared.Observation{
				Nickname: m.Nickname,
				Job:      m.Job,
				Level:    m.Level,
			}, asOf)
			if err != nil {
				return err
			}
			members = append(members, id)
			if m.Nickname == party.Leader {
				record.LeaderID = id
			}
		}
		record.SetMembers(members)
		return tx.InsertClearRecord(record)
	})
}
