package service

import (
	"github.com/rheyna/duncord/pkg/logging"
	"github.com/rheyna/duncord/pkg/ranking"
)

// fullPageRows is how many parties a fully populated ranking page holds.
// Partial pages (1-9 rows) only occur at the true frontier.
const fullPageRows = 10

// FrontierLocator finds the newest populated page of a category's clears by
// date ranking without walking it linearly. The leaderboard can span
// thousands of pages and every request pays the fetch cooldown, so the
// locator probes exponentially and then binary-searches the candidate range,
// costing O(log n) row-count fetches.
type FrontierLocator struct {
	fetcher ranking.PageFetcher
	logger  logging.Logger
}

func NewFrontierLocator(fetcher ranking.PageFetcher, logger logging.Logger) *FrontierLocator {
	return &FrontierLocator{fetcher: fetcher, logger: logger}
}

// FindFrontier returns the highest page of a category that still holds rows,
// 0 when the ranking is empty. Row counts come from undetailed fetches; the
// locator never pays for member rosters.
func (l *FrontierLocator) FindFrontier(categoryID int) (int, error) {
	probe := 1
	lastFull := 0

	// Double the probe until a page stops being full.
	for {
		n, err := l.pageRows(categoryID, probe)
		if err != nil {
			return 0, err
		}
		if n == fullPageRows {
			lastFull = probe
			probe *= 2
			continue
		}
		if n > 0 {
			// A partial page is the frontier by definition.
			return l.confirm(categoryID, probe)
		}
		break
	}

	if lastFull == 0 {
		// Page 1 was already empty.
		return 0, nil
	}

	// The frontier sits in (lastFull, probe): lastFull is full, probe is
	// empty. Narrow by midpoint row counts.
	lo, hi := lastFull, probe
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		n, err := l.pageRows(categoryID, mid)
		if err != nil {
			return 0, err
		}
		switch {
		case n == fullPageRows:
			lo = mid
		case n > 0:
			return l.confirm(categoryID, mid)
		default:
			hi = mid
		}
	}
	return l.confirm(categoryID, lo)
}

// confirm probes one page past the computed frontier: a row can appear there
// between the probing pass and the resolution.
func (l *FrontierLocator) confirm(categoryID, frontier int) (int, error) {
	n, err := l.pageRows(categoryID, frontier+1)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		frontier++
	}
	l.logger.Debug("Frontier located", map[string]interface{}{
		"category_id": categoryID,
		"page":        frontier,
	})
	return frontier, nil
}

func (l *FrontierLocator) pageRows(categoryID, page int) (int, error) {
	parties, err := l.fetcher.FetchClearsByDate(categoryID, page, false)
	if err != nil {
		return 0, err
	}
	return len(parties), nil
}
