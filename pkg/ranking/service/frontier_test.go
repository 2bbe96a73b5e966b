package service_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rheyna/duncord/pkg/ranking/service"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

// rankingPages builds a category whose pages 1..frontier-1 are full and
// whose frontier page holds lastRows rows.
func rankingPages(frontier, lastRows int) map[int][]shared.PartyRecord {
	pages := map[int][]shared.PartyRecord{}
	row := func(page, i int) shared.PartyRecord {
		return shared.PartyRecord{
			PartyID: int64(page*100 + i),
			Rank:    (page-1)*10 + i + 1,
			Leader:  fmt.Sprintf("leader-%d-%d", page, i),
		}
	}
	for page := 1; page < frontier; page++ {
		for i := 0; i < 10; i++ {
			pages[page] = append(pages[page], row(page, i))
		}
	}
	for i := 0; i < lastRows; i++ {
		pages[frontier] = append(pages[frontier], row(frontier, i))
	}
	return pages
}

func TestFindFrontier(t *testing.T) {
	tests := []struct {
		name     string
		frontier int
		lastRows int
		want     int
	}{
		{name: "partial frontier page", frontier: 38, lastRows: 4, want: 38},
		{name: "exactly full frontier", frontier: 32, lastRows: 10, want: 32},
		{name: "single partial page", frontier: 1, lastRows: 3, want: 1},
		{name: "single full page", frontier: 1, lastRows: 10, want: 1},
		{name: "deep frontier", frontier: 1371, lastRows: 7, want: 1371},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newFakeFetcher()
			fetcher.pages[1] = rankingPages(tt.frontier, tt.lastRows)

			locator := service.NewFrontierLocator(fetcher, testLogger())
			got, err := locator.FindFrontier(1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindFrontierEmptyRanking(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages[1] = map[int][]shared.PartyRecord{}

	locator := service.NewFrontierLocator(fetcher, testLogger())
	got, err := locator.FindFrontier(1)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestFindFrontierOvershoot(t *testing.T) {
	// Pages 1..33 full plus a fresh row on 34, as if it appeared while the
	// search was running. The confirm probe must pick it up.
	fetcher := newFakeFetcher()
	fetcher.pages[1] = rankingPages(34, 10)
	fetcher.pages[1][34] = fetcher.pages[1][34][:2]

	locator := service.NewFrontierLocator(fetcher, testLogger())
	got, err := locator.FindFrontier(1)
	require.NoError(t, err)
	assert.Equal(t, 34, got)
}

func TestFindFrontierRequestCount(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages[1] = rankingPages(1371, 7)

	locator := service.NewFrontierLocator(fetcher, testLogger())
	_, err := locator.FindFrontier(1)
	require.NoError(t, err)

	// Exponential probe plus binary search: far fewer fetches than pages.
	assert.Less(t, fetcher.pageCalls, 30)
}
