package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rheyna/duncord/pkg/logging"
	"github.com/rheyna/duncord/pkg/ranking"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	defaultTimeout   = 45 * time.Second

	// One request lane with a fixed gap measured from the previous
	// response. Courtesy toward the ranking site, not a performance knob.
	defaultCooldown = 50 * time.Millisecond

	defaultMaxAttempts = 15
	defaultBackoff     = 2 * time.Second

	// Snippet size persisted with retry-exhaustion diagnostics.
	bodySnippetLimit = 500
)

// Expected page title markers, one per endpoint. A mismatch means the site
// changed layout or redirected the request.
const (
	titleClearsByDate  = "Dungeon Clear Ranking"
	titleClearRate     = "Clear Rate Ranking"
	titleTrophy        = "Trophy Ranking"
	titleMainCharacter = "Main Character Ranking"
)

// RetryPolicy bounds how often a request is reissued on a non-2xx response
// before giving up with an InternalServerError.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// ClientConfig configures a ranking Client. Zero values fall back to the
// production defaults.
type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	Retry      RetryPolicy
	Cooldown   time.Duration
	HTTPClient *http.Client
}

// Client fetches and parses the four leaderboard endpoints. All requests of
// one instance share a single cooldown lane; separate instances (tests, other
// processes) do not interfere with each other.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retry      RetryPolicy
	lane       *cooldownLane
	logger     logging.Logger
}

var _ ranking.PageFetcher = (*Client)(nil)

// NewClient creates a ranking client with production defaults.
func NewClient(baseURL string, logger logging.Logger) *Client {
	return NewClientWithConfig(ClientConfig{BaseURL: baseURL}, logger)
}

// NewClientWithConfig creates a ranking client with explicit knobs.
func NewClientWithConfig(cfg ClientConfig, logger logging.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Retry.Backoff <= 0 {
		cfg.Retry.Backoff = defaultBackoff
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		retry:      cfg.Retry,
		lane:       &cooldownLane{interval: cfg.Cooldown},
		logger:     logger,
	}
}

// FetchClearsByDate returns the ranked parties of one clears-by-date page.
func (c *Client) FetchClearsByDate(categoryID, page int, detailed bool) ([]shared.PartyRecord, error) {
	pageURL := fmt.Sprintf("%s/ranking/dungeon?categoryId=%d&page=%d", c.baseURL, categoryID, page)
	doc, err := c.getDocument(pageURL, titleClearsByDate)
	if err != nil {
		return nil, err
	}
	if doc.Find("div.unknownCategory").Length() > 0 {
		return nil, &ranking.DungeonNotFoundError{CategoryID: categoryID}
	}
	if doc.Find("div.noData").Length() > 0 {
		// A valid page past the frontier; distinct from an unknown category.
		return []shared.PartyRecord{}, nil
	}

	parties := parsePartyRows(doc)
	if !detailed {
		return parties, nil
	}
	for i := range parties {
		members, err := c.fetchPartyMembers(parties[i].RawPartyID)
		if err != nil {
			return nil, err
		}
		parties[i].Members = members
	}
	return parties, nil
}

// fetchPartyMembers resolves the full roster of one party.
func (c *Client) fetchPartyMembers(rawPartyID string) ([]shared.MemberRecord, error) {
	pageURL := fmt.Sprintf("%s/ranking/dungeon/party?partyId=%s", c.baseURL, url.QueryEscape(rawPartyID))
	doc, err := c.getDocument(pageURL, titleClearsByDate)
	if err != nil {
		return nil, err
	}
	return parsePartyMembers(doc), nil
}

// FetchClearRate searches the clear rate ranking of a category for a
// nickname. The pages keep entries for renamed and deleted characters, which
// is what makes this the lost-character fallback.
func (c *Client) FetchClearRate(categoryID int, nickname string) ([]shared.RankedObservation, error) {
	pageURL := fmt.Sprintf("%s/ranking/clearrate?categoryId=%d&nickname=%s",
		c.baseURL, categoryID, url.QueryEscape(nickname))
	doc, err := c.getDocument(pageURL, titleClearRate)
	if err != nil {
		return nil, err
	}
	if doc.Find("div.noData").Length() > 0 {
		return nil, &ranking.CharacterNotFoundError{Nickname: nickname, URL: pageURL}
	}
	return parseClearRateRows(doc), nil
}

// FetchTrophyCount resolves a nickname to its authoritative character id and
// trophy count.
func (c *Client) FetchTrophyCount(nickname string) (*shared.TrophyObservation, error) {
	pageURL := fmt.Sprintf("%s/ranking/trophy?nickname=%s", c.baseURL, url.QueryEscape(nickname))
	doc, err := c.getDocument(pageURL, titleTrophy)
	if err != nil {
		return nil, err
	}
	entry := parseTrophyEntry(doc)
	if doc.Find("div.noData").Length() > 0 || entry == nil {
		return nil, &ranking.CharacterNotFoundError{Nickname: nickname, URL: pageURL}
	}
	return entry, nil
}

// FetchMainCharacter runs the account linkage lookup for a nickname in a
// given YYYYMM month. Months outside the site's answerable window are a
// caller error, not a retry case.
func (c *Client) FetchMainCharacter(nickname string, yearMonth int) (*shared.MainCharacterObservation, error) {
	if !shared.ValidYearMonth(yearMonth, time.Now()) {
		return nil, &ranking.InvalidParameterError{Param: "yearMonth", Value: yearMonth}
	}
	pageURL := fmt.Sprintf("%s/ranking/mainCharacter?nickname=%s&ym=%d",
		c.baseURL, url.QueryEscape(nickname), yearMonth)
	doc, err := c.getDocument(pageURL, titleMainCharacter)
	if err != nil {
		return nil, err
	}
	entry := parseMainCharacterEntry(doc)
	if doc.Find("div.noData").Length() > 0 || entry == nil {
		return nil, &ranking.CharacterNotFoundError{Nickname: nickname, URL: pageURL}
	}
	return entry, nil
}

// fetchOutcome enumerates what one request attempt produced, keeping the
// retry schedule an explicit loop instead of error-unwinding control flow.
type fetchOutcome int

const (
	outcomeOK fetchOutcome = iota
	outcomeRetry
	outcomeFatal
)

// getDocument fetches a page through the cooldown lane, retrying bounded
// times on transient failures, and validates the title marker before
// handing the parsed document back.
func (c *Client) getDocument(pageURL, wantTitle string) (*goquery.Document, error) {
	var lastStatus int
	var lastBody string

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		doc, outcome, err := c.attempt(pageURL, wantTitle, &lastStatus, &lastBody)
		switch outcome {
		case outcomeOK:
			return doc, nil
		case outcomeFatal:
			return nil, err
		}

		c.logger.Warn("Ranking request failed, retrying", map[string]interface{}{
			"url":         pageURL,
			"attempt":     attempt,
			"max":         c.retry.MaxAttempts,
			"status_code": lastStatus,
		})
		if attempt < c.retry.MaxAttempts {
			time.Sleep(c.retry.Backoff)
		}
	}

	err := &ranking.InternalServerError{StatusCode: lastStatus, URL: pageURL, Body: lastBody}
	c.logger.Error("Ranking request retries exhausted", err, map[string]interface{}{
		"url":          pageURL,
		"status_code":  lastStatus,
		"body_snippet": lastBody,
	})
	return nil, err
}

// attempt performs a single GET through the cooldown lane.
func (c *Client) attempt(pageURL, wantTitle string, lastStatus *int, lastBody *string) (*goquery.Document, fetchOutcome, error) {
	c.lane.acquire()
	defer c.lane.release()

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, outcomeFatal, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		*lastStatus = 0
		*lastBody = err.Error()
		return nil, outcomeRetry, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		*lastStatus = resp.StatusCode
		*lastBody = err.Error()
		return nil, outcomeRetry, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		*lastStatus = resp.StatusCode
		*lastBody = snippet(string(body))
		return nil, outcomeRetry, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		*lastStatus = resp.StatusCode
		*lastBody = snippet(string(body))
		return nil, outcomeRetry, nil
	}

	gotTitle := strings.TrimSpace(doc.Find("h2.rankingTitle").First().Text())
	if gotTitle != wantTitle {
		werr := &ranking.WrongPageError{URL: pageURL, WantTitle: wantTitle, GotTitle: gotTitle}
		c.logger.Error("Ranking page title mismatch, halting", werr, map[string]interface{}{
			"url":          pageURL,
			"body_snippet": snippet(string(body)),
		})
		return nil, outcomeFatal, werr
	}

	return doc, outcomeOK, nil
}

func snippet(body string) string {
	if len(body) > bodySnippetLimit {
		return body[:bodySnippetLimit]
	}
	return body
}

// cooldownLane serializes requests and enforces the fixed interval measured
// from the previous response. Owned by the client instance; a module-level
// timestamp would couple unrelated fetchers.
type cooldownLane struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (l *cooldownLane) acquire() {
	l.mu.Lock()
	if l.last.IsZero() {
		return
	}
	if wait := l.interval - time.Since(l.last); wait > 0 {
		time.Sleep(wait)
	}
}

func (l *cooldownLane) release() {
	l.last = time.Now()
	l.mu.Unlock()
}
