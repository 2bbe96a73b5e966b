package models

import (
	"time"

	"github.com/google/uuid"
)

// HarvestLog is a persisted scrape diagnostic. WARN and ERROR entries from
// the harvesting pipeline land here together with the offending URL and a
// snippet of the response body, so layout breakage can be investigated
// without re-hitting the site.
type HarvestLog struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4()"`
	RunID       string    `gorm:"index"`
	Component   string    `gorm:"index;not null"`
	Level       string    `gorm:"index;not null"`
	Message     string    `gorm:"not null"`
	Error       string
	URL         string
	StatusCode  int
	BodySnippet string
	Timestamp   time.Time `gorm:"index"`
}
