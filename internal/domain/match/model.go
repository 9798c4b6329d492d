package match

import (
	"strconv"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusInPlay    = "IN_PLAY"
	StatusPaused    = "PAUSED"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
	StatusSuspended = "SUSPENDED"
	StatusCancelled = "CANCELLED"
	StatusAwarded   = "AWARDED"
)

// DateLayout is the calendar date format used for lookups and cache keys.
const DateLayout = "2006-01-02"

// Fixture is one upstream match before stream enrichment.
type Fixture struct {
	ExternalID  int64
	HomeTeam    string
	AwayTeam    string
	HomeCrest   string
	AwayCrest   string
	KickoffAt   time.Time
	Status      string
	HomeScore   *int
	AwayScore   *int
	Competition string
}

// Record is a fixture enriched with its stream link. Records are built once per
// fetch and never mutated afterwards.
type Record struct {
	Fixture
	StreamURL string
	HasStream bool
}

func NewRecord(f Fixture, streamURL string, found bool) Record {
	if !found {
		streamURL = ""
	}
	return Record{
		Fixture:   f,
		StreamURL: streamURL,
		HasStream: found && streamURL != "",
	}
}

// Score renders "H-A" with "-" standing in for a missing side.
func (r Record) Score() string {
	return scoreSide(r.HomeScore) + "-" + scoreSide(r.AwayScore)
}

// KickoffClock renders the kickoff as HH:MM in the zone the source reported.
func (r Record) KickoffClock() string {
	if r.KickoffAt.IsZero() {
		return ""
	}
	return r.KickoffAt.Format("15:04")
}

func scoreSide(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// Day groups the records of one calendar date.
type Day struct {
	Date    string
	Matches []Record
}

func NormalizeStatus(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// IsLiveStatus reports whether the fixture is being played right now.
func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusInPlay, StatusPaused, "LIVE":
		return true
	default:
		return false
	}
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}
