package domain

import (
	"fmt"
	"time"
)

// TimeControlClass is the closed set of game speeds we track.
// Archives also carry "daily" correspondence games; those are ignored.
type TimeControlClass string

const (
	ClassRapid  TimeControlClass = "rapid"
	ClassBlitz  TimeControlClass = "blitz"
	ClassBullet TimeControlClass = "bullet"
)

// Classes returns the tracked classes in display order.
func Classes() []TimeControlClass {
	return []TimeControlClass{ClassRapid, ClassBlitz, ClassBullet}
}

func ParseTimeControlClass(s string) (TimeControlClass, bool) {
	switch TimeControlClass(s) {
	case ClassRapid, ClassBlitz, ClassBullet:
		return TimeControlClass(s), true
	}
	return "", false
}

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return PeriodType(s), nil
	}
	return "", fmt.Errorf("unknown period type %q", s)
}

// Period is a UTC time window with inclusive bounds.
type Period struct {
	Type  PeriodType
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// MonthBucket identifies one calendar month of archived games.
// Comparable, so it can key a map for exactly-once fetch semantics.
type MonthBucket struct {
	Year  int
	Month time.Month
}

func BucketOf(t time.Time) MonthBucket {
	t = t.UTC()
	return MonthBucket{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding calendar month, rolling January back to
// December of the prior year.
func (b MonthBucket) Prev() MonthBucket {
	if b.Month == time.January {
		return MonthBucket{Year: b.Year - 1, Month: time.December}
	}
	return MonthBucket{Year: b.Year, Month: b.Month - 1}
}

func (b MonthBucket) Before(other MonthBucket) bool {
	if b.Year != other.Year {
		return b.Year < other.Year
	}
	return b.Month < other.Month
}

func (b MonthBucket) After(other MonthBucket) bool {
	return other.Before(b)
}

func (b MonthBucket) String() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}

// GameRecord is one finished game as reported by the archive source.
type GameRecord struct {
	EndTime       time.Time
	TimeClass     TimeControlClass
	WhiteUsername string
	WhiteRating   int
	BlackUsername string
	BlackRating   int
	PGN           string
}

// ClassStats holds the per-class slice of an aggregation. Nil ratings
// mean the class had no usable game for that bound.
type ClassStats struct {
	Count       int
	StartRating *int
	EndRating   *int
}

// RatingChange returns end minus start when both bounds are known.
func (s ClassStats) RatingChange() *int {
	if s.StartRating == nil || s.EndRating == nil {
		return nil
	}
	d := *s.EndRating - *s.StartRating
	return &d
}

// AggregateResult is the request-scoped outcome of one stats computation.
// It is never persisted; callers format it and drop it.
type AggregateResult struct {
	Username      string
	Period        Period
	PerClass      map[TimeControlClass]ClassStats
	GamesInPeriod []GameRecord
}

// TotalGames sums in-period games across the tracked classes.
func (r *AggregateResult) TotalGames() int {
	return len(r.GamesInPeriod)
}

// Player is a tracked chess.com account in the local registry.
type Player struct {
	ID          string
	Username    string
	Name        string
	Title       string
	Country     string
	AvatarURL   string
	Followers   int
	JoinedAt    time.Time
	LastFetchAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
