package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chess-tracker/internal/domain"
)

// ErrUnattributable marks a game record whose participants match neither
// side for the requested player. Guessing an attribution would corrupt
// the rating deltas, so the whole aggregation fails instead.
var ErrUnattributable = errors.New("game record does not involve the requested player")

// Aggregate computes per-class counts and start/end ratings for the
// player's games inside the period. It is pure: the input slice is not
// mutated and repeated calls yield identical results.
//
// Ratings per class follow the archive order after a global stable sort
// by end time:
//   - start rating comes from the last game strictly before the period,
//     falling back to the first in-period game when no history exists;
//   - end rating comes from the last in-period game, nil when the class
//     saw no games.
func Aggregate(username string, games []domain.GameRecord, p domain.Period) (*domain.AggregateResult, error) {
	sorted := make([]domain.GameRecord, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EndTime.Before(sorted[j].EndTime)
	})

	result := &domain.AggregateResult{
		Username: username,
		Period:   p,
		PerClass: make(map[domain.TimeControlClass]domain.ClassStats, len(domain.Classes())),
	}

	for _, g := range sorted {
		if p.Contains(g.EndTime) {
			result.GamesInPeriod = append(result.GamesInPeriod, g)
		}
	}

	for _, class := range domain.Classes() {
		cs, err := aggregateClass(username, sorted, p, class)
		if err != nil {
			return nil, err
		}
		result.PerClass[class] = cs
	}

	return result, nil
}

func aggregateClass(username string, sorted []domain.GameRecord, p domain.Period, class domain.TimeControlClass) (domain.ClassStats, error) {
	var prior, first, last *domain.GameRecord
	count := 0

	for i := range sorted {
		g := &sorted[i]
		if g.TimeClass != class {
			continue
		}
		switch {
		case g.EndTime.Before(p.Start):
			prior = g
		case g.EndTime.After(p.End):
			// beyond the window, irrelevant to this period
		default:
			if first == nil {
				first = g
			}
			last = g
			count++
		}
	}

	cs := domain.ClassStats{Count: count}

	startRef := prior
	if startRef == nil {
		startRef = first
	}
	if startRef != nil {
		r, err := ratingFor(username, startRef)
		if err != nil {
			return domain.ClassStats{}, err
		}
		cs.StartRating = &r
	}
	if last != nil {
		r, err := ratingFor(username, last)
		if err != nil {
			return domain.ClassStats{}, err
		}
		cs.EndRating = &r
	}

	return cs, nil
}

// ratingFor extracts the player's own rating from a game, matching the
// username against either side case-insensitively.
func ratingFor(username string, g *domain.GameRecord) (int, error) {
	switch {
	case strings.EqualFold(g.WhiteUsername, username):
		return g.WhiteRating, nil
	case strings.EqualFold(g.BlackUsername, username):
		return g.BlackRating, nil
	}
	return 0, fmt.Errorf("%w: %q not in %q vs %q (ended %s)",
		ErrUnattributable, username, g.WhiteUsername, g.BlackUsername,
		g.EndTime.UTC().Format(time.RFC3339))
}
