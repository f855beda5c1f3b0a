package period

import (
	"fmt"
	"sort"
	"time"

	"chess-tracker/internal/domain"
)

// Window computes the UTC window for a period type from a reference
// instant. All windows end at the reference day's last second; starts are
// midnight-aligned. Weekly windows start on the most recent Monday.
func Window(t domain.PeriodType, ref time.Time) (domain.Period, error) {
	ref = ref.UTC()
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Second)

	var start time.Time
	switch t {
	case domain.PeriodDaily:
		start = dayStart
	case domain.PeriodWeekly:
		// time.Weekday counts from Sunday; shift so Monday is 0.
		offset := (int(dayStart.Weekday()) + 6) % 7
		start = dayStart.AddDate(0, 0, -offset)
	case domain.PeriodMonthly:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	case domain.PeriodYearly:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return domain.Period{}, fmt.Errorf("unknown period type %q", t)
	}

	return domain.Period{Type: t, Start: start, End: dayEnd}, nil
}

// Resolve computes the month buckets whose archives cover the period,
// plus the month immediately before the period start so the rating on
// entry can be derived even when the period's own month is empty.
// Buckets after now's month are dropped: those archives cannot exist yet.
// The result is deduplicated and chronological.
func Resolve(p domain.Period, now time.Time) []domain.MonthBucket {
	startBucket := domain.BucketOf(p.Start)
	endBucket := domain.BucketOf(p.End)

	required := map[domain.MonthBucket]struct{}{
		startBucket.Prev(): {},
	}

	switch p.Type {
	case domain.PeriodYearly:
		for m := time.January; m <= endBucket.Month; m++ {
			required[domain.MonthBucket{Year: endBucket.Year, Month: m}] = struct{}{}
		}
	default:
		required[startBucket] = struct{}{}
		if p.Type == domain.PeriodWeekly && endBucket != startBucket {
			required[endBucket] = struct{}{}
		}
	}

	nowBucket := domain.BucketOf(now)
	buckets := make([]domain.MonthBucket, 0, len(required))
	for b := range required {
		if b.After(nowBucket) {
			continue
		}
		buckets = append(buckets, b)
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })
	return buckets
}
