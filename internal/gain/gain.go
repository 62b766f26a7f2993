// Package gain derives per-sample metrics from a video's date-scoped
// sample series. It is read-side only and never touches the store:
// callers hand it the range reads (one per video and date) and every
// lookup runs in memory.
package gain

import (
	"math"
	"sort"
	"time"

	dbpkg "viewtrack/internal/db"
)

// Window is how far back the trailing gain looks for its baseline.
const Window = time.Hour

// Point is one sample together with its derived metrics. Gains are
// date-scoped: a new calendar day always starts back at zero, even when
// the previous day's last sample is seconds away on the wall clock.
type Point struct {
	Timestamp time.Time
	Views     int64
	Likes     int64

	// ViewGain and LikeGain are deltas against the previous sample of
	// the same date; 0 on the first sample of a day.
	ViewGain int64
	LikeGain int64

	// HourlyViewGain and HourlyLikeGain are deltas against the latest
	// same-date sample at least Window earlier; 0 when none exists.
	HourlyViewGain int64
	HourlyLikeGain int64

	// ViewLikeRatio is Views/Likes rounded to 2 decimals, 0 when the
	// video has no likes.
	ViewLikeRatio float64

	// ComparisonRatio is HourlyViewGain over the paired video's hourly
	// view delta at the same instant, rounded to 2 decimals. Nil when
	// the pair has no sample at exactly this timestamp, no baseline an
	// hour back, or a zero denominator. Absence is normal, not an
	// error: it just means the pair drifted out of sync.
	ComparisonRatio *float64
}

// Compute derives metrics for rows, a single video's samples in
// ascending timestamp order (normally one date's range read, but
// date-grouped multi-day input is handled). compRows is the paired
// comparison video's samples, also ascending, scoped per date the same
// way; pass nil when the video has no pair. No computation ever
// consults a sample later than the one being processed.
func Compute(rows []dbpkg.Sample, compRows []dbpkg.Sample) []Point {
	points := make([]Point, 0, len(rows))
	dayStart := 0
	var compDay []dbpkg.Sample
	for i, r := range rows {
		p := Point{
			Timestamp:     r.Timestamp,
			Views:         r.Views,
			Likes:         r.Likes,
			ViewLikeRatio: viewLikeRatio(r.Views, r.Likes),
		}

		// Gains never bridge a date boundary, so every search below is
		// confined to the current day's rows.
		if i == 0 || rows[i-1].Date != r.Date {
			dayStart = i
			compDay = sameDate(compRows, r.Date)
		}

		if i > dayStart {
			p.ViewGain = r.Views - rows[i-1].Views
			p.LikeGain = r.Likes - rows[i-1].Likes
		}

		cutoff := r.Timestamp.Add(-Window)
		if base := latestAtOrBefore(rows[dayStart:i+1], cutoff); base != nil {
			p.HourlyViewGain = r.Views - base.Views
			p.HourlyLikeGain = r.Likes - base.Likes
		}

		if len(compDay) > 0 {
			compBase := latestAtOrBefore(compDay, cutoff)
			compCurrent := exactAt(compDay, r.Timestamp)
			if compBase != nil && compCurrent != nil {
				if denom := compCurrent.Views - compBase.Views; denom != 0 {
					ratio := round2(float64(p.HourlyViewGain) / float64(denom))
					p.ComparisonRatio = &ratio
				}
			}
		}

		points = append(points, p)
	}
	return points
}

// TotalViewGain sums the intra-day view gains of points, i.e. the views
// accumulated over the day across the sampled intervals.
func TotalViewGain(points []Point) int64 {
	var total int64
	for _, p := range points {
		total += p.ViewGain
	}
	return total
}

// sameDate returns the subslice of rows on date. Ascending timestamps
// keep dates grouped and in order, so both bounds binary-search.
func sameDate(rows []dbpkg.Sample, date string) []dbpkg.Sample {
	lo := sort.Search(len(rows), func(i int) bool { return rows[i].Date >= date })
	hi := lo + sort.Search(len(rows)-lo, func(i int) bool { return rows[lo+i].Date > date })
	return rows[lo:hi]
}

// latestAtOrBefore returns the last sample with Timestamp <= ts, or nil.
// rows must be ascending by timestamp.
func latestAtOrBefore(rows []dbpkg.Sample, ts time.Time) *dbpkg.Sample {
	idx := sort.Search(len(rows), func(i int) bool {
		return rows[i].Timestamp.After(ts)
	})
	if idx == 0 {
		return nil
	}
	return &rows[idx-1]
}

// exactAt returns the sample at exactly ts, or nil. rows must be
// ascending by timestamp.
func exactAt(rows []dbpkg.Sample, ts time.Time) *dbpkg.Sample {
	idx := sort.Search(len(rows), func(i int) bool {
		return !rows[i].Timestamp.Before(ts)
	})
	if idx < len(rows) && rows[idx].Timestamp.Equal(ts) {
		return &rows[idx]
	}
	return nil
}

func viewLikeRatio(views, likes int64) float64 {
	if likes == 0 {
		return 0
	}
	return round2(float64(views) / float64(likes))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
