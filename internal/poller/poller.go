// Package poller owns the background sampling loop: a single scheduler
// goroutine that wakes on wall-clock-aligned boundaries and runs one
// poll cycle at a time against the statistics provider.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"viewtrack/internal/config"
	dbpkg "viewtrack/internal/db"
	"viewtrack/internal/source"
)

// Poller drives poll cycles on a fixed schedule. One Poller runs one
// loop; cycles never overlap because the loop executes them
// synchronously.
type Poller struct {
	db  *gorm.DB
	src source.Source

	loc       *time.Location
	interval  time.Duration
	cooldown  time.Duration
	chunkSize int
}

func New(db *gorm.DB, src source.Source, cfg *config.Config) *Poller {
	return &Poller{
		db:        db,
		src:       src,
		loc:       cfg.Location,
		interval:  cfg.PollInterval,
		cooldown:  cfg.PollCooldown,
		chunkSize: cfg.FetchChunkSize,
	}
}

// Run executes the scheduling loop until ctx is cancelled. A failed
// cycle is logged and followed by a cooldown, never a crash. If a cycle
// outlives its period the overdue boundary fires immediately and the
// loop re-aligns to the wall-clock grid afterwards.
func (p *Poller) Run(ctx context.Context) {
	next := nextBoundary(time.Now().In(p.loc), p.interval)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	log.Printf("poller started, first cycle at %s", next.Format("15:04:05"))

	for {
		select {
		case <-ctx.Done():
			log.Printf("poller stopped: %v", ctx.Err())
			return
		case <-timer.C:
		}

		if err := p.RunCycle(ctx); err != nil {
			cyclesTotal.WithLabelValues("error").Inc()
			log.Printf("poll cycle error: %v", err)
			select {
			case <-ctx.Done():
				log.Printf("poller stopped: %v", ctx.Err())
				return
			case <-time.After(p.cooldown):
			}
		} else {
			cyclesTotal.WithLabelValues("ok").Inc()
		}

		next = advance(next, time.Now().In(p.loc), p.interval)
		timer.Reset(time.Until(next))
	}
}

// advance returns when the next cycle should run, given that the cycle
// scheduled at prev has just finished at now. Normally that is the next
// aligned boundary; when the cycle (or its cooldown) overran past the
// boundary it owed, the overdue cycle runs immediately and the pass
// after it lands back on the grid.
func advance(prev, now time.Time, period time.Duration) time.Time {
	if prev.Add(period).After(now) {
		return nextBoundary(now, period)
	}
	return now
}

// RunCycle performs one fetch-and-store pass: collect the IDs to
// sample, fetch their current counters in chunks, and append one sample
// per resolved ID. Every sample in the cycle carries the same
// second-truncated timestamp, which is what makes same-instant
// comparison lookups meaningful.
func (p *Poller) RunCycle(ctx context.Context) error {
	videos, err := dbpkg.TrackedVideos(p.db)
	if err != nil {
		return fmt.Errorf("list tracked videos: %w", err)
	}

	ids := cycleIDs(videos)
	if len(ids) == 0 {
		log.Printf("no tracked videos, skipping cycle")
		return nil
	}

	stats := make(map[string]source.Snapshot, len(ids))
	for _, chunk := range chunkIDs(ids, p.chunkSize) {
		m, err := p.src.Fetch(ctx, chunk)
		if err != nil {
			fetchErrors.Inc()
			return fmt.Errorf("fetch statistics: %w", err)
		}
		for id, snap := range m {
			stats[id] = snap
		}
	}

	now := time.Now().In(p.loc).Truncate(time.Second)
	date := now.Format("2006-01-02")

	var errs []error
	for _, id := range ids {
		snap, ok := stats[id]
		if !ok {
			skippedVideos.Inc()
			log.Printf("no statistics for video %s, skipping", id)
			continue
		}
		s := &dbpkg.Sample{
			VideoID:   id,
			Date:      date,
			Timestamp: now,
			Views:     int64(snap.Views),
			Likes:     int64(snap.Likes),
		}
		if len(snap.Extra) > 0 {
			s.Extra = datatypes.JSONMap(snap.Extra)
		}
		if err := dbpkg.InsertSample(p.db, s); err != nil {
			errs = append(errs, fmt.Errorf("store sample for %s: %w", id, err))
			continue
		}
		samplesWritten.Inc()
	}
	return errors.Join(errs...)
}

// cycleIDs collects the IDs a cycle must sample: every tracked video
// plus its comparison partner, deduplicated while keeping first-seen
// order. Comparison partners are sampled even when they are not tracked
// themselves, otherwise the ratio denominator would have no same-instant
// sample.
func cycleIDs(videos []dbpkg.Video) []string {
	seen := make(map[string]bool, len(videos))
	ids := make([]string, 0, len(videos))
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, v := range videos {
		add(v.VideoID)
	}
	for _, v := range videos {
		if v.ComparisonVideoID != nil {
			add(*v.ComparisonVideoID)
		}
	}
	return ids
}

// chunkIDs splits ids into provider-sized batches.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}

// nextBoundary returns the first wall-clock instant strictly after now
// that is aligned to period within the hour (:00, :05, :10 for five
// minutes). An instant exactly on a boundary schedules the following
// one, never an immediate re-fire. The period must divide the hour
// evenly (config.Load enforces this for the minute setting); a period
// that does not would re-anchor the grid at every hour rollover.
func nextBoundary(now time.Time, period time.Duration) time.Time {
	elapsed := time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second +
		time.Duration(now.Nanosecond())
	rem := period - elapsed%period
	return now.Add(rem)
}
