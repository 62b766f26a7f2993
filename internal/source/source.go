// Package source abstracts the external statistics provider the poller
// samples from.
package source

import "context"

// Snapshot is one video's current counters as reported by the provider.
type Snapshot struct {
	Views uint64
	Likes uint64

	// Extra carries any further counters the provider reports
	// (commentCount, favoriteCount, ...), parsed opportunistically.
	Extra map[string]any
}

// Source fetches current statistics for a batch of video IDs. IDs the
// provider cannot resolve are simply absent from the result; only a
// failed call itself is an error. Result ordering is unspecified.
type Source interface {
	Fetch(ctx context.Context, ids []string) (map[string]Snapshot, error)
}
