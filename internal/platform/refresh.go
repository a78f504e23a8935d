package platform

import (
	"context"
	"sync"

	"github.com/sadopc/cpcdash/internal/activity"
	"github.com/sadopc/cpcdash/internal/dates"
)

// Refresher fetches stats for every configured handle as one batch.
// The combined solved total reaches the activity series through
// RefreshResult.Apply, on the caller's goroutine.
type Refresher struct {
	clients map[string]StatsClient
}

func NewRefresher(clients ...StatsClient) *Refresher {
	r := &Refresher{clients: make(map[string]StatsClient, len(clients))}
	for _, c := range clients {
		r.clients[c.Name()] = c
	}
	return r
}

// DefaultRefresher covers all supported platforms.
func DefaultRefresher() *Refresher {
	return NewRefresher(NewCodeforcesClient(), NewLeetCodeClient(), NewAtCoderClient())
}

// RefreshResult is the settled outcome of one batch refresh.
type RefreshResult struct {
	Stats    []UserStats      // successful fetches, in Names order
	Errors   map[string]error // per-platform failures
	Total    int              // sum of solved counts across successes
	Recorded bool             // whether the series accepted the total
}

// FetchAll fetches stats for every platform in handles concurrently
// and waits for all of them to settle. It performs network reads only
// and never touches the series, so it is safe to run from a background
// goroutine; hand the result to Apply on the goroutine that owns the
// series.
func (r *Refresher) FetchAll(ctx context.Context, handles map[string]string) RefreshResult {
	type settled struct {
		platform string
		stats    *UserStats
		err      error
	}

	var wg sync.WaitGroup
	ch := make(chan settled, len(handles))
	for platform, handle := range handles {
		client, ok := r.clients[platform]
		if !ok || handle == "" {
			continue
		}
		wg.Add(1)
		go func(platform, handle string, client StatsClient) {
			defer wg.Done()
			stats, err := client.FetchUserStats(ctx, handle)
			ch <- settled{platform, stats, err}
		}(platform, handle, client)
	}
	wg.Wait()
	close(ch)

	byPlatform := make(map[string]UserStats)
	result := RefreshResult{Errors: make(map[string]error)}
	for s := range ch {
		if s.err != nil {
			result.Errors[s.platform] = s.err
			continue
		}
		byPlatform[s.platform] = *s.stats
		result.Total += s.stats.SolvedCount
	}
	for _, name := range Names {
		if stats, ok := byPlatform[name]; ok {
			result.Stats = append(result.Stats, stats)
		}
	}

	return result
}

// Apply feeds the batch's summed total into the series as a single
// observation for today and reports whether the ratchet accepted it.
// The series is unsynchronized, so call this from the goroutine that
// owns it. A partial sum from failed platforms is naturally rejected
// by the ratchet when it is lower than what is already recorded.
func (res *RefreshResult) Apply(series *activity.Series, today dates.Day) bool {
	if len(res.Stats) == 0 {
		return false
	}
	res.Recorded = series.RecordObservation(today, res.Total)
	return res.Recorded
}
