package platform

import (
	"context"
	"sort"
	"sync"
)

// FetchAllContests fans out to every client concurrently and merges
// the results sorted by start time. A platform that fails is skipped;
// the call fails only when every platform failed.
func FetchAllContests(ctx context.Context, clients ...ContestClient) ([]Contest, error) {
	type result struct {
		contests []Contest
		err      error
	}
	results := make([]result, len(clients))

	var wg sync.WaitGroup
	for i, client := range clients {
		wg.Add(1)
		go func(i int, client ContestClient) {
			defer wg.Done()
			contests, err := client.FetchContests(ctx)
			results[i] = result{contests, err}
		}(i, client)
	}
	wg.Wait()

	var all []Contest
	failures := 0
	for _, r := range results {
		if r.err != nil {
			failures++
			continue
		}
		all = append(all, r.contests...)
	}
	if len(clients) > 0 && failures == len(clients) {
		return nil, ErrAllPlatformsFailed
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartTime.Before(all[j].StartTime)
	})
	return all, nil
}

// DefaultContestClients returns the clients queried by the contests view.
func DefaultContestClients() []ContestClient {
	return []ContestClient{NewCodeforcesClient(), NewLeetCodeClient()}
}
