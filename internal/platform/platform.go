// Package platform fetches contest schedules and per-user solve
// statistics from competitive programming sites.
package platform

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	Codeforces = "codeforces"
	LeetCode   = "leetcode"
	AtCoder    = "atcoder"
)

// Names lists the supported platforms in display order.
var Names = []string{Codeforces, LeetCode, AtCoder}

const userAgent = "cpcdash/1.0"

// ErrAllPlatformsFailed is returned by FetchAllContests when no
// platform produced a result.
var ErrAllPlatformsFailed = errors.New("all platforms unavailable")

// Contest is an upcoming or running contest on some platform.
type Contest struct {
	Name      string
	StartTime time.Time
	URL       string
	Platform  string
}

// UserStats is a snapshot of a user's standing on one platform.
// SolvedCount is the distinct accepted problem count.
type UserStats struct {
	Platform    string
	Handle      string
	SolvedCount int
	Rank        string
	Rating      int // 0 when the platform has no rating for the user
}

// StatsClient fetches solve statistics for a single handle.
type StatsClient interface {
	Name() string
	FetchUserStats(ctx context.Context, handle string) (*UserStats, error)
}

// ContestClient lists upcoming contests on one platform.
type ContestClient interface {
	Name() string
	FetchContests(ctx context.Context) ([]Contest, error)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}
