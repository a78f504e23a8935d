package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const leetcodeGraphQL = "https://leetcode.com/graphql"

// LeetCodeClient talks to the LeetCode GraphQL endpoint.
type LeetCodeClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewLeetCodeClient() *LeetCodeClient {
	return &LeetCodeClient{BaseURL: leetcodeGraphQL, HTTP: defaultHTTPClient()}
}

func (c *LeetCodeClient) Name() string { return LeetCode }

func (c *LeetCodeClient) query(ctx context.Context, query string, variables map[string]any, data any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com/contest/")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("leetcode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("leetcode: status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage  `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("leetcode: decode: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("leetcode: api errors: %v", envelope.Errors)
	}
	if envelope.Data == nil {
		return fmt.Errorf("leetcode: response missing data")
	}
	return json.Unmarshal(envelope.Data, data)
}

const leetcodeStatsQuery = `
query userStats($username: String!) {
  matchedUser(username: $username) {
    username
    submitStats {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

// FetchUserStats reads the accepted solve count across all
// difficulties for the given username.
func (c *LeetCodeClient) FetchUserStats(ctx context.Context, handle string) (*UserStats, error) {
	var data struct {
		MatchedUser *struct {
			Username    string `json:"username"`
			SubmitStats struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
	}
	err := c.query(ctx, leetcodeStatsQuery, map[string]any{"username": handle}, &data)
	if err != nil {
		return nil, err
	}
	if data.MatchedUser == nil {
		return nil, fmt.Errorf("leetcode: user %q not found", handle)
	}

	// The "All" bucket is the distinct accepted total.
	solved := 0
	for _, bucket := range data.MatchedUser.SubmitStats.AcSubmissionNum {
		if bucket.Difficulty == "All" {
			solved = bucket.Count
		}
	}
	return &UserStats{
		Platform:    LeetCode,
		Handle:      handle,
		SolvedCount: solved,
	}, nil
}

const leetcodeContestsQuery = `
query contestUpcomingContests {
  upcomingContests {
    title
    titleSlug
    startTime
  }
}`

func (c *LeetCodeClient) FetchContests(ctx context.Context) ([]Contest, error) {
	var data struct {
		UpcomingContests []struct {
			Title     string `json:"title"`
			TitleSlug string `json:"titleSlug"`
			StartTime int64  `json:"startTime"`
		} `json:"upcomingContests"`
	}
	if err := c.query(ctx, leetcodeContestsQuery, nil, &data); err != nil {
		return nil, err
	}

	var contests []Contest
	for _, raw := range data.UpcomingContests {
		if raw.StartTime <= 0 {
			continue
		}
		contests = append(contests, Contest{
			Name:      raw.Title,
			StartTime: time.Unix(raw.StartTime, 0).UTC(),
			URL:       "https://leetcode.com/contest/" + raw.TitleSlug,
			Platform:  LeetCode,
		})
	}
	return contests, nil
}
