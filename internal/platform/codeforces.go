package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const codeforcesAPI = "https://codeforces.com/api"

// CodeforcesClient talks to the public Codeforces REST API.
type CodeforcesClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewCodeforcesClient() *CodeforcesClient {
	return &CodeforcesClient{BaseURL: codeforcesAPI, HTTP: defaultHTTPClient()}
}

func (c *CodeforcesClient) Name() string { return Codeforces }

type cfEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type cfSubmission struct {
	Verdict string `json:"verdict"`
	Problem struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
}

type cfUser struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
	Rank   string `json:"rank"`
}

type cfContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
}

func (c *CodeforcesClient) call(ctx context.Context, method string, params url.Values, result any) error {
	u := c.BaseURL + "/" + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := newRequest(ctx, http.MethodGet, u)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("codeforces %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("codeforces %s: status %d", method, resp.StatusCode)
	}

	var env cfEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("codeforces %s: decode: %w", method, err)
	}
	if env.Status != "OK" {
		return fmt.Errorf("codeforces %s: %s", method, env.Comment)
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("codeforces %s: decode result: %w", method, err)
	}
	return nil
}

// FetchUserStats counts distinct accepted problems from the user's
// full submission history, then fills in rating and rank.
func (c *CodeforcesClient) FetchUserStats(ctx context.Context, handle string) (*UserStats, error) {
	params := url.Values{"handle": {handle}}
	var submissions []cfSubmission
	if err := c.call(ctx, "user.status", params, &submissions); err != nil {
		return nil, err
	}

	solved := map[string]struct{}{}
	for _, sub := range submissions {
		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d%s", sub.Problem.ContestID, sub.Problem.Index)
		solved[key] = struct{}{}
	}

	stats := &UserStats{
		Platform:    Codeforces,
		Handle:      handle,
		SolvedCount: len(solved),
	}

	var users []cfUser
	if err := c.call(ctx, "user.info", url.Values{"handles": {handle}}, &users); err != nil {
		return nil, err
	}
	if len(users) > 0 {
		stats.Rating = users[0].Rating
		stats.Rank = users[0].Rank
	}
	return stats, nil
}

// FetchContests lists contests that have not finished yet.
func (c *CodeforcesClient) FetchContests(ctx context.Context) ([]Contest, error) {
	var raw []cfContest
	if err := c.call(ctx, "contest.list", nil, &raw); err != nil {
		return nil, err
	}

	var contests []Contest
	for _, item := range raw {
		if item.Phase == "FINISHED" || item.StartTimeSeconds == 0 {
			continue
		}
		contests = append(contests, Contest{
			Name:      item.Name,
			StartTime: time.Unix(item.StartTimeSeconds, 0).UTC(),
			URL:       fmt.Sprintf("https://codeforces.com/contest/%d", item.ID),
			Platform:  Codeforces,
		})
	}
	return contests, nil
}
