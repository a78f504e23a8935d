package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// kenkoooo's AtCoder Problems API; AtCoder itself has no public one.
const atcoderProblemsAPI = "https://kenkoooo.com/atcoder/atcoder-api/v3"

// AtCoderClient reads solve counts from the AtCoder Problems
// statistics API.
type AtCoderClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAtCoderClient() *AtCoderClient {
	return &AtCoderClient{BaseURL: atcoderProblemsAPI, HTTP: defaultHTTPClient()}
}

func (c *AtCoderClient) Name() string { return AtCoder }

func (c *AtCoderClient) FetchUserStats(ctx context.Context, handle string) (*UserStats, error) {
	u := c.BaseURL + "/user/ac_rank?user=" + url.QueryEscape(handle)
	req, err := newRequest(ctx, http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("atcoder: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("atcoder: user %q not found", handle)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("atcoder: status %d", resp.StatusCode)
	}

	var body struct {
		Count int `json:"count"`
		Rank  int `json:"rank"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("atcoder: decode: %w", err)
	}

	return &UserStats{
		Platform:    AtCoder,
		Handle:      handle,
		SolvedCount: body.Count,
		Rank:        fmt.Sprintf("%d", body.Rank),
	}, nil
}
