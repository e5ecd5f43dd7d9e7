// Package catalog wraps the external activity catalog API. The catalog owns
// search and ranking; this client only submits the query parameters built
// from a merged constraint set.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kidsactivitytracker/backend/internal/domain"
)

type Activity struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ActivityType string   `json:"activity_type"`
	MinAge       int      `json:"min_age"`
	MaxAge       int      `json:"max_age"`
	Days         []string `json:"days"`
	Price        float64  `json:"price"`
	City         string   `json:"city"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Environment  string   `json:"environment"`
	Gender       string   `json:"gender"`
}

type searchResponse struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search runs a catalog search with the given query parameters.
func (c *Client) Search(ctx context.Context, params url.Values) ([]Activity, error) {
	endpoint := fmt.Sprintf("%s/v1/activities/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return body.Activities, nil
}
