// Package stats is the client for the hit-counting service. The core reports
// endpoint hits to it and reads view counts back; both are informational and
// never gate admission decisions.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TimeLayout is the timestamp format the stats service speaks.
const TimeLayout = "2006-01-02 15:04:05"

// EndpointHit is one recorded request to an endpoint.
type EndpointHit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// EndpointStats is the aggregated hit count for one endpoint.
type EndpointStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int    `json:"hits"`
}

type Client struct {
	baseURL string
	app     string
	client  *http.Client
}

// NewClient returns a stats client reporting under the given app name.
func NewClient(baseURL, app string) *Client {
	return &Client{
		baseURL: baseURL,
		app:     app,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// App returns the app name hits are recorded under.
func (c *Client) App() string {
	return c.app
}

// Hit records a request to uri from ip at the given time.
func (c *Client) Hit(ctx context.Context, uri, ip string, at time.Time) error {
	hit := EndpointHit{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: at.Format(TimeLayout),
	}

	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("error marshalling hit: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building hit request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending hit: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("stats service returned status %d for hit", resp.StatusCode)
	}
	return nil
}

// Stats returns the hit counts between start and end, optionally restricted
// to the given uris. With unique set, each ip counts once per endpoint.
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]EndpointStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(TimeLayout))
	params.Set("end", end.Format(TimeLayout))
	for _, u := range uris {
		params.Add("uris", u)
	}
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building stats request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status %d", resp.StatusCode)
	}

	var stats []EndpointStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("error decoding stats response: %v", err)
	}
	return stats, nil
}
