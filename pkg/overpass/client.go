// Package overpass provides a minimal Overpass API client for fetching
// building and street way-features within a bounding box.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mapgrind/addresser/internal/geodata"
	"github.com/mapgrind/addresser/internal/tile"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// queryTimeoutSecs is the server-side [timeout:] hint in issued queries.
const queryTimeoutSecs = 25

// StatusError reports a non-200 Overpass response. The status code is kept
// for transient-error classification (429/5xx are retryable).
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("overpass: status %d", e.StatusCode)
}

// Client queries an Overpass interpreter endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the queries-per-second limit. Public Overpass instances
// throttle aggressively; the default is conservative.
func WithRateLimit(qps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(qps), 1) }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a Client for the given interpreter endpoint. An empty
// endpoint selects the public default.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 180 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buildings fetches way-features tagged as buildings within the bbox,
// with the server-computed centroid for each way.
func (c *Client) Buildings(ctx context.Context, bbox tile.BBox) ([]geodata.Building, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:%d];way[\"building\"](%s);out center qt;",
		queryTimeoutSecs, bboxClause(bbox),
	)

	elements, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}

	buildings := make([]geodata.Building, 0, len(elements))
	for _, el := range elements {
		if el.Type != "way" || el.Center == nil {
			continue
		}
		buildings = append(buildings, geodata.Building{
			ID:    el.ID,
			Lat:   el.Center.Lat,
			Lng:   el.Center.Lon,
			Nodes: el.Nodes,
			Tags:  el.Tags,
		})
	}
	return buildings, nil
}

// Streets fetches named way-features tagged as highways within the bbox,
// with full tags for street-name resolution.
func (c *Client) Streets(ctx context.Context, bbox tile.BBox) ([]geodata.Street, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:%d];way[\"highway\"][\"name\"](%s);out tags qt;",
		queryTimeoutSecs, bboxClause(bbox),
	)

	elements, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}

	streets := make([]geodata.Street, 0, len(elements))
	for _, el := range elements {
		if el.Type != "way" {
			continue
		}
		streets = append(streets, geodata.Street{ID: el.ID, Tags: el.Tags})
	}
	return streets, nil
}

// element is a single feature in an Overpass JSON response.
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Center *center           `json:"center,omitempty"`
	Nodes  []int64           `json:"nodes,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type response struct {
	Elements []element `json:"elements"`
}

// run posts a QL query and decodes the element list.
func (c *Client) run(ctx context.Context, query string) ([]element, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit")
	}

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrap(&StatusError{StatusCode: resp.StatusCode}, "overpass: query")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}

	zap.L().Debug("overpass query",
		zap.Int("elements", len(parsed.Elements)),
		zap.Duration("took", time.Since(start)),
	)
	return parsed.Elements, nil
}

// bboxClause formats a bbox as the (south,west,north,east) QL filter.
func bboxClause(b tile.BBox) string {
	return fmt.Sprintf("%f,%f,%f,%f", b.South, b.West, b.North, b.East)
}
