// Package overpass is a client for the community map-tag store. It fetches
// elements carrying payment:* tags for a small bounding cell around a point.
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
	"github.com/twpayne/go-geom"
	"golang.org/x/time/rate"

	"github.com/paymap-jp/paymap-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://overpass-api.de/api/interpreter"

	// cellHalfWidth is the half-width of the query bounding cell in degrees.
	cellHalfWidth = 0.005

	// providerTimeoutSecs is the server-side query timeout.
	providerTimeoutSecs = 10
)

// ElementKind is the geometry kind of a tag-store element.
type ElementKind string

// Element kinds.
const (
	KindNode     ElementKind = "node"
	KindWay      ElementKind = "way"
	KindRelation ElementKind = "relation"
)

// Center is the centroid reported for way and relation elements.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is a raw tag-store record: an identifier, a kind, coordinates or a
// centroid, and an open-ended string tag mapping.
type Element struct {
	ID     int64             `json:"id"`
	Kind   ElementKind       `json:"type"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

// Key returns the synthetic identity used to index elements, "<kind>_<id>".
func (e Element) Key() string {
	return fmt.Sprintf("%s_%d", e.Kind, e.ID)
}

type queryResponse struct {
	Elements []Element `json:"elements"`
}

// Cell is the bounding box submitted to the provider.
type Cell struct {
	bounds *geom.Bounds
}

// CellAround builds the query cell centered on a point, extending
// cellHalfWidth degrees in each direction.
func CellAround(lat, lng float64) Cell {
	b := geom.NewBounds(geom.XY)
	b.Extend(geom.NewPointFlat(geom.XY, []float64{lng - cellHalfWidth, lat - cellHalfWidth}))
	b.Extend(geom.NewPointFlat(geom.XY, []float64{lng + cellHalfWidth, lat + cellHalfWidth}))
	return Cell{bounds: b}
}

// BBox renders the cell in the provider's south,west,north,east order.
func (c Cell) BBox() string {
	return fmt.Sprintf("%f,%f,%f,%f",
		c.bounds.Min(1), c.bounds.Min(0), c.bounds.Max(1), c.bounds.Max(0))
}

// Client queries the tag-store provider.
type Client interface {
	Query(ctx context.Context, cell Cell) ([]Element, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default interpreter endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for tag-store calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a tag-store client. The public instance enforces fair
// use, so the default rate limit is conservative.
func NewClient(opts ...Option) Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("overpass", "query")

	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: (providerTimeoutSecs + 5) * time.Second},
		limiter: rate.NewLimiter(1, 1),
		retry:   retry,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// buildQuery renders the Overpass QL query for a cell, restricted to the
// retail tag kinds the reconciliation engine cares about.
func buildQuery(cell Cell) string {
	bbox := cell.BBox()
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", providerTimeoutSecs)
	fmt.Fprintf(&b, "  node[\"shop\"=\"convenience\"](%s);\n", bbox)
	fmt.Fprintf(&b, "  node[\"shop\"=\"supermarket\"](%s);\n", bbox)
	fmt.Fprintf(&b, "  node[\"amenity\"=\"restaurant\"](%s);\n", bbox)
	fmt.Fprintf(&b, "  node[\"amenity\"=\"fast_food\"](%s);\n", bbox)
	b.WriteString(");\nout tags;\n")
	return b.String()
}

// Query fetches the elements for a cell. Only elements carrying at least one
// tag are returned; filtering to payment:* tags is the normalizer's job.
func (c *httpClient) Query(ctx context.Context, cell Cell) ([]Element, error) {
	form := url.Values{}
	form.Set("data", buildQuery(cell))
	payload := form.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, resilience.NewStatusError(resp.StatusCode, c.baseURL)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, eris.Wrap(err, "overpass: query")
	}

	var result queryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "overpass: unmarshal response")
	}

	return result.Elements, nil
}
