// Package places is a client for the commercial places directory API:
// nearby search, text search, detail lookups, and the photo endpoint.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/paymap-jp/paymap-cli/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client performs directory provider operations.
type Client interface {
	Nearby(ctx context.Context, req NearbyRequest) ([]Place, error)
	TextSearch(ctx context.Context, req TextSearchRequest) ([]Place, error)
	Details(ctx context.Context, placeID string) (*PlaceDetail, error)
	Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
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

// WithRateLimit sets the requests-per-second limit for directory calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithLanguage sets the language/region bias for search and detail calls.
func WithLanguage(language, region string) Option {
	return func(c *httpClient) {
		c.language = language
		c.region = region
	}
}

// WithRetry overrides the default retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	region   string
	http     *http.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
}

// NewClient creates a directory API client.
func NewClient(apiKey string, opts ...Option) Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("places", "request")

	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "ja",
		region:   "jp",
		http:     &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(10, 10),
		retry:    retry,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Nearby searches for places of one type around a point. ZERO_RESULTS yields
// an empty slice and no error.
func (c *httpClient) Nearby(ctx context.Context, req NearbyRequest) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", req.Lat, req.Lng))
	params.Set("radius", strconv.Itoa(req.Radius))
	params.Set("type", req.Type)

	var resp searchResponse
	if err := c.getJSON(ctx, "/nearbysearch/json", params, &resp); err != nil {
		return nil, eris.Wrap(err, "places: nearby search")
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, eris.Wrap(err, "places: nearby search")
	}
	return resp.Results, nil
}

// TextSearch searches for places by free text, optionally biased to a point.
func (c *httpClient) TextSearch(ctx context.Context, req TextSearchRequest) ([]Place, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	if req.Lat != 0 || req.Lng != 0 {
		params.Set("location", fmt.Sprintf("%f,%f", req.Lat, req.Lng))
		if req.Radius > 0 {
			params.Set("radius", strconv.Itoa(req.Radius))
		}
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/textsearch/json", params, &resp); err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}
	return resp.Results, nil
}

// Details fetches the full record for one place.
func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetail, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,geometry,formatted_phone_number,opening_hours,website,rating,user_ratings_total,photos")

	var resp detailResponse
	if err := c.getJSON(ctx, "/details/json", params, &resp); err != nil {
		return nil, eris.Wrapf(err, "places: details %s", placeID)
	}
	if resp.Status != StatusOK {
		return nil, eris.Errorf("places: details %s: status %s", placeID, resp.Status)
	}
	return resp.Result, nil
}

// Photo fetches raw image bytes for a photo reference, returning the bytes
// and the content type.
func (c *httpClient) Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error) {
	params := url.Values{}
	params.Set("photo_reference", photoReference)
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	params.Set("key", c.apiKey)

	u := c.baseURL + "/photo?" + params.Encode()

	type photoResult struct {
		data        []byte
		contentType string
	}

	result, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (photoResult, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return photoResult{}, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return photoResult{}, eris.Wrap(err, "create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return photoResult{}, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return photoResult{}, resilience.NewStatusError(resp.StatusCode, c.baseURL+"/photo")
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return photoResult{}, eris.Wrap(err, "read response")
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}
		return photoResult{data: data, contentType: contentType}, nil
	})
	if err != nil {
		return nil, "", eris.Wrap(err, "places: photo")
	}
	return result.data, result.contentType, nil
}

// getJSON issues a rate-limited, retried GET and decodes the JSON body.
// The API key and language/region bias are attached here.
func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("language", c.language)
	params.Set("region", c.region)
	params.Set("key", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, resilience.NewStatusError(resp.StatusCode, c.baseURL+path)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

// checkStatus validates a search envelope status. ZERO_RESULTS is success.
func checkStatus(status, errorMessage string) error {
	if status == StatusOK || status == StatusZeroResults {
		return nil
	}
	if errorMessage != "" {
		return eris.Errorf("status %s: %s", status, errorMessage)
	}
	return eris.Errorf("status %s", status)
}
