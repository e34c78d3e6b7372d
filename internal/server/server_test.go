package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paymap-jp/paymap-cli/internal/aggregate"
	"github.com/paymap-jp/paymap-cli/internal/photocache"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
	"github.com/paymap-jp/paymap-cli/pkg/places"
)

type fakeDirectory struct {
	nearbyFn  func(req places.NearbyRequest) ([]places.Place, error)
	textFn    func(req places.TextSearchRequest) ([]places.Place, error)
	detailsFn func(placeID string) (*places.PlaceDetail, error)
	photoFn   func(ref string, maxWidth int) ([]byte, string, error)
}

func (f *fakeDirectory) Nearby(_ context.Context, req places.NearbyRequest) ([]places.Place, error) {
	if f.nearbyFn == nil {
		return nil, nil
	}
	return f.nearbyFn(req)
}

func (f *fakeDirectory) TextSearch(_ context.Context, req places.TextSearchRequest) ([]places.Place, error) {
	if f.textFn == nil {
		return nil, nil
	}
	return f.textFn(req)
}

func (f *fakeDirectory) Details(_ context.Context, placeID string) (*places.PlaceDetail, error) {
	if f.detailsFn == nil {
		return nil, eris.Errorf("no detail for %s", placeID)
	}
	return f.detailsFn(placeID)
}

func (f *fakeDirectory) Photo(_ context.Context, ref string, maxWidth int) ([]byte, string, error) {
	if f.photoFn == nil {
		return nil, "", eris.New("no photo")
	}
	return f.photoFn(ref, maxWidth)
}

type fakeTagStore struct {
	elements []overpass.Element
	err      error
}

func (f *fakeTagStore) Query(context.Context, overpass.Cell) ([]overpass.Element, error) {
	return f.elements, f.err
}

func newTestServer(t *testing.T, dir places.Client, tags overpass.Client, photos photocache.Cache) *httptest.Server {
	t.Helper()
	agg := aggregate.New(dir, tags, aggregate.DefaultOptions())
	srv := New(agg, dir, tags, photos, Options{Port: 0})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestNearbyProxy(t *testing.T) {
	dir := &fakeDirectory{
		nearbyFn: func(req places.NearbyRequest) ([]places.Place, error) {
			assert.InDelta(t, 33.88, req.Lat, 1e-9)
			assert.Equal(t, 500, req.Radius)
			assert.Equal(t, "convenience_store", req.Type)
			return []places.Place{{PlaceID: "p1", Name: "セブンイレブン"}}, nil
		},
	}
	ts := newTestServer(t, dir, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/api/places?lat=33.88&lng=130.88&radius=500&type=convenience_store")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Success bool            `json:"success"`
		Data    []places.Place  `json:"data"`
		Count   int             `json:"count"`
		Error   json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Count)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "p1", env.Data[0].PlaceID)
}

func TestNearbyProxy_MissingCoords(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	resp, _ := get(t, ts.URL+"/api/places")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNearbyProxy_ProviderFailure(t *testing.T) {
	dir := &fakeDirectory{
		nearbyFn: func(places.NearbyRequest) ([]places.Place, error) {
			return nil, eris.New("REQUEST_DENIED")
		},
	}
	ts := newTestServer(t, dir, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/api/places?lat=33.88&lng=130.88")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "店舗データの取得に失敗しました")
}

func TestTextSearchProxy(t *testing.T) {
	dir := &fakeDirectory{
		textFn: func(req places.TextSearchRequest) ([]places.Place, error) {
			assert.Equal(t, "ラーメン", req.Query)
			return []places.Place{{PlaceID: "t1"}}, nil
		},
	}
	ts := newTestServer(t, dir, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/api/places/search?query=ラーメン")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"t1"`)
}

func TestTextSearchProxy_MissingQuery(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	resp, _ := get(t, ts.URL+"/api/places/search")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDetailsProxy(t *testing.T) {
	dir := &fakeDirectory{
		detailsFn: func(placeID string) (*places.PlaceDetail, error) {
			assert.Equal(t, "p1", placeID)
			return &places.PlaceDetail{PlaceID: "p1", Name: "店"}, nil
		},
	}
	ts := newTestServer(t, dir, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/api/places/details?place_id=p1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"p1"`)
}

func TestPhotoProxy_CacheMissThenHit(t *testing.T) {
	calls := 0
	dir := &fakeDirectory{
		photoFn: func(ref string, maxWidth int) ([]byte, string, error) {
			calls++
			assert.Equal(t, "ref-1", ref)
			assert.Equal(t, 400, maxWidth)
			return []byte("jpeg bytes"), "image/jpeg", nil
		},
	}
	cache := photocache.NewMemory(10, time.Minute)
	ts := newTestServer(t, dir, &fakeTagStore{}, cache)

	for i := 0; i < 2; i++ {
		resp, body := get(t, ts.URL+"/api/places/photo?photo_reference=ref-1&maxwidth=400")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400", resp.Header.Get("Cache-Control"))
		assert.Equal(t, []byte("jpeg bytes"), body)
	}
	assert.Equal(t, 1, calls)
}

func TestPhotoProxy_MissingReference(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	resp, _ := get(t, ts.URL+"/api/places/photo")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPaymentMethods(t *testing.T) {
	tags := &fakeTagStore{
		elements: []overpass.Element{
			{
				ID:   1,
				Kind: overpass.KindNode,
				Tags: map[string]string{
					"name":           "セブンイレブン",
					"addr:full":      "北九州市小倉北区浅野1-1-1",
					"payment:paypay": "yes",
					"payment:cash":   "yes",
				},
			},
			{
				ID:   2,
				Kind: overpass.KindNode,
				Tags: map[string]string{"name": "タグなしの店", "shop": "convenience"},
			},
		},
	}
	ts := newTestServer(t, &fakeDirectory{}, tags, nil)

	resp, body := get(t, ts.URL+"/api/osm-payment-methods?lat=33.88&lng=130.88")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Success bool          `json:"success"`
		Data    []taggedStore `json:"data"`
		Count   int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.True(t, env.Success)
	// Elements without payment tags are omitted.
	assert.Equal(t, 1, env.Count)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "node_1", env.Data[0].ID)
	assert.Equal(t, "node", env.Data[0].Type)
	assert.Equal(t, "セブンイレブン", env.Data[0].Name)
	assert.Equal(t, "北九州市小倉北区浅野1-1-1", env.Data[0].Address)
	assert.Len(t, env.Data[0].SupportedPayments, 2)
}

func TestPaymentMethods_ProviderFailureDegrades(t *testing.T) {
	tags := &fakeTagStore{err: eris.New("overpass timeout")}
	ts := newTestServer(t, &fakeDirectory{}, tags, nil)

	resp, body := get(t, ts.URL+"/api/osm-payment-methods?lat=33.88&lng=130.88")
	// Degraded but renderable: HTTP 200, success still true, empty data,
	// error string attached.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Success bool          `json:"success"`
		Data    []taggedStore `json:"data"`
		Error   string        `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.True(t, env.Success)
	assert.Empty(t, env.Data)
	assert.NotEmpty(t, env.Error)
}

func TestStores_SampleSet(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/api/stores?lat=33.88&lng=130.88")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env storesEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data)
	assert.Equal(t, len(env.Data), env.Count)
	assert.Equal(t, int64(1), env.Generation)
}

func TestStores_GenerationMonotonic(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	var last int64
	for i := 0; i < 3; i++ {
		_, body := get(t, ts.URL+"/api/stores?lat=33.88&lng=130.88")
		var env storesEnvelope
		require.NoError(t, json.Unmarshal(body, &env))
		assert.Greater(t, env.Generation, last)
		last = env.Generation
	}
}

func TestStores_TextQueryRoutesToSearch(t *testing.T) {
	dir := &fakeDirectory{
		textFn: func(req places.TextSearchRequest) ([]places.Place, error) {
			assert.Equal(t, "ラーメン", req.Query)
			return []places.Place{{
				PlaceID:  "t1",
				Name:     "ラーメン一番",
				Vicinity: "小倉北区",
				Types:    []string{"restaurant"},
			}}, nil
		},
	}
	ts := newTestServer(t, dir, &fakeTagStore{}, nil)

	resp, body := get(t, ts.URL+"/api/stores?lat=33.88&lng=130.88&query=ラーメン")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env storesEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "t1", env.Data[0].ID)
}

func TestStores_MissingCoords(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	resp, _ := get(t, ts.URL+"/api/stores")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{}, &fakeTagStore{}, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
