package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/paymap-jp/paymap-cli/internal/aggregate"
	"github.com/paymap-jp/paymap-cli/internal/model"
	"github.com/paymap-jp/paymap-cli/internal/payment"
	"github.com/paymap-jp/paymap-cli/internal/photocache"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
	"github.com/paymap-jp/paymap-cli/pkg/places"
)

// envelope is the response shape the front end consumes.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// storesEnvelope extends envelope with the generation echo.
type storesEnvelope struct {
	Success    bool          `json:"success"`
	Data       []model.Store `json:"data"`
	Count      int           `json:"count"`
	Generation int64         `json:"generation"`
	Error      string        `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Data: []any{}, Error: msg})
}

// parseLatLng reads the lat/lng query params. Both are required.
func parseLatLng(r *http.Request) (lat, lng float64, ok bool) {
	var err error
	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	radius := 1000
	if v := r.URL.Query().Get("radius"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive integer")
			return
		}
		radius = n
	}
	placeType := r.URL.Query().Get("type")
	if placeType == "" {
		placeType = "store"
	}

	results, err := s.places.Nearby(r.Context(), places.NearbyRequest{
		Lat: lat, Lng: lng, Radius: radius, Type: placeType,
	})
	if err != nil {
		zap.L().Error("nearby proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "店舗データの取得に失敗しました")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: results, Count: len(results)})
}

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	req := places.TextSearchRequest{Query: query}
	if lat, lng, ok := parseLatLng(r); ok {
		req.Lat, req.Lng = lat, lng
		if v := r.URL.Query().Get("radius"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				req.Radius = n
			}
		}
	}

	results, err := s.places.TextSearch(r.Context(), req)
	if err != nil {
		zap.L().Error("text search proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "店舗検索に失敗しました")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: results, Count: len(results)})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("place_id")
	if placeID == "" {
		writeError(w, http.StatusBadRequest, "place_id is required")
		return
	}

	detail, err := s.places.Details(r.Context(), placeID)
	if err != nil {
		zap.L().Error("details proxy failed", zap.String("place_id", placeID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "店舗詳細の取得に失敗しました")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: detail, Count: 1})
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("photo_reference")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "photo_reference is required")
		return
	}

	maxWidth := 400
	if v := r.URL.Query().Get("maxwidth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxWidth = n
		}
	}

	if s.photos != nil {
		if cached, ok := s.photos.Get(r.Context(), ref, maxWidth); ok {
			servePhoto(w, cached.Data, cached.ContentType)
			return
		}
	}

	data, contentType, err := s.places.Photo(r.Context(), ref, maxWidth)
	if err != nil {
		zap.L().Error("photo proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "写真の取得に失敗しました")
		return
	}

	if s.photos != nil {
		s.photos.Put(r.Context(), ref, maxWidth, photocache.Entry{Data: data, ContentType: contentType})
	}
	servePhoto(w, data, contentType)
}

func servePhoto(w http.ResponseWriter, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// taggedStore is one tag-store element with its normalized payment methods,
// the shape the front end consumes from the payment-methods route.
type taggedStore struct {
	ID                string                `json:"id"`
	Type              string                `json:"type"`
	Name              string                `json:"name"`
	Address           string                `json:"address"`
	SupportedPayments []model.PaymentMethod `json:"supportedPayments"`
}

// handlePaymentMethods returns the tag-store elements around a point, each
// with its normalized payment methods. Provider failure degrades to
// success-with-empty-data plus an error string rather than a 5xx, so the map
// keeps rendering.
func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	elements, err := s.tags.Query(r.Context(), overpass.CellAround(lat, lng))
	if err != nil {
		zap.L().Warn("tag-store proxy failed", zap.Error(err))
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data:    []taggedStore{},
			Error:   "決済方法データの取得に失敗しました",
		})
		return
	}

	stores := []taggedStore{}
	now := time.Now()
	for _, el := range elements {
		methods := payment.Normalize(el, now)
		if len(methods) == 0 {
			continue
		}
		stores = append(stores, taggedStore{
			ID:                el.Key(),
			Type:              string(el.Kind),
			Name:              methods[0].StoreName,
			Address:           methods[0].StoreAddress,
			SupportedPayments: methods,
		})
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: stores, Count: len(stores)})
}

// handleStores runs the full aggregation pipeline. Every response carries a
// generation number from a monotonic counter; clients keep the highest one
// seen and drop anything older.
func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	gen := s.generation.Add(1)
	q := aggregate.Query{
		Lat:         lat,
		Lng:         lng,
		UseRealData: r.URL.Query().Get("real") == "true",
	}

	var result *aggregate.Result
	if text := r.URL.Query().Get("query"); text != "" {
		var err error
		result, err = s.aggregator.Search(r.Context(), text, q)
		if err != nil {
			zap.L().Error("store search failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "店舗検索に失敗しました")
			return
		}
	} else {
		result = s.aggregator.Nearby(r.Context(), q)
	}

	writeJSON(w, http.StatusOK, storesEnvelope{
		Success:    true,
		Data:       result.Stores,
		Count:      len(result.Stores),
		Generation: gen,
		Error:      result.Err,
	})
}
