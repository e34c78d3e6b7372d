// Package aggregate drives the store aggregation and payment-method
// reconciliation pipeline: progressive nearby search against the directory
// provider, deduplication and detail enrichment, tag-store matching, and
// fallback payment-method resolution.
package aggregate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paymap-jp/paymap-cli/internal/classify"
	"github.com/paymap-jp/paymap-cli/internal/match"
	"github.com/paymap-jp/paymap-cli/internal/model"
	"github.com/paymap-jp/paymap-cli/internal/payment"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
	"github.com/paymap-jp/paymap-cli/pkg/places"
)

// unknownHours is shown when the provider reports no opening hours.
const unknownHours = "営業時間不明"

// defaultTypes is the provider-agnostic place-type fan-out for nearby search.
var defaultTypes = []string{
	"store",
	"convenience_store",
	"supermarket",
	"restaurant",
	"food",
	"shopping_mall",
	"bakery",
	"cafe",
	"clothing_store",
	"electronics_store",
	"furniture_store",
	"hardware_store",
	"jewelry_store",
	"shoe_store",
	"book_store",
	"pharmacy",
	"gas_station",
	"atm",
	"bank",
	"post_office",
}

// Options bounds the pipeline. The radius ladder and result caps are
// hand-tuned product constants surfaced here so deployments can adjust them.
type Options struct {
	Radii             []int    // meters, tried in order for nearby search
	Types             []string // place-type codes queried per radius
	NearbyCap         int      // unique places kept for nearby search
	TextCap           int      // places kept for text search
	TextBiasRadius    int      // meters, location bias for text search
	DetailConcurrency int      // parallel detail lookups
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Radii:             []int{2000, 5000, 10000},
		Types:             defaultTypes,
		NearbyCap:         100,
		TextCap:           20,
		TextBiasRadius:    50000,
		DetailConcurrency: 10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.Radii) == 0 {
		o.Radii = d.Radii
	}
	if len(o.Types) == 0 {
		o.Types = d.Types
	}
	if o.NearbyCap <= 0 {
		o.NearbyCap = d.NearbyCap
	}
	if o.TextCap <= 0 {
		o.TextCap = d.TextCap
	}
	if o.TextBiasRadius <= 0 {
		o.TextBiasRadius = d.TextBiasRadius
	}
	if o.DetailConcurrency <= 0 {
		o.DetailConcurrency = d.DetailConcurrency
	}
	return o
}

// Query identifies one aggregation request. It is a plain value so callers
// own stale-result handling (compare generations, discard superseded
// responses); the aggregator itself holds no query state.
type Query struct {
	Lat         float64
	Lng         float64
	UseRealData bool
}

// Result is the outcome of one aggregation. Err is a non-fatal degradation
// message (for example a tag-store outage); Stores is never nil.
type Result struct {
	Stores []model.Store `json:"stores"`
	Err    string        `json:"error,omitempty"`
}

// Aggregator assembles store records from the two providers.
type Aggregator struct {
	places places.Client
	tags   overpass.Client
	opts   Options
	now    func() time.Time
}

// New creates an Aggregator. Both clients must be non-nil.
func New(directory places.Client, tags overpass.Client, opts Options) *Aggregator {
	return &Aggregator{
		places: directory,
		tags:   tags,
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// Nearby runs the progressive multi-radius, multi-type aggregation around
// the query point. Individual provider calls degrade to zero results; a
// total directory failure surfaces the sample set with an error attached so
// the caller never renders an empty map.
func (a *Aggregator) Nearby(ctx context.Context, q Query) *Result {
	if !q.UseRealData {
		return &Result{Stores: SampleStores()}
	}

	log := zap.L().With(zap.String("component", "aggregate"))

	fetch := a.fetchTagIndex(ctx, q)

	seen := make(map[string]struct{})
	var unique []places.Place
	var lastErr error
	calls, failures := 0, 0

search:
	for _, radius := range a.opts.Radii {
		for _, placeType := range a.opts.Types {
			calls++
			results, err := a.places.Nearby(ctx, places.NearbyRequest{
				Lat: q.Lat, Lng: q.Lng, Radius: radius, Type: placeType,
			})
			if err != nil {
				failures++
				lastErr = err
				log.Warn("nearby query failed",
					zap.Int("radius", radius),
					zap.String("type", placeType),
					zap.Error(err),
				)
				continue
			}
			for _, p := range results {
				if _, ok := seen[p.PlaceID]; ok {
					continue
				}
				seen[p.PlaceID] = struct{}{}
				unique = append(unique, p)
			}
		}
		// Early termination: enough unique places accumulated.
		if len(unique) >= a.opts.NearbyCap {
			break search
		}
	}

	if len(unique) == 0 && failures == calls && lastErr != nil {
		log.Error("all nearby queries failed, falling back to sample set", zap.Error(lastErr))
		return &Result{Stores: SampleStores(), Err: "店舗データの取得に失敗しました"}
	}

	if len(unique) > a.opts.NearbyCap {
		unique = unique[:a.opts.NearbyCap]
	}

	<-fetch.done
	stores := a.buildStores(ctx, unique, fetch.index)

	log.Info("nearby aggregation complete",
		zap.Int("unique", len(unique)),
		zap.Int("stores", len(stores)),
		zap.Int("failed_calls", failures),
	)

	return &Result{Stores: stores, Err: fetch.errString()}
}

// Search runs the free-text variant: a single directory text query biased
// toward the query point, capped tighter than nearby search, then the same
// detail, match, and resolve pipeline. No radius escalation.
func (a *Aggregator) Search(ctx context.Context, text string, q Query) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return &Result{Stores: []model.Store{}}, nil
	}

	fetch := a.fetchTagIndex(ctx, q)

	results, err := a.places.TextSearch(ctx, places.TextSearchRequest{
		Query: text, Lat: q.Lat, Lng: q.Lng, Radius: a.opts.TextBiasRadius,
	})
	if err != nil {
		<-fetch.done
		return nil, err
	}

	if len(results) > a.opts.TextCap {
		results = results[:a.opts.TextCap]
	}

	<-fetch.done
	stores := a.buildStores(ctx, results, fetch.index)
	return &Result{Stores: stores, Err: fetch.errString()}, nil
}

// tagFetch carries the asynchronous tag-store fetch. The index is valid
// only after done is closed.
type tagFetch struct {
	done  chan struct{}
	index *match.Index
	err   error
}

func (t *tagFetch) errString() string {
	if t.err != nil {
		return "決済方法データの取得に失敗しました"
	}
	return ""
}

// fetchTagIndex starts the tag-store fetch for the query cell. It runs
// concurrently with the directory pipeline since the two are independent;
// provider failure degrades to an empty index plus an error string.
func (a *Aggregator) fetchTagIndex(ctx context.Context, q Query) *tagFetch {
	fetch := &tagFetch{done: make(chan struct{}), index: match.NewIndex()}

	go func() {
		defer close(fetch.done)

		elements, err := a.tags.Query(ctx, overpass.CellAround(q.Lat, q.Lng))
		if err != nil {
			fetch.err = err
			zap.L().Warn("tag-store query failed, continuing without payment tags", zap.Error(err))
			return
		}

		now := a.now()
		for _, el := range elements {
			methods := payment.Normalize(el, now)
			if len(methods) == 0 {
				continue
			}
			fetch.index.Add(el.Key(), methods)
		}
	}()

	return fetch
}

// buildStores enriches places with detail lookups (fan-out, bounded
// concurrency) and reconciles payment methods via the matcher or the
// default resolver. Detail failures degrade to the raw place record.
func (a *Aggregator) buildStores(ctx context.Context, raw []places.Place, index *match.Index) []model.Store {
	stores := make([]model.Store, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.DetailConcurrency)

	for i, p := range raw {
		i, p := i, p
		g.Go(func() error {
			detail, err := a.places.Details(gctx, p.PlaceID)
			if err != nil {
				zap.L().Debug("detail lookup failed, using raw place",
					zap.String("place_id", p.PlaceID),
					zap.Error(err),
				)
				detail = nil
			}
			stores[i] = a.assembleStore(p, detail, index)
			return nil
		})
	}
	_ = g.Wait()

	return stores
}

// assembleStore merges a raw place with its optional detail record and
// attaches the reconciled payment-method list. Detail fields override raw
// ones when present.
func (a *Aggregator) assembleStore(p places.Place, detail *places.PlaceDetail, index *match.Index) model.Store {
	name := p.Name
	address := p.Vicinity
	lat := p.Geometry.Location.Lat
	lng := p.Geometry.Location.Lng
	var phone string
	rating := p.Rating
	hours := unknownHours
	var photos []model.Photo

	if detail != nil {
		if detail.Name != "" {
			name = detail.Name
		}
		if detail.FormattedAddress != "" {
			address = detail.FormattedAddress
		}
		if detail.Geometry.Location.Lat != 0 || detail.Geometry.Location.Lng != 0 {
			lat = detail.Geometry.Location.Lat
			lng = detail.Geometry.Location.Lng
		}
		phone = detail.PhoneNumber
		if detail.Rating > 0 {
			rating = detail.Rating
		}
		if detail.OpeningHours != nil && len(detail.OpeningHours.WeekdayText) > 0 {
			hours = strings.Join(detail.OpeningHours.WeekdayText, ", ")
		}
		for _, ph := range detail.Photos {
			photos = append(photos, model.Photo{
				Reference:    ph.PhotoReference,
				Width:        ph.Width,
				Height:       ph.Height,
				Attributions: ph.HTMLAttributions,
			})
		}
	}

	category := classify.Classify(p.Types)

	methods, _, matched := index.Match(name, address)
	trust := model.TrustHigh
	if !matched {
		// Fallback heuristics are not provider-verified.
		methods = payment.Defaults(category, a.now())
		trust = model.TrustMedium
	}
	methods = model.SortSupportedFirst(model.DedupePaymentMethods(methods))

	return model.Store{
		ID:             p.PlaceID,
		Name:           name,
		Address:        address,
		Latitude:       lat,
		Longitude:      lng,
		Category:       category,
		PaymentMethods: methods,
		LastVerified:   a.now().Format("2006-01-02"),
		TrustScore:     trust,
		PhoneNumber:    phone,
		BusinessHours:  hours,
		Rating:         rating,
		Photos:         photos,
	}
}
