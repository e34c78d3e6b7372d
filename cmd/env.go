package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/paymap-jp/paymap-cli/internal/aggregate"
	"github.com/paymap-jp/paymap-cli/internal/config"
	"github.com/paymap-jp/paymap-cli/internal/photocache"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
	"github.com/paymap-jp/paymap-cli/pkg/places"
)

// newClients builds the two provider clients from config.
func newClients(cfg *config.Config) (places.Client, overpass.Client) {
	directory := places.NewClient(cfg.Places.Key,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithLanguage(cfg.Places.Language, cfg.Places.Region),
		places.WithRateLimit(cfg.Places.RPS),
	)
	tags := overpass.NewClient(
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithRateLimit(cfg.Overpass.RPS),
	)
	return directory, tags
}

// newAggregator builds the aggregation pipeline from config.
func newAggregator(cfg *config.Config, directory places.Client, tags overpass.Client) *aggregate.Aggregator {
	opts := aggregate.DefaultOptions()
	opts.Radii = cfg.Aggregate.Radii
	opts.NearbyCap = cfg.Aggregate.NearbyCap
	opts.TextCap = cfg.Aggregate.TextCap
	opts.TextBiasRadius = cfg.Aggregate.TextBiasRadius
	opts.DetailConcurrency = cfg.Aggregate.DetailConcurrency
	return aggregate.New(directory, tags, opts)
}

// newPhotoCache builds the configured photo cache backend.
func newPhotoCache(ctx context.Context, cfg *config.Config) (photocache.Cache, error) {
	ttl := time.Duration(cfg.PhotoCache.TTLHours) * time.Hour

	switch cfg.PhotoCache.Driver {
	case "memory":
		return photocache.NewMemory(cfg.PhotoCache.MaxEntries, ttl), nil
	case "sqlite":
		c, err := photocache.NewSQLite(cfg.PhotoCache.Path, ttl)
		if err != nil {
			return nil, err
		}
		if err := c.Migrate(ctx); err != nil {
			c.Close() //nolint:errcheck
			return nil, err
		}
		if _, err := c.Purge(ctx); err != nil {
			c.Close() //nolint:errcheck
			return nil, err
		}
		return c, nil
	default:
		return nil, eris.Errorf("unknown photo cache driver %q", cfg.PhotoCache.Driver)
	}
}
