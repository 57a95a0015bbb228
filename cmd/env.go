package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/fetch"
	"github.com/haihuyentran/melbourne-properties/internal/pipeline"
	"github.com/haihuyentran/melbourne-properties/internal/store"
	"github.com/haihuyentran/melbourne-properties/internal/transit"
	"github.com/haihuyentran/melbourne-properties/pkg/nominatim"
	"github.com/haihuyentran/melbourne-properties/pkg/osrm"
	"github.com/haihuyentran/melbourne-properties/pkg/overpass"
	"github.com/haihuyentran/melbourne-properties/pkg/reiv"
)

// env holds the loaded dataset, durable store and all external clients
// needed by the serve and pipeline commands.
type env struct {
	Dataset  *dataset.Dataset
	Store    *store.Store
	Fetcher  *fetch.Fetcher
	Geocoder *nominatim.Client
	Prices   *reiv.Client
	Transit  *transit.Resolver
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv loads the dataset, opens the durable store, and wires every
// client. An unreadable dataset file fails here; it is the one startup-fatal
// condition. Callers should defer env.Close().
func initEnv(ctx context.Context) (*env, error) {
	ds, err := dataset.Load(cfg.Data.SuburbsPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Data.StorePath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	fetcher := fetch.New(
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithTimeout(cfg.Fetch.FetchTimeout()),
	)

	geocodeFetcher := fetch.New(
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithTimeout(cfg.Fetch.FetchTimeout()),
		fetch.WithMinDelay(cfg.Geocode.MinDelay()),
	)
	geocoder := nominatim.New(
		nominatim.WithBaseURL(cfg.Geocode.BaseURL),
		nominatim.WithFetcher(geocodeFetcher),
	)

	priceFetcher := fetch.New(
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithTimeout(cfg.Fetch.FetchTimeout()),
		fetch.WithMinDelay(cfg.Reiv.MinDelay()),
	)
	prices := reiv.New(
		reiv.WithBaseURL(cfg.Reiv.BaseURL),
		reiv.WithFetcher(priceFetcher),
		reiv.WithTTL(cfg.Reiv.TTL()),
	)

	stops := overpass.New(
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithUserAgent(cfg.Fetch.UserAgent),
	)
	router := osrm.New(osrm.WithBaseURL(cfg.Routing.BaseURL))
	transitResolver := transit.NewResolver(geocoder, stops, router, cfg.Overpass.StopRadiusM)

	p := pipeline.New(ds, st, geocoder, prices,
		pipeline.ParseMergePolicy(cfg.Pipeline.MergePolicy),
		cfg.Pipeline.CheckpointEvery)

	return &env{
		Dataset:  ds,
		Store:    st,
		Fetcher:  fetcher,
		Geocoder: geocoder,
		Prices:   prices,
		Transit:  transitResolver,
		Pipeline: p,
	}, nil
}
