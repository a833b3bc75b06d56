// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/pdiddy/paperdock/internal/arxiv"
	"github.com/pdiddy/paperdock/internal/cache"
	"github.com/pdiddy/paperdock/internal/convert"
	"github.com/pdiddy/paperdock/internal/zotero"
	"github.com/pdiddy/paperdock/pkg/types"
)

// app bundles the wired application components shared by the
// subcommands.
type app struct {
	cfg    types.Config
	store  *cache.Store
	saver  *zotero.Saver
	text   *convert.Service
	closer func() error
}

// buildApp constructs the component graph from configuration. The
// returned closer releases the conversion cache database.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client := arxiv.NewClient(cfg.Arxiv)
	store, err := cache.NewStore(cfg.Cache, client, client)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	zc := zotero.NewClient(cfg.Zotero)
	saver := zotero.NewSaver(zc, store, cfg.Zotero)

	textStore, err := convert.OpenTextStore(cfg.Conversion.CacheDB)
	if err != nil {
		return nil, fmt.Errorf("open conversion cache: %w", err)
	}
	text := convert.NewService(convert.NewLazy(cfg.Conversion), textStore, cfg.Conversion.Workers)

	return &app{
		cfg:    cfg,
		store:  store,
		saver:  saver,
		text:   text,
		closer: textStore.Close,
	}, nil
}

func (a *app) Close() error {
	return a.closer()
}
