package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ka2n/csvboard/api/dataset"
	"github.com/ka2n/csvboard/api/freshness"
	"github.com/ka2n/csvboard/api/locator"
	"github.com/ka2n/csvboard/config"
	"github.com/ka2n/csvboard/log"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// ErrorCode defines error types for board operations
type ErrorCode string

const (
	ErrUnknownSource ErrorCode = "UnknownSource"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// MaxConcurrentSources bounds how many sources are loaded at once per render.
var MaxConcurrentSources = 4

// Panel is everything rendered for one source tab.
type Panel struct {
	ID    string
	Title string
	File  string
	URL   string

	// LastUpdated is the freshness label, or "unknown"
	LastUpdated string
	// Tier tells which signal produced LastUpdated
	Tier freshness.Tier
	// FetchedAt is the render time as a display label
	FetchedAt string

	Table *dataset.Table
	// Err is set when the table could not be loaded; other panels are unaffected
	Err error
}

// Board assembles panels for a set of sources that share one base URL.
type Board struct {
	BaseURL  string
	Sources  []config.Source
	Resolver *freshness.Resolver
	Client   *http.Client
	Timeout  time.Duration

	// Now is used for the "fetched at" label
	Now func() time.Time

	address locator.Address
	parsed  bool
}

// NewBoard creates a board from configuration. The base URL is parsed once here.
func NewBoard(cfg config.Config, resolver *freshness.Resolver, client *http.Client) *Board {
	if client == nil {
		client = log.NewHTTPClient()
	}
	b := &Board{
		BaseURL:  cfg.BaseURL,
		Sources:  cfg.Sources,
		Resolver: resolver,
		Client:   client,
		Timeout:  cfg.RequestTimeout,
		Now:      time.Now,
	}
	b.address, b.parsed = locator.Parse(cfg.BaseURL)
	if !b.parsed {
		log.Info("Base URL is not a repository folder, commit history lookups disabled", "base_url", cfg.BaseURL)
	}
	return b
}

// NewResolver creates a freshness resolver from configuration.
func NewResolver(cfg config.Config, client *http.Client) (*freshness.Resolver, error) {
	display, err := freshness.LoadDisplay(cfg.DisplayTimezone, cfg.DisplaySuffix)
	if err != nil {
		return nil, err
	}
	opts := []freshness.Option{
		freshness.WithAPIBaseURL(cfg.GitHubAPIURL),
		freshness.WithToken(cfg.GitHubToken),
		freshness.WithTimeout(cfg.RequestTimeout),
		freshness.WithTTL(cfg.FreshnessTTL),
		freshness.WithDisplay(display),
	}
	if client != nil {
		opts = append(opts, freshness.WithHTTPClient(client))
	}
	return freshness.New(opts...), nil
}

// WithSources returns a copy of b serving a different source list.
// The resolver, and therefore its cache, is shared.
func (b *Board) WithSources(sources []config.Source) *Board {
	nb := *b
	nb.Sources = sources
	return &nb
}

// Address returns the parsed base URL.
func (b *Board) Address() (locator.Address, bool) {
	return b.address, b.parsed
}

// FileURL returns the resolved URL of a source file.
func (b *Board) FileURL(s config.Source) string {
	return freshness.FileURL(b.BaseURL, s.File)
}

// Source looks up a configured source by id.
func (b *Board) Source(id string) (config.Source, error) {
	s, ok := lo.Find(b.Sources, func(s config.Source) bool {
		return s.ID == id
	})
	if !ok {
		return config.Source{}, failure.New(ErrUnknownSource,
			failure.Message("Unknown source: "+id),
			failure.Context{
				"id":        id,
				"available": strings.Join(lo.Map(b.Sources, func(s config.Source, _ int) string { return s.ID }), ","),
			},
		)
	}
	return s, nil
}

// Build loads every source: freshness label and table.
func (b *Board) Build(ctx context.Context) []Panel {
	return b.build(ctx, b.Sources, true)
}

// Labels resolves freshness labels only, without downloading tables.
func (b *Board) Labels(ctx context.Context) []Panel {
	return b.build(ctx, b.Sources, false)
}

// Panel loads a single source.
func (b *Board) Panel(ctx context.Context, id string) (Panel, error) {
	s, err := b.Source(id)
	if err != nil {
		return Panel{}, err
	}
	return b.build(ctx, []config.Source{s}, true)[0], nil
}

func (b *Board) build(ctx context.Context, sources []config.Source, withTable bool) []Panel {
	fetchedAt := b.Resolver.Display().Format(b.now())
	panels := make([]Panel, len(sources))

	var g errgroup.Group
	g.SetLimit(MaxConcurrentSources)
	for i, s := range sources {
		g.Go(func() error {
			panels[i] = b.load(ctx, s, fetchedAt, withTable)
			return nil
		})
	}
	_ = g.Wait()
	return panels
}

func (b *Board) load(ctx context.Context, s config.Source, fetchedAt string, withTable bool) Panel {
	q := freshness.QueryFor(b.address, b.parsed, b.BaseURL, s.File)
	p := Panel{
		ID:        s.ID,
		Title:     s.DisplayTitle(),
		File:      s.File,
		URL:       q.FileURL,
		FetchedAt: fetchedAt,
	}

	res := b.Resolver.Lookup(ctx, q)
	p.LastUpdated = res.Label
	p.Tier = res.Tier

	if withTable {
		tctx := ctx
		if b.Timeout > 0 {
			var cancel context.CancelFunc
			tctx, cancel = context.WithTimeout(ctx, b.Timeout)
			defer cancel()
		}
		p.Table, p.Err = dataset.Fetch(tctx, b.Client, q.FileURL)
		if p.Err != nil {
			log.Warn("Failed to load dataset", "id", s.ID, "url", q.FileURL, "error", p.Err)
		}
	}
	return p
}

func (b *Board) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
