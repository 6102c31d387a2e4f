// Package freshness works out when a hosted CSV file last changed.
//
// Two signals are tried in order. The repository commit history is asked for
// the latest commit touching the file; if that is unavailable the file URL is
// probed with HEAD and its Last-Modified (or Date) header is used. Each
// signal is memoised per file URL for a short TTL so repeated page renders do
// not hammer rate-limited APIs. Resolution never fails: the worst outcome is
// the "unknown" label.
package freshness

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ka2n/csvboard/api/cache"
	"github.com/ka2n/csvboard/api/locator"
	"github.com/ka2n/csvboard/log"
	"github.com/morikuni/failure/v2"
)

const (
	DefaultAPIBaseURL = "https://api.github.com"
	DefaultTimeout    = 10 * time.Second
	DefaultTTL        = 300 * time.Second
)

// Tier names the signal a label was derived from.
type Tier string

const (
	TierNone          Tier = "none"
	TierCommitHistory Tier = "commit-history"
	TierProbe         Tier = "metadata-probe"
)

// Query describes one file whose freshness is wanted.
type Query struct {
	Address  locator.Address
	Parsed   bool
	Filename string
	// FileURL is the fully qualified file URL; it is also the cache key.
	FileURL string
}

// NewQuery parses baseURL and joins it with filename.
func NewQuery(baseURL, filename string) Query {
	addr, ok := locator.Parse(baseURL)
	return QueryFor(addr, ok, baseURL, filename)
}

// QueryFor builds a Query from an address parsed once for many files.
func QueryFor(addr locator.Address, parsed bool, baseURL, filename string) Query {
	return Query{
		Address:  addr,
		Parsed:   parsed,
		Filename: filename,
		FileURL:  FileURL(baseURL, filename),
	}
}

// FileURL joins a folder URL and a filename.
func FileURL(baseURL, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/" + filename
}

// Signal is the outcome of one tier: a timestamp or the reason there is none.
type Signal struct {
	At  time.Time
	Err error
}

// OK reports whether the tier produced a timestamp.
func (s Signal) OK() bool {
	return s.Err == nil && !s.At.IsZero()
}

// Result is a resolved freshness label with its provenance.
type Result struct {
	Label string
	Tier  Tier
	At    time.Time
}

// Resolver resolves freshness labels.
// It is safe for concurrent use.
type Resolver struct {
	client     *http.Client
	apiBaseURL string
	token      string
	timeout    time.Duration
	ttl        time.Duration
	display    Display
	now        func() time.Time

	commits *cache.Cache[Signal]
	probes  *cache.Cache[Signal]
}

// Option configures a Resolver
type Option func(*Resolver)

// WithHTTPClient sets the client used for both tiers.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithAPIBaseURL points the commit history tier at another API host.
func WithAPIBaseURL(u string) Option {
	return func(r *Resolver) {
		r.apiBaseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets the bearer token sent to the commits API.
func WithToken(token string) Option {
	return func(r *Resolver) {
		r.token = token
	}
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithTTL sets how long each tier's outcome is reused.
func WithTTL(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithDisplay sets the label location and suffix.
func WithDisplay(d Display) Option {
	return func(r *Resolver) {
		r.display = d
	}
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		apiBaseURL: DefaultAPIBaseURL,
		timeout:    DefaultTimeout,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = log.NewHTTPClient()
	}
	if r.display.Location == nil {
		r.display = DefaultDisplay()
	}
	r.commits = cache.New[Signal](r.ttl, cache.WithClock(r.now))
	r.probes = cache.New[Signal](r.ttl, cache.WithClock(r.now))
	return r
}

// Display returns the display used for labels.
func (r *Resolver) Display() Display {
	return r.display
}

// Resolve returns the freshness label for q, or Unknown.
func (r *Resolver) Resolve(ctx context.Context, q Query) string {
	return r.Lookup(ctx, q).Label
}

// Lookup resolves q and reports which tier answered.
func (r *Resolver) Lookup(ctx context.Context, q Query) Result {
	commit := r.commitSignal(ctx, q)
	if commit.OK() {
		return Result{Label: r.display.Format(commit.At), Tier: TierCommitHistory, At: commit.At}
	}

	probe := r.probeSignal(ctx, q)
	if probe.OK() {
		return Result{Label: r.display.Format(probe.At), Tier: TierProbe, At: probe.At}
	}

	log.Debug("freshness unresolved",
		"url", q.FileURL,
		"commit_error", commit.Err,
		"probe_error", probe.Err,
	)
	return Result{Label: Unknown, Tier: TierNone}
}

// Invalidate forgets every cached signal.
func (r *Resolver) Invalidate() {
	r.commits.Clear()
	r.probes.Clear()
}

func (r *Resolver) commitSignal(ctx context.Context, q Query) Signal {
	if !q.Parsed {
		return Signal{Err: failure.New(ErrAddressUnparsed,
			failure.Context{"url": q.FileURL},
		)}
	}
	// shared by every waiter on this key: bounded by r.timeout, not by one caller
	fctx := context.WithoutCancel(ctx)
	s, _ := r.commits.GetOrSet(q.FileURL, func() (Signal, error) {
		at, err := r.fetchCommitTime(fctx, q.Address, q.Filename)
		if err != nil {
			log.Debug("commit history unavailable", "url", q.FileURL, "error", err)
		}
		return Signal{At: at, Err: err}, nil
	}, false)
	return s
}

func (r *Resolver) probeSignal(ctx context.Context, q Query) Signal {
	fctx := context.WithoutCancel(ctx)
	s, _ := r.probes.GetOrSet(q.FileURL, func() (Signal, error) {
		at, err := r.probeModified(fctx, q.FileURL)
		if err != nil {
			log.Debug("metadata probe failed", "url", q.FileURL, "error", err)
		}
		return Signal{At: at, Err: err}, nil
	}, false)
	return s
}
