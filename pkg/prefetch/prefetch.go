// Package prefetch warms background videos ahead of use, a few at a time.
package prefetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/metrics"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultConcurrency = 2
	DefaultLimit       = 4
)

// Options configure a Prefetcher.
type Options struct {
	Client      *http.Client
	BaseURL     string // resolves sources such as "/videos/Rain.mp4"
	CacheDir    string // when set, bodies are stored here; otherwise they are read and discarded
	Concurrency int
}

// Prefetcher downloads each source at most once per process.
type Prefetcher struct {
	client   *http.Client
	base     *url.URL
	cacheDir string
	sem      *semaphore.Weighted
	group    singleflight.Group
	logger   zerolog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// New creates a Prefetcher. An unparsable BaseURL is an error.
func New(opts Options) (*Prefetcher, error) {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}

	var base *url.URL
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse prefetch base url: %w", err)
		}
		base = u
	}

	return &Prefetcher{
		client:   opts.Client,
		base:     base,
		cacheDir: opts.CacheDir,
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
		logger:   logging.WithComponent("prefetch"),
		seen:     make(map[string]bool),
	}, nil
}

// Done reports whether src has been prefetched successfully.
func (p *Prefetcher) Done(src string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[src]
}

// One prefetches src unless it is empty, done or already in flight, in which
// case it waits for the running attempt. Failures are logged, never returned.
func (p *Prefetcher) One(ctx context.Context, src string) {
	if src == "" || p.Done(src) {
		return
	}

	p.group.Do(src, func() (any, error) {
		if p.Done(src) {
			return nil, nil
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.sem.Release(1)

		if err := p.fetch(ctx, src); err != nil {
			metrics.Prefetches.WithLabelValues("error").Inc()
			p.logger.Debug().Err(err).Str("src", src).Msg("prefetch failed")
			return nil, err
		}

		p.mu.Lock()
		p.seen[src] = true
		p.mu.Unlock()
		metrics.Prefetches.WithLabelValues("ok").Inc()
		return nil, nil
	})
}

// Many prefetches the first limit distinct non-empty sources and waits for all.
// A limit below one selects DefaultLimit.
func (p *Prefetcher) Many(ctx context.Context, srcs []string, limit int) {
	if limit < 1 {
		limit = DefaultLimit
	}

	var g errgroup.Group
	for _, src := range Unique(srcs, limit) {
		g.Go(func() error {
			p.One(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
}

// Unique drops empty and repeated entries, keeping the first limit in order.
func Unique(srcs []string, limit int) []string {
	seen := make(map[string]bool, len(srcs))
	out := make([]string, 0, min(len(srcs), limit))
	for _, s := range srcs {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// CachePath returns where src is stored, or "" without a cache directory.
func (p *Prefetcher) CachePath(src string) string {
	if p.cacheDir == "" {
		return ""
	}
	clean := path.Clean("/" + strings.TrimPrefix(p.resolvePath(src), "/"))
	return filepath.Join(p.cacheDir, filepath.FromSlash(clean))
}

func (p *Prefetcher) resolvePath(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	return u.Path
}

func (p *Prefetcher) resolve(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse source: %w", err)
	}
	if p.base != nil {
		u = p.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("source %q has no http(s) location", src)
	}
	return u.String(), nil
}

func (p *Prefetcher) fetch(ctx context.Context, src string) error {
	target, err := p.resolve(src)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %s", target, resp.Status)
	}

	dest := p.CachePath(src)
	if dest == "" {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	return writeAtomic(dest, resp.Body)
}

func writeAtomic(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	pending, err := renameio.NewPendingFile(dest)
	if err != nil {
		return fmt.Errorf("create pending cache file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, r); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace cache file: %w", err)
	}
	return nil
}
