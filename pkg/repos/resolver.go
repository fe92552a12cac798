package repos

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/conet/pkg/cache"
	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/integrations"
	"github.com/matzehuels/conet/pkg/observability"
)

// DefaultWorkers bounds concurrent registry lookups.
const DefaultWorkers = 8

// Link is the outcome of resolving one package.
type Link struct {
	Package string `json:"package"`
	RepoURL string `json:"repo_url,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Err     error  `json:"-"`
}

// Found reports whether a repository URL was resolved.
func (l Link) Found() bool { return l.Err == nil && l.RepoURL != "" }

// MarshalJSON adds the lookup error, if any, as "error".
func (l Link) MarshalJSON() ([]byte, error) {
	type plain Link
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(l)}
	if l.Err != nil {
		out.Error = errors.UserMessage(l.Err)
	}
	return json.Marshal(out)
}

// Resolver resolves package names to repository URLs through a registry,
// remembering successful lookups in a cache.
type Resolver struct {
	lang     *Language
	fetcher  Fetcher
	cache    cache.Cache
	keyer    cache.Keyer
	workers  int
	logger   *log.Logger
	progress func(done, total int)
}

// NewResolver creates a Resolver for lang. Registry responses and resolved
// URLs are stored in backend; pass nil to disable caching.
func NewResolver(lang *Language, backend cache.Cache) *Resolver {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Resolver{
		lang:    lang,
		fetcher: lang.NewFetcher(backend, cache.TTLHTTP),
		cache:   backend,
		keyer:   cache.NewDefaultKeyer(),
		workers: DefaultWorkers,
		logger:  log.Default(),
	}
}

// WithFetcher replaces the registry fetcher.
func (r *Resolver) WithFetcher(f Fetcher) *Resolver {
	r.fetcher = f
	return r
}

// WithKeyer replaces the keyer used for resolved URLs.
func (r *Resolver) WithKeyer(k cache.Keyer) *Resolver {
	if k != nil {
		r.keyer = k
	}
	return r
}

// WithProgress registers fn to be called after each package is resolved.
// fn is called from the worker goroutines and must be safe for concurrent
// use.
func (r *Resolver) WithProgress(fn func(done, total int)) *Resolver {
	r.progress = fn
	return r
}

// WithWorkers sets the number of concurrent lookups.
func (r *Resolver) WithWorkers(n int) *Resolver {
	if n > 0 {
		r.workers = n
	}
	return r
}

// WithLogger sets the logger used for per-package failures.
func (r *Resolver) WithLogger(l *log.Logger) *Resolver {
	if l != nil {
		r.logger = l
	}
	return r
}

// Resolve looks up every name and returns one Link per name, in input
// order. It never fails as a whole: lookup errors are carried on the Link
// as INVALID_PACKAGE, PACKAGE_NOT_FOUND or NETWORK_ERROR. A cancelled ctx marks the
// remaining packages with the context error.
func (r *Resolver) Resolve(ctx context.Context, names []string) []Link {
	links := make([]Link, len(names))
	var done atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for i, name := range names {
		g.Go(func() error {
			links[i] = r.resolveOne(ctx, name)
			if r.progress != nil {
				r.progress(int(done.Add(1)), len(names))
			}
			return nil
		})
	}
	_ = g.Wait()
	return links
}

func (r *Resolver) resolveOne(ctx context.Context, name string) Link {
	link := Link{Package: name}
	if err := ctx.Err(); err != nil {
		link.Err = err
		return link
	}
	if r.lang.Validate != nil {
		if err := r.lang.Validate(name); err != nil {
			link.Err = err
			return link
		}
	}

	key := r.keyer.RepoKey(r.lang.Name, name)
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok && len(data) > 0 {
		observability.Cache().OnCacheHit(ctx, "repo")
		link.RepoURL = string(data)
		link.Cached = true
		return link
	}
	observability.Cache().OnCacheMiss(ctx, "repo")

	url, err := r.fetcher.RepoURL(ctx, name)
	if err != nil {
		link.Err = classify(err, r.lang.Registry, name)
		r.logger.Warn("resolve failed", "package", name, "err", link.Err)
		return link
	}
	link.RepoURL = url
	if url != "" && r.cache.Set(ctx, key, []byte(url), cache.TTLRepo) == nil {
		observability.Cache().OnCacheSet(ctx, "repo", len(url))
	}
	return link
}

func classify(err error, registry, name string) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodePackageNotFound, err, "%s: no package %s", registry, name)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s: fetch %s", registry, name)
	}
}
