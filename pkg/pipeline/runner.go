package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerscape/pkg/arch"
	"github.com/matzehuels/layerscape/pkg/cache"
	"github.com/matzehuels/layerscape/pkg/config"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/layout"
	"github.com/matzehuels/layerscape/pkg/observability"
	"github.com/matzehuels/layerscape/pkg/scale"
	"github.com/matzehuels/layerscape/pkg/scene"
	"github.com/matzehuels/layerscape/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can share one.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher *source.Fetcher
	Logger  *log.Logger

	cfg config.Config
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConfig sets the models, layout and cache TTL the runner uses.
func WithConfig(cfg config.Config) RunnerOption { return func(r *Runner) { r.cfg = cfg } }

// WithFetcher replaces the default fetcher.
func WithFetcher(f *source.Fetcher) RunnerOption { return func(r *Runner) { r.Fetcher = f } }

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		cfg:    config.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Fetcher == nil {
		r.Fetcher = source.NewFetcher(source.WithLogger(logger))
	}
	return r
}

// Execute runs load and layout with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Ref == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no architecture reference given")
	}
	result := &Result{}

	loadStart := time.Now()
	a, sourceHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Architecture = a
	result.ArchHash = archHash(a)
	result.Stats.Layers = a.Len()
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.SourceHit = sourceHit

	r.Logger.Info("loaded architecture",
		"name", a.Name,
		"layers", a.Len(),
		"duration", result.Stats.LoadTime)

	layoutStart := time.Now()
	doc, sceneHit, err := r.LayoutWithCacheInfo(ctx, a, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.Nodes = len(doc.Nodes)
	result.Stats.Diagnostics = len(doc.Diagnostics)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.SceneHit = sceneHit

	r.Logger.Info("computed layout",
		"nodes", len(doc.Nodes),
		"depth", doc.PlacedDepth,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// LoadWithCacheInfo resolves opts.Ref and reports whether the payload came
// from the cache. Only remote payloads are cached.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*arch.Architecture, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Ref)
	start := time.Now()

	a, hit, err := r.load(ctx, opts)
	layers := 0
	if a != nil {
		layers = a.Len()
	}
	hooks.OnLoadComplete(ctx, opts.Ref, layers, time.Since(start), err)
	return a, hit, err
}

// Load is a convenience wrapper that discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*arch.Architecture, error) {
	a, _, err := r.LoadWithCacheInfo(ctx, opts)
	return a, err
}

func (r *Runner) load(ctx context.Context, opts Options) (*arch.Architecture, bool, error) {
	endpoint, name := "", ""
	if ep, ok := r.cfg.Models[opts.Ref]; ok {
		endpoint, name = ep, opts.Ref
	} else if source.IsURL(opts.Ref) {
		endpoint = opts.Ref
	}
	if endpoint == "" {
		a, err := source.Load(ctx, r.Fetcher, nil, opts.Ref, opts.Stdin)
		return a, false, err
	}

	key := r.Keyer.SourceKey(endpoint)
	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, key); ok {
			if a, err := arch.Decode(data, arch.FormatAuto); err == nil {
				finishRemote(a, endpoint, name)
				return a, true, nil
			}
			r.Logger.Debug("discarding undecodable cached payload", "key", key)
		}
	}

	data, err := r.Fetcher.FetchBytes(ctx, endpoint)
	if err != nil {
		return nil, false, err
	}
	a, err := arch.Decode(data, arch.FormatAuto)
	if err != nil {
		return nil, false, err
	}
	r.cacheSet(ctx, key, data)
	finishRemote(a, endpoint, name)
	return a, false, nil
}

func finishRemote(a *arch.Architecture, endpoint, name string) {
	if a.Source == "" {
		a.Source = endpoint
	}
	if a.Name == "" {
		a.Name = name
	}
}

// LayoutWithCacheInfo builds and exports the scene for a, and reports
// whether the document came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, a *arch.Architecture, refresh bool) (scene.Document, bool, error) {
	if a == nil {
		return scene.Document{}, false, errs.New(errs.ErrCodeInvalidInput, "no architecture")
	}
	key := r.Keyer.SceneKey(archHash(a), r.configHash())

	if !refresh {
		if data, ok := r.cacheGet(ctx, key); ok {
			if doc, err := scene.UnmarshalDocument(data); err == nil {
				return doc, true, nil
			}
			r.Logger.Debug("discarding undecodable cached scene", "key", key)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, a.Name, a.Len())
	start := time.Now()

	opts := append(r.cfg.LayoutOptions(), layout.WithLogger(r.Logger))
	s := layout.Build(a, opts...)
	doc := scene.Export(s)
	hooks.OnLayoutComplete(ctx, a.Name, s.Len(), len(s.Diagnostics), time.Since(start))

	if data, err := scene.MarshalDocument(doc); err == nil {
		r.cacheSet(ctx, key, data)
	}
	return doc, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, a *arch.Architecture) (scene.Document, error) {
	doc, _, err := r.LayoutWithCacheInfo(ctx, a, false)
	return doc, err
}

// Config returns the configuration the runner was built with.
func (r *Runner) Config() config.Config { return r.cfg }

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet treats backend errors as misses; a broken cache never fails a run.
func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.cfg.Cache.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

func (r *Runner) configHash() string {
	return cache.HashJSON(struct {
		Layout layout.Config
		Scale  scale.Sigmoid
	}{r.cfg.LayoutConfig(), r.cfg.Scale})
}

func archHash(a *arch.Architecture) string {
	data, err := arch.Marshal(a)
	if err != nil {
		return cache.HashJSON(a)
	}
	return cache.Hash(data)
}
