package appsight

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jward/appsight/internal/corpus"
	"github.com/jward/appsight/internal/store"
	"github.com/jward/appsight/seq"
)

// Options configures Open.
type Options struct {
	environments  []string
	maxParallel   int
	inventoryPath string
	repoBaseURL   string
	appDomain     string
}

// Option customizes a Session.
type Option func(*Options)

// WithEnvironments restricts the load to the named environments.
func WithEnvironments(envs ...string) Option {
	return func(o *Options) { o.environments = envs }
}

// WithMaxParallel bounds concurrent archive loads.
func WithMaxParallel(n int) Option {
	return func(o *Options) { o.maxParallel = n }
}

// WithInventory points the session at a deployment inventory database.
// Without it the cache directory is scanned for archives.
func WithInventory(path string) Option {
	return func(o *Options) { o.inventoryPath = path }
}

// WithURLBases overrides the bases used for derived repo and app URLs.
func WithURLBases(repoBase, appDomain string) Option {
	return func(o *Options) {
		o.repoBaseURL = repoBase
		o.appDomain = appDomain
	}
}

// Session holds a loaded corpus. Records are immutable once loaded, so a
// session is safe for concurrent queries.
type Session struct {
	id      string
	dir     string
	records []*Record
}

// Open loads the corpus from dir and returns a queryable session.
func Open(ctx context.Context, dir string, opts ...Option) (*Session, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if fi, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("open corpus: %s is not a directory", dir)
	}

	var inv *store.Store
	if o.inventoryPath != "" {
		var err error
		inv, err = OpenInventory(o.inventoryPath)
		if err != nil {
			return nil, fmt.Errorf("open inventory: %w", err)
		}
		defer inv.Close()
	}

	records, err := corpus.Load(ctx, dir, inv, corpus.LoadOptions{
		Environments: o.environments,
		MaxParallel:  o.maxParallel,
		RepoBaseURL:  o.repoBaseURL,
		AppDomain:    o.appDomain,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		id:      uuid.NewString(),
		dir:     dir,
		records: records,
	}, nil
}

// ID is the unique identifier of this session.
func (s *Session) ID() string { return s.id }

// Dir is the cache directory the session was opened on.
func (s *Session) Dir() string { return s.dir }

// Len is the number of loaded records.
func (s *Session) Len() int { return len(s.records) }

// Apps returns a fresh lazy view over all loaded records. Each call starts
// a new pipeline; views never interfere with one another.
func (s *Session) Apps() Apps {
	return Apps{seq: seq.FromSlice(s.records)}
}

// Close releases the loaded records. The session must not be used after.
func (s *Session) Close() error {
	s.records = nil
	return nil
}
