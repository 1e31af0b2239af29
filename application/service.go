package application

import (
	"context"
	"fmt"
	"io"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
	"github.com/rios0rios0/bulkclone/infrastructure/cloner"
	"github.com/rios0rios0/bulkclone/infrastructure/httpapi"
	"github.com/rios0rios0/bulkclone/infrastructure/provider"
)

// Options holds the runtime settings for a single run.
type Options struct {
	Platform    string
	Group       string
	Token       string
	Action      domain.Action
	Scope       domain.ListingScope
	UseSSH      bool
	Flatten     bool
	GitArgs     []string
	UseBuiltin  bool
	CloneDepth  int
	DestDir     string
	Concurrency int

	HTTPTimeout  time.Duration
	CloneTimeout time.Duration

	// Out receives listing output; defaults to discarding nothing and
	// must be set by the caller (the CLI passes stdout).
	Out io.Writer
}

// Service orchestrates one top-level run: resolve the platform and
// entities, traverse, and either print the listing or dispatch clones.
type Service struct {
	registry *provider.Registry

	// Cloner overrides the backend selection when set; used by tests.
	Cloner domain.Cloner
}

// NewService creates a service over the given provider registry.
func NewService(registry *provider.Registry) *Service {
	return &Service{registry: registry}
}

// Run executes the requested action.
func (s *Service) Run(ctx context.Context, opts Options) error {
	prov, err := s.registry.Get(opts.Platform, provider.Options{
		Token:       opts.Token,
		UseSSH:      opts.UseSSH,
		HTTPTimeout: opts.HTTPTimeout,
	})
	if err != nil {
		return err
	}

	if err := prov.CheckToken(ctx); err != nil {
		return fmt.Errorf("token check for %s failed: %w", prov.Name(), err)
	}

	entities, err := prov.ResolveEntities(ctx, opts.Group)
	if err != nil {
		return err
	}
	logger.Debugf("Resolved %q to %d entities", opts.Group, len(entities))

	collector := NewCollector(prov)

	switch opts.Action {
	case domain.ActionList:
		return s.list(ctx, collector, entities, opts)
	case domain.ActionClone:
		return s.clone(ctx, prov, collector, entities, opts)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedAction, opts.Action)
	}
}

func (s *Service) list(ctx context.Context, collector *Collector, entities []domain.Entity, opts Options) error {
	items, err := collector.Listing(ctx, entities, opts.Scope)
	if err != nil {
		return err
	}

	for _, item := range items {
		if _, err := fmt.Fprintln(opts.Out, item.String()); err != nil {
			return fmt.Errorf("failed to write listing: %w", err)
		}
	}
	return nil
}

func (s *Service) clone(ctx context.Context, prov domain.Provider, collector *Collector, entities []domain.Entity, opts Options) error {
	flatten := opts.Flatten
	if opts.Platform == httpapi.PlatformGitHub {
		// GitHub has no namespace hierarchy to preserve.
		flatten = true
	}

	if err := PrepareDestination(opts.DestDir); err != nil {
		return err
	}

	backend, err := s.cloneBackend(opts)
	if err != nil {
		return err
	}

	// The dispatcher leaves the stream undrained on an abort, so the
	// traversal context must be cancelled to release the producer.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := collector.Projects(ctx, entities)
	dispatcher := NewDispatcher(backend, opts.Concurrency)

	results, err := dispatcher.Run(ctx, stream, opts.DestDir, flatten)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Infof("Cloned %d of %d repositories from %s", len(results)-failed, len(results), prov.Name())
	return err
}

func (s *Service) cloneBackend(opts Options) (domain.Cloner, error) {
	if s.Cloner != nil {
		return s.Cloner, nil
	}
	// Extra git arguments only make sense with the real git binary.
	if opts.UseBuiltin && len(opts.GitArgs) == 0 {
		return cloner.NewGoGit(opts.Token, opts.CloneDepth, opts.CloneTimeout), nil
	}
	return cloner.NewGitCLI(opts.GitArgs, opts.CloneTimeout)
}
