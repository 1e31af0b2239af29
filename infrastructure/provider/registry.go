package provider

import (
	"fmt"
	"time"

	"github.com/rios0rios0/bulkclone/domain"
	"github.com/rios0rios0/bulkclone/infrastructure/httpapi"
	"github.com/rios0rios0/bulkclone/infrastructure/provider/github"
	"github.com/rios0rios0/bulkclone/infrastructure/provider/gitlab"
)

// Options carries the per-invocation settings every provider needs.
type Options struct {
	Token       string
	UseSSH      bool
	HTTPTimeout time.Duration
}

// Factory is a constructor function that creates a Provider for the
// given options.
type Factory func(opts Options) (domain.Provider, error)

// Registry manages all registered Git provider implementations.
type Registry struct {
	providers map[string]Factory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Factory),
	}
}

// Register adds a provider factory under the given name (e.g. "github").
func (r *Registry) Register(name string, factory Factory) {
	r.providers[name] = factory
}

// Get returns a configured provider instance for the given name.
func (r *Registry) Get(name string, opts Options) (domain.Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedPlatform, name)
	}
	return factory(opts)
}

// Names returns the list of registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Default returns a registry with the built-in GitLab and GitHub
// providers registered.
func Default() *Registry {
	registry := NewRegistry()
	registry.Register(httpapi.PlatformGitLab, func(opts Options) (domain.Provider, error) {
		platform, err := httpapi.ResolvePlatform(httpapi.PlatformGitLab, opts.Token)
		if err != nil {
			return nil, err
		}
		return gitlab.New(platform, httpapi.NewFetcher(opts.HTTPTimeout), opts.UseSSH), nil
	})
	registry.Register(httpapi.PlatformGitHub, func(opts Options) (domain.Provider, error) {
		platform, err := httpapi.ResolvePlatform(httpapi.PlatformGitHub, opts.Token)
		if err != nil {
			return nil, err
		}
		return github.New(platform, httpapi.NewFetcher(opts.HTTPTimeout), opts.UseSSH), nil
	})
	return registry
}
