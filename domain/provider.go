package domain

import "context"

// Provider abstracts a Git hosting service (GitHub, GitLab). Each
// implementation handles authentication, entity resolution and
// repository discovery for its platform.
type Provider interface {
	// Name returns the provider identifier (e.g. "github", "gitlab").
	Name() string

	// SupportsSubgroups reports whether the platform has nested groups.
	SupportsSubgroups() bool

	// CheckToken verifies that the configured token is accepted by the
	// platform before any traversal starts.
	CheckToken(ctx context.Context) error

	// ResolveEntities maps a human name or numeric ID to one or more
	// entities. All-digit input is taken verbatim as a single entity ID
	// without touching the network. A name that resolves to nothing
	// yields ErrGroupNotFound.
	ResolveEntities(ctx context.Context, nameOrID string) ([]Entity, error)

	// ListProjects returns every repository directly owned by the entity.
	ListProjects(ctx context.Context, entity Entity) ([]Repository, error)

	// ListSubgroups returns the entity's direct subgroups. Platforms
	// without nested groups return ErrSubgroupsUnsupported.
	ListSubgroups(ctx context.Context, entity Entity) ([]Entity, error)

	// ListItems returns the entity's direct children as listing lines,
	// filtered by scope. Malformed elements are skipped, not fatal.
	ListItems(ctx context.Context, entity Entity, scope ListingScope) ([]ListingItem, error)
}

// Cloner executes a single clone task, leaving a working tree at the
// task's destination path on success.
type Cloner interface {
	Clone(ctx context.Context, task CloneTask) error
}
