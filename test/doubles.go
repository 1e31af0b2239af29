// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. No mock frameworks are used.
package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/bulkclone/domain"
)

// ---------------------------------------------------------------------------
// SpyProvider
// ---------------------------------------------------------------------------

// SpyProvider implements domain.Provider as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyProvider struct {
	// --- identity ---
	ProviderName string
	Subgroups    bool

	// --- CheckToken ---
	CheckTokenErr error
	// spy: number of token checks performed
	CheckTokenCalls int

	// --- ResolveEntities ---
	Entities   []domain.Entity
	ResolveErr error
	// spy: names that were resolved
	ResolvedNames []string

	// --- ListProjects ---
	ProjectsByEntity map[string][]domain.Repository
	ListProjectsErr  error
	// spy: entity IDs in call order
	ProjectCalls []string

	// --- ListSubgroups ---
	SubgroupsByEntity map[string][]domain.Entity
	ListSubgroupsErr  error
	// spy: entity IDs in call order
	SubgroupCalls []string

	// --- ListItems ---
	ItemsByEntity map[string][]domain.ListingItem
	ListItemsErr  error
}

var _ domain.Provider = (*SpyProvider)(nil)

func (p *SpyProvider) Name() string {
	if p.ProviderName == "" {
		return "spy"
	}
	return p.ProviderName
}

func (p *SpyProvider) SupportsSubgroups() bool { return p.Subgroups }

func (p *SpyProvider) CheckToken(_ context.Context) error {
	p.CheckTokenCalls++
	return p.CheckTokenErr
}

func (p *SpyProvider) ResolveEntities(_ context.Context, nameOrID string) ([]domain.Entity, error) {
	p.ResolvedNames = append(p.ResolvedNames, nameOrID)
	if p.ResolveErr != nil {
		return nil, p.ResolveErr
	}
	if len(p.Entities) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrGroupNotFound, nameOrID)
	}
	return p.Entities, nil
}

func (p *SpyProvider) ListProjects(_ context.Context, entity domain.Entity) ([]domain.Repository, error) {
	p.ProjectCalls = append(p.ProjectCalls, entity.ID)
	if p.ListProjectsErr != nil {
		return nil, p.ListProjectsErr
	}
	return p.ProjectsByEntity[entity.ID], nil
}

func (p *SpyProvider) ListSubgroups(_ context.Context, entity domain.Entity) ([]domain.Entity, error) {
	p.SubgroupCalls = append(p.SubgroupCalls, entity.ID)
	if !p.Subgroups {
		return nil, domain.ErrSubgroupsUnsupported
	}
	if p.ListSubgroupsErr != nil {
		return nil, p.ListSubgroupsErr
	}
	return p.SubgroupsByEntity[entity.ID], nil
}

func (p *SpyProvider) ListItems(_ context.Context, entity domain.Entity, _ domain.ListingScope) ([]domain.ListingItem, error) {
	if p.ListItemsErr != nil {
		return nil, p.ListItemsErr
	}
	return p.ItemsByEntity[entity.ID], nil
}

// ---------------------------------------------------------------------------
// SpyCloner
// ---------------------------------------------------------------------------

// SpyCloner implements domain.Cloner, recording every task it receives.
// Tasks whose source URL appears in FailURLs report the mapped error.
type SpyCloner struct {
	mu       sync.Mutex
	tasks    []domain.CloneTask
	FailURLs map[string]error
}

var _ domain.Cloner = (*SpyCloner)(nil)

func (c *SpyCloner) Clone(_ context.Context, task domain.CloneTask) error {
	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.mu.Unlock()

	if c.FailURLs != nil {
		if err, ok := c.FailURLs[task.SourceURL]; ok {
			return err
		}
	}
	return nil
}

// Tasks returns a snapshot of the recorded tasks.
func (c *SpyCloner) Tasks() []domain.CloneTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CloneTask(nil), c.tasks...)
}
