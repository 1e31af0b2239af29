package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
)

// maxTraversalDepth bounds the subgroup descent. The platforms enforce
// acyclic group graphs, but the traversal does not rely on that.
const maxTraversalDepth = 100

// CollectResult is one streamed traversal outcome: either a repository
// or a terminal error. A result carrying a non-nil Err is the last one
// sent before the channel closes.
type CollectResult struct {
	Repo domain.Repository
	Err  error
}

// Collector walks an entity and every reachable subgroup depth-first,
// using an explicit worklist instead of call-stack recursion. It owns
// the traversal state (visited set, pending stack) for the duration of
// one invocation; nothing is retained across invocations.
type Collector struct {
	provider domain.Provider
}

// NewCollector creates a collector over the given provider.
func NewCollector(provider domain.Provider) *Collector {
	return &Collector{provider: provider}
}

type frame struct {
	entity domain.Entity
	depth  int
}

// Projects streams the repositories of the given root entities and all
// their subgroups in deterministic depth-first order: an entity's own
// projects come before any of its subgroups' projects. The channel is
// closed when the traversal finishes. A consumer that stops reading
// early must cancel ctx so the producer goroutine can exit.
func (c *Collector) Projects(ctx context.Context, roots []domain.Entity) <-chan CollectResult {
	out := make(chan CollectResult)

	go func() {
		defer close(out)

		send := func(res CollectResult) bool {
			select {
			case out <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}

		stack := pushReversed(nil, roots, 0)
		visited := make(map[string]bool)

		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if visited[current.entity.ID] {
				continue
			}
			visited[current.entity.ID] = true

			repos, err := c.provider.ListProjects(ctx, current.entity)
			if err != nil {
				send(CollectResult{Err: err})
				return
			}
			for _, repo := range repos {
				if !send(CollectResult{Repo: repo}) {
					return
				}
			}

			if !c.provider.SupportsSubgroups() {
				continue
			}

			if current.depth >= maxTraversalDepth {
				logger.Warnf("Not descending below group %s: depth limit %d reached",
					current.entity.ID, maxTraversalDepth)
				continue
			}

			subgroups, err := c.provider.ListSubgroups(ctx, current.entity)
			if err != nil {
				send(CollectResult{Err: err})
				return
			}
			stack = pushReversed(stack, subgroups, current.depth+1)
		}
	}()

	return out
}

// Listing walks the same traversal as Projects but accumulates listing
// lines per scope. A subgroup scope on a platform without subgroups
// fails before any request is made. Each entity's subgroups endpoint is
// fetched exactly once; the result feeds both the output and the descent.
func (c *Collector) Listing(ctx context.Context, roots []domain.Entity, scope domain.ListingScope) ([]domain.ListingItem, error) {
	switch scope {
	case domain.ScopeProjects, domain.ScopeSubgroups, domain.ScopeBoth:
	default:
		return nil, fmt.Errorf("%w: listing scope %q", domain.ErrUnsupportedType, scope)
	}

	wantSubgroups := scope == domain.ScopeSubgroups || scope == domain.ScopeBoth
	wantProjects := scope == domain.ScopeProjects || scope == domain.ScopeBoth
	if wantSubgroups && !c.provider.SupportsSubgroups() {
		return nil, domain.ErrSubgroupsUnsupported
	}

	var items []domain.ListingItem
	stack := pushReversed(nil, roots, 0)
	visited := make(map[string]bool)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current.entity.ID] {
			continue
		}
		visited[current.entity.ID] = true

		if wantProjects {
			projectItems, err := c.provider.ListItems(ctx, current.entity, domain.ScopeProjects)
			if err != nil {
				return nil, err
			}
			items = append(items, projectItems...)
		}

		if !c.provider.SupportsSubgroups() || current.depth >= maxTraversalDepth {
			continue
		}

		subgroups, err := c.provider.ListSubgroups(ctx, current.entity)
		if err != nil {
			return nil, err
		}
		if wantSubgroups {
			for _, sub := range subgroups {
				items = append(items, domain.ListingItem{
					Prefix:      domain.PrefixSubgroup,
					ID:          sub.ID,
					DisplayName: sub.Name,
				})
			}
		}
		stack = pushReversed(stack, subgroups, current.depth+1)
	}

	return items, nil
}

// pushReversed appends entities in reverse so the first one is expanded
// next, preserving depth-first order on a LIFO stack.
func pushReversed(stack []frame, entities []domain.Entity, depth int) []frame {
	for i := len(entities) - 1; i >= 0; i-- {
		stack = append(stack, frame{entity: entities[i], depth: depth})
	}
	return stack
}
