package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
	"github.com/rios0rios0/bulkclone/infrastructure/httpapi"
)

const (
	providerName = "github"
	perPage      = 100
)

// Provider implements domain.Provider for GitHub. GitHub has no nested
// group concept, so entities are users or organizations and the
// distinction selects the repository listing endpoint.
type Provider struct {
	platform httpapi.Platform
	fetcher  *httpapi.Fetcher
	useSSH   bool
}

// New creates a GitHub provider over the resolved platform configuration.
func New(platform httpapi.Platform, fetcher *httpapi.Fetcher, useSSH bool) *Provider {
	return &Provider{
		platform: platform,
		fetcher:  fetcher,
		useSSH:   useSSH,
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) SupportsSubgroups() bool { return false }

// CheckToken probes the authenticated-user endpoint.
func (p *Provider) CheckToken(ctx context.Context) error {
	status, body, err := p.fetcher.Probe(ctx, p.platform, p.platform.BaseURL+"/user")
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: github rejected the token", domain.ErrInvalidToken)
	}
	if status != http.StatusOK {
		return &domain.StatusError{Code: status, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// ResolveEntities maps a login or numeric ID to a single entity. Logins
// are classified as user or organization via the type field of the
// users endpoint; numeric IDs are passed through unclassified and
// resolved lazily before the first listing call.
func (p *Provider) ResolveEntities(ctx context.Context, nameOrID string) ([]domain.Entity, error) {
	if domain.IsNumericID(nameOrID) {
		return []domain.Entity{{
			ID:           nameOrID,
			Kind:         domain.KindUnknown,
			ProviderName: providerName,
		}}, nil
	}

	obj, err := p.fetcher.FetchObject(ctx, p.platform, p.platform.BaseURL+"/users/"+url.PathEscape(nameOrID))
	if err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %q", domain.ErrGroupNotFound, nameOrID)
		}
		return nil, fmt.Errorf("failed to resolve %q: %w", nameOrID, err)
	}

	kind, err := classify(obj)
	if err != nil {
		return nil, err
	}

	entity := domain.Entity{
		Name:         nameOrID,
		Kind:         kind,
		ProviderName: providerName,
	}

	// The users endpoint already carries the canonical ID for users; for
	// organizations the orgs endpoint is authoritative.
	if kind == domain.KindOrganization {
		obj, err = p.fetcher.FetchObject(ctx, p.platform, p.platform.BaseURL+"/orgs/"+url.PathEscape(nameOrID))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve organization %q: %w", nameOrID, err)
		}
	}

	id, ok := httpapi.IDString(obj)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrGroupNotFound, nameOrID)
	}
	entity.ID = id

	if login, ok := httpapi.FirstString(obj, "login"); ok {
		entity.Name = login
	}

	return []domain.Entity{entity}, nil
}

// ListProjects returns the repositories owned by a user or organization.
func (p *Provider) ListProjects(ctx context.Context, entity domain.Entity) ([]domain.Repository, error) {
	entity, err := p.ensureClassified(ctx, entity)
	if err != nil {
		return nil, err
	}

	listURL, err := p.reposURL(entity)
	if err != nil {
		return nil, err
	}

	elements, err := p.fetcher.FetchAll(ctx, p.platform, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of %q: %w", entity.Name, err)
	}

	var repos []domain.Repository
	for _, raw := range elements {
		obj, ok := httpapi.DecodeObject(raw)
		if !ok {
			logger.Warnf("Skipping malformed repository entry for %q", entity.Name)
			continue
		}

		cloneURL, ok := p.cloneURLField(obj)
		if !ok {
			logger.Warnf("Skipping repository without a clone URL for %q", entity.Name)
			continue
		}

		// Namespace hierarchy is flattened on GitHub.
		repos = append(repos, domain.Repository{CloneURL: cloneURL})
	}
	return repos, nil
}

// ListSubgroups always fails: GitHub has no subgroup concept.
func (p *Provider) ListSubgroups(_ context.Context, _ domain.Entity) ([]domain.Entity, error) {
	return nil, domain.ErrSubgroupsUnsupported
}

// ListItems returns the entity's repositories as listing lines. A scope
// that asks for subgroups fails before any request is made.
func (p *Provider) ListItems(ctx context.Context, entity domain.Entity, scope domain.ListingScope) ([]domain.ListingItem, error) {
	switch scope {
	case domain.ScopeSubgroups, domain.ScopeBoth:
		return nil, domain.ErrSubgroupsUnsupported
	case domain.ScopeProjects:
		// continue below
	default:
		return nil, fmt.Errorf("%w: listing scope %q", domain.ErrUnsupportedType, scope)
	}

	entity, err := p.ensureClassified(ctx, entity)
	if err != nil {
		return nil, err
	}

	listURL, err := p.reposURL(entity)
	if err != nil {
		return nil, err
	}

	elements, err := p.fetcher.FetchAll(ctx, p.platform, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of %q: %w", entity.Name, err)
	}

	var items []domain.ListingItem
	for _, raw := range elements {
		obj, ok := httpapi.DecodeObject(raw)
		if !ok {
			logger.Warnf("Skipping element that is not an object: %s", string(raw))
			continue
		}

		name, ok := httpapi.FirstString(obj, "full_path", "full_name", "name")
		if !ok {
			continue
		}

		id, ok := httpapi.IDString(obj)
		if !ok {
			continue
		}

		items = append(items, domain.ListingItem{Prefix: domain.PrefixProject, ID: id, DisplayName: name})
	}
	return items, nil
}

// ensureClassified resolves the login and kind of a numeric-ID entity so
// the correct listing endpoint can be picked.
func (p *Provider) ensureClassified(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	if entity.Kind != domain.KindUnknown && entity.Name != "" {
		return entity, nil
	}

	obj, err := p.fetcher.FetchObject(ctx, p.platform, p.platform.BaseURL+"/user/"+url.PathEscape(entity.ID))
	if err != nil {
		return entity, fmt.Errorf("failed to look up entity %s: %w", entity.ID, err)
	}

	kind, err := classify(obj)
	if err != nil {
		return entity, err
	}
	entity.Kind = kind

	login, ok := httpapi.FirstString(obj, "login")
	if !ok {
		return entity, fmt.Errorf("%w: entity %s has no login", domain.ErrInvalidEntityType, entity.ID)
	}
	entity.Name = login

	return entity, nil
}

func (p *Provider) reposURL(entity domain.Entity) (string, error) {
	login := url.PathEscape(entity.Name)
	switch entity.Kind {
	case domain.KindUser:
		return fmt.Sprintf("%s/users/%s/repos?per_page=%d", p.platform.BaseURL, login, perPage), nil
	case domain.KindOrganization:
		return fmt.Sprintf("%s/orgs/%s/repos?per_page=%d", p.platform.BaseURL, login, perPage), nil
	default:
		return "", fmt.Errorf("%w: cannot list repositories of kind %q", domain.ErrInvalidEntityType, entity.Kind)
	}
}

func (p *Provider) cloneURLField(obj map[string]json.RawMessage) (string, bool) {
	if p.useSSH {
		return httpapi.FirstString(obj, "ssh_url")
	}
	return httpapi.FirstString(obj, "clone_url")
}

// classify maps the GitHub type field to an entity kind.
func classify(obj map[string]json.RawMessage) (domain.EntityKind, error) {
	entityType, ok := httpapi.FirstString(obj, "type")
	if !ok {
		return domain.KindUnknown, fmt.Errorf("%w: missing type field", domain.ErrUnknownEntityType)
	}

	switch entityType {
	case "User":
		return domain.KindUser, nil
	case "Organization":
		return domain.KindOrganization, nil
	default:
		return domain.KindUnknown, fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, entityType)
	}
}
