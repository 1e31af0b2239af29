package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
	"github.com/rios0rios0/bulkclone/infrastructure/httpapi"
)

const (
	providerName = "gitlab"
	perPage      = 100
)

// unauthorizedMarker is the body GitLab returns on a rejected token.
const unauthorizedMarker = "401 Unauthorized"

// Provider implements domain.Provider for GitLab. Every entity is a
// group; nested subgroups are first-class and drive the traversal.
type Provider struct {
	platform httpapi.Platform
	fetcher  *httpapi.Fetcher
	useSSH   bool
}

// New creates a GitLab provider over the resolved platform configuration.
func New(platform httpapi.Platform, fetcher *httpapi.Fetcher, useSSH bool) *Provider {
	return &Provider{
		platform: platform,
		fetcher:  fetcher,
		useSSH:   useSSH,
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) SupportsSubgroups() bool { return true }

// CheckToken probes a cheap authenticated endpoint and maps GitLab's
// rejection body to ErrInvalidToken.
func (p *Provider) CheckToken(ctx context.Context) error {
	probeURL := p.platform.BaseURL + "/projects?per_page=1"
	status, body, err := p.fetcher.Probe(ctx, p.platform, probeURL)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && strings.Contains(string(body), unauthorizedMarker) {
		return fmt.Errorf("%w: gitlab rejected the token", domain.ErrInvalidToken)
	}
	if status != http.StatusOK {
		return &domain.StatusError{Code: status, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// ResolveEntities maps a group name or numeric ID to group entities.
// A name search may legitimately match several groups; all of them are
// returned and traversed independently.
func (p *Provider) ResolveEntities(ctx context.Context, nameOrID string) ([]domain.Entity, error) {
	if domain.IsNumericID(nameOrID) {
		return []domain.Entity{{
			ID:           nameOrID,
			Kind:         domain.KindGroup,
			ProviderName: providerName,
		}}, nil
	}

	searchURL := p.platform.BaseURL + "/groups?search=" + url.QueryEscape(nameOrID)
	elements, err := p.fetcher.FetchAll(ctx, p.platform, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to search for group %q: %w", nameOrID, err)
	}

	var entities []domain.Entity
	for _, raw := range elements {
		obj, ok := httpapi.DecodeObject(raw)
		if !ok {
			logger.Warnf("Skipping malformed group search result for %q", nameOrID)
			continue
		}

		id, ok := httpapi.IDString(obj)
		if !ok {
			continue
		}

		name, _ := httpapi.FirstString(obj, "full_path", "name")
		entities = append(entities, domain.Entity{
			ID:           id,
			Name:         name,
			Kind:         domain.KindGroup,
			ProviderName: providerName,
		})
	}

	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrGroupNotFound, nameOrID)
	}
	return entities, nil
}

// ListProjects returns the repositories directly owned by a group.
func (p *Provider) ListProjects(ctx context.Context, entity domain.Entity) ([]domain.Repository, error) {
	listURL := p.platform.BaseURL + "/groups/" + url.PathEscape(entity.ID) + "/projects?per_page=" + strconv.Itoa(perPage)
	elements, err := p.fetcher.FetchAll(ctx, p.platform, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects of group %s: %w", entity.ID, err)
	}

	var repos []domain.Repository
	for _, raw := range elements {
		obj, ok := httpapi.DecodeObject(raw)
		if !ok {
			logger.Warnf("Skipping malformed project entry in group %s", entity.ID)
			continue
		}

		cloneURL, ok := p.cloneURL(obj)
		if !ok {
			logger.Warnf("Skipping project without a clone URL in group %s", entity.ID)
			continue
		}

		repos = append(repos, domain.Repository{
			CloneURL:      cloneURL,
			NamespacePath: namespacePath(obj),
		})
	}
	return repos, nil
}

// ListSubgroups returns the group's direct subgroups.
func (p *Provider) ListSubgroups(ctx context.Context, entity domain.Entity) ([]domain.Entity, error) {
	listURL := p.platform.BaseURL + "/groups/" + url.PathEscape(entity.ID) + "/subgroups?per_page=" + strconv.Itoa(perPage)
	elements, err := p.fetcher.FetchAll(ctx, p.platform, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list subgroups of group %s: %w", entity.ID, err)
	}

	var subgroups []domain.Entity
	for _, raw := range elements {
		obj, ok := httpapi.DecodeObject(raw)
		if !ok {
			logger.Warnf("Skipping malformed subgroup entry in group %s", entity.ID)
			continue
		}

		id, ok := httpapi.IDString(obj)
		if !ok {
			continue
		}

		name, _ := httpapi.FirstString(obj, "full_path", "full_name", "name")
		subgroups = append(subgroups, domain.Entity{
			ID:           id,
			Name:         name,
			Kind:         domain.KindGroup,
			ProviderName: providerName,
		})
	}
	return subgroups, nil
}

// ListItems returns the group's direct children as listing lines.
func (p *Provider) ListItems(ctx context.Context, entity domain.Entity, scope domain.ListingScope) ([]domain.ListingItem, error) {
	if scope != domain.ScopeProjects && scope != domain.ScopeSubgroups && scope != domain.ScopeBoth {
		return nil, fmt.Errorf("%w: listing scope %q", domain.ErrUnsupportedType, scope)
	}

	var items []domain.ListingItem

	if scope == domain.ScopeProjects || scope == domain.ScopeBoth {
		listURL := p.platform.BaseURL + "/groups/" + url.PathEscape(entity.ID) + "/projects?per_page=" + strconv.Itoa(perPage)
		projectItems, err := p.listItems(ctx, listURL, domain.PrefixProject)
		if err != nil {
			return nil, err
		}
		items = append(items, projectItems...)
	}

	if scope == domain.ScopeSubgroups || scope == domain.ScopeBoth {
		listURL := p.platform.BaseURL + "/groups/" + url.PathEscape(entity.ID) + "/subgroups?per_page=" + strconv.Itoa(perPage)
		subgroupItems, err := p.listItems(ctx, listURL, domain.PrefixSubgroup)
		if err != nil {
			return nil, err
		}
		items = append(items, subgroupItems...)
	}

	return items, nil
}

func (p *Provider) listItems(ctx context.Context, listURL, prefix string) ([]domain.ListingItem, error) {
	elements, err := p.fetcher.FetchAll(ctx, p.platform, listURL)
	if err != nil {
		return nil, err
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

		items = append(items, domain.ListingItem{Prefix: prefix, ID: id, DisplayName: name})
	}
	return items, nil
}

func (p *Provider) cloneURL(obj map[string]json.RawMessage) (string, bool) {
	if p.useSSH {
		return httpapi.FirstString(obj, "ssh_url_to_repo")
	}
	return httpapi.FirstString(obj, "http_url_to_repo")
}

// namespacePath extracts the full hierarchical path of the owning
// namespace, falling back to everything before the final segment of
// path_with_namespace.
func namespacePath(obj map[string]json.RawMessage) string {
	if rawNamespace, ok := obj["namespace"]; ok {
		if namespace, ok := httpapi.DecodeObject(rawNamespace); ok {
			if path, ok := httpapi.FirstString(namespace, "full_path"); ok {
				return path
			}
		}
	}

	if full, ok := httpapi.FirstString(obj, "path_with_namespace"); ok {
		if idx := strings.LastIndex(full, "/"); idx > 0 {
			return full[:idx]
		}
	}
	return ""
}
