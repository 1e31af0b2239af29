package domain

import (
	"fmt"
	"strings"
)

// EntityKind classifies the owner of a set of repositories.
type EntityKind string

const (
	KindGroup        EntityKind = "group"
	KindUser         EntityKind = "user"
	KindOrganization EntityKind = "organization"
	KindUnknown      EntityKind = "unknown"
)

// Entity is a group, user or organization that owns zero or more
// repositories. Name carries the login or group path when the entity was
// resolved by name; it is empty when the caller supplied a raw numeric ID.
type Entity struct {
	ID           string
	Name         string
	Kind         EntityKind
	ProviderName string
}

// Repository describes a single clonable repository. NamespacePath is the
// full hierarchical path of the owning namespace on GitLab and empty on
// GitHub, where the layout is flattened.
type Repository struct {
	CloneURL      string
	NamespacePath string
}

// Name derives the repository name from the final path segment of the
// clone URL. Both HTTP(S) and scp-style SSH URLs are handled.
func (r Repository) Name() string {
	name := strings.TrimSuffix(r.CloneURL, ".git")
	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// CloneTask pairs a source URL with its destination working tree path.
// Tasks are immutable once constructed and consumed exactly once.
type CloneTask struct {
	SourceURL string
	DestPath  string
}

// ListingScope selects what a listing run reports.
type ListingScope string

const (
	ScopeProjects  ListingScope = "projects"
	ScopeSubgroups ListingScope = "subgroups"
	ScopeBoth      ListingScope = "both"
)

// Action is the top-level operation requested by the user.
type Action string

const (
	ActionList  Action = "list"
	ActionClone Action = "clone"
)

// ListingItem is one line of listing output.
type ListingItem struct {
	Prefix      string // "Project" or "Subgroup"
	ID          string
	DisplayName string
}

const (
	PrefixProject  = "Project"
	PrefixSubgroup = "Subgroup"
)

func (i ListingItem) String() string {
	return fmt.Sprintf("%s - %s - %s", i.Prefix, i.ID, i.DisplayName)
}

// IsNumericID reports whether s consists solely of ASCII digits, in which
// case it is taken verbatim as a platform entity ID without any lookup.
func IsNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
