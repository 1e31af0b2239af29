package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/bulkclone/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var listScope string

//nolint:gochecknoglobals // required by cobra CLI pattern
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects and subgroups under a group",
	Long: `List every project (and optionally subgroup) reachable from the given
group, user or organization, walking nested subgroups depth-first.

Each line has the form "<Project|Subgroup> - <id> - <name>".`,
	RunE: runList,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	listCmd.Flags().StringVar(&listScope, "scope", string(domain.ScopeProjects),
		"What to list: projects, subgroups, or both")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	opts.Action = domain.ActionList
	opts.Scope = domain.ListingScope(listScope)

	service, err := injectService()
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	return service.Run(context.Background(), opts)
}
