package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/bulkclone/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	cloneDest    string
	cloneFlatten bool
	cloneJobs    int
	cloneGitArgs []string
	cloneBuiltin bool
	cloneDepth   int
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Clone every repository under a group",
	Long: `Clone every repository reachable from the given group, user or
organization into the destination directory.

GitLab namespace hierarchies are mirrored on disk unless --flatten is
given; GitHub repositories always land directly under the destination.
The destination must be empty (it is created when missing).`,
	RunE: runClone,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	cloneCmd.Flags().StringVarP(&cloneDest, "dest", "d", ".",
		"Destination directory for the clones")
	cloneCmd.Flags().BoolVar(&cloneFlatten, "flatten", false,
		"Clone directly under the destination, ignoring namespaces")
	cloneCmd.Flags().IntVarP(&cloneJobs, "jobs", "j", 0,
		"Number of parallel clone workers (1 means sequential)")
	cloneCmd.Flags().StringSliceVar(&cloneGitArgs, "git-args", nil,
		"Extra arguments passed to git clone (forces the git binary)")
	cloneCmd.Flags().BoolVar(&cloneBuiltin, "builtin", false,
		"Use the built-in Git implementation instead of the git binary")
	cloneCmd.Flags().IntVar(&cloneDepth, "depth", 0,
		"Shallow clone depth for the built-in implementation (0 means full)")
	rootCmd.AddCommand(cloneCmd)
}

func runClone(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	opts.Action = domain.ActionClone
	opts.UseBuiltin = cloneBuiltin
	opts.CloneDepth = cloneDepth

	flags := cmd.Flags()
	if flags.Changed("dest") || opts.DestDir == "" {
		opts.DestDir = cloneDest
	}
	if flags.Changed("flatten") {
		opts.Flatten = cloneFlatten
	}
	if flags.Changed("jobs") {
		opts.Concurrency = cloneJobs
	}
	if flags.Changed("git-args") {
		opts.GitArgs = cloneGitArgs
	}

	service, err := injectService()
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	return service.Run(context.Background(), opts)
}
