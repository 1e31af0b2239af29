package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	// Global flags
	configPath          string
	platformFlag        string
	groupFlag           string
	tokenFlag           string
	useSSH              bool
	verbose             bool
	httpTimeoutSeconds  int
	cloneTimeoutSeconds int
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "bulkclone",
	Short: "Bulk repository discovery and cloning for GitLab and GitHub",
	Long: `A CLI tool that walks a GitLab group (including every nested subgroup)
or a GitHub user/organization and lists or clones all repositories found.

This tool helps mirror whole namespaces locally by:
- Resolving the group, user or organization you name (or its numeric ID)
- Walking nested subgroups depth-first where the platform has them
- Listing projects and subgroups, or cloning everything concurrently`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&platformFlag, "platform", "",
		"Git hosting platform: gitlab or github")
	rootCmd.PersistentFlags().StringVarP(&groupFlag, "group", "g", "",
		"Group, user or organization name, or its numeric ID")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "",
		"API token (inline, ${ENV_VAR}, or path to a token file)")
	rootCmd.PersistentFlags().BoolVar(&useSSH, "ssh", false,
		"Prefer SSH clone URLs over HTTPS")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
	rootCmd.PersistentFlags().IntVar(&httpTimeoutSeconds, "timeout", 0,
		"API request timeout in seconds")
	rootCmd.PersistentFlags().IntVar(&cloneTimeoutSeconds, "clone-timeout", 0,
		"Per-repository clone timeout in seconds")
}
