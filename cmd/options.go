package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/bulkclone/application"
	"github.com/rios0rios0/bulkclone/config"
)

// loadConfig resolves the configuration file. An explicit --config path
// that cannot be loaded is an error; a missing auto-detected file is not.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		logger.Infof("Using config file: %s", configPath)
		return cfg, nil
	}

	path, err := config.FindConfigFile()
	if err != nil {
		cfg := &config.Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debugf("Using config file: %s", path)
	return cfg, nil
}

// resolveOptions merges the config file with the global flags. Flags
// passed explicitly win over file values.
func resolveOptions(cmd *cobra.Command) (application.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return application.Options{}, err
	}

	opts := application.Options{
		Platform:     cfg.Platform,
		Group:        cfg.Group,
		Token:        cfg.Token,
		UseSSH:       cfg.UseSSH,
		Flatten:      cfg.Flatten,
		GitArgs:      cfg.GitArgs,
		DestDir:      cfg.Destination,
		Concurrency:  cfg.Concurrency,
		HTTPTimeout:  time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		CloneTimeout: time.Duration(cfg.CloneTimeoutSeconds) * time.Second,
		Out:          os.Stdout,
	}

	flags := cmd.Flags()
	if platformFlag != "" {
		opts.Platform = platformFlag
	}
	if groupFlag != "" {
		opts.Group = groupFlag
	}
	if tokenFlag != "" {
		opts.Token = config.ResolveToken(tokenFlag)
	}
	if flags.Changed("ssh") {
		opts.UseSSH = useSSH
	}
	if flags.Changed("timeout") {
		opts.HTTPTimeout = time.Duration(httpTimeoutSeconds) * time.Second
	}
	if flags.Changed("clone-timeout") {
		opts.CloneTimeout = time.Duration(cloneTimeoutSeconds) * time.Second
	}

	if opts.Platform == "" {
		return application.Options{}, errors.New("platform is required (use --platform or the config file)")
	}
	if opts.Group == "" {
		return application.Options{}, errors.New("group is required (use --group or the config file)")
	}

	return opts, nil
}
