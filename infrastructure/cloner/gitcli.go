package cloner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
)

// GitCLI clones by shelling out to the git binary, which keeps full
// fidelity with user-supplied extra arguments and SSH configuration.
type GitCLI struct {
	extraArgs []string
	timeout   time.Duration
}

// NewGitCLI creates a CLI-backed cloner. The git binary must be on PATH.
func NewGitCLI(extraArgs []string, timeout time.Duration) (*GitCLI, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("%w: git binary not found in PATH", domain.ErrMissingDependency)
	}
	return &GitCLI{
		extraArgs: extraArgs,
		timeout:   timeout,
	}, nil
}

func (c *GitCLI) Clone(ctx context.Context, task domain.CloneTask) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append([]string{"clone"}, c.extraArgs...)
	args = append(args, task.SourceURL, task.DestPath)

	logger.Debugf("Running git %s", strings.Join(args, " "))
	output, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone of %q failed: %w: %s",
			task.SourceURL, err, strings.TrimSpace(string(output)))
	}
	return nil
}
