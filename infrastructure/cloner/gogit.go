package cloner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
)

// GoGit clones with the embedded go-git implementation, so no git binary
// is required. HTTP(S) sources are authenticated with the platform token;
// SSH sources fall back to the ambient agent configuration.
type GoGit struct {
	token   string
	depth   int
	timeout time.Duration
}

// NewGoGit creates a library-backed cloner. A depth of zero clones the
// full history.
func NewGoGit(token string, depth int, timeout time.Duration) *GoGit {
	return &GoGit{
		token:   token,
		depth:   depth,
		timeout: timeout,
	}
}

func (c *GoGit) Clone(ctx context.Context, task domain.CloneTask) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var auth transport.AuthMethod
	if c.token != "" && strings.HasPrefix(task.SourceURL, "http") {
		auth = &githttp.BasicAuth{
			Username: "token",
			Password: c.token,
		}
	}

	logger.Debugf("Cloning %q into %q", task.SourceURL, task.DestPath)
	_, err := git.PlainCloneContext(ctx, task.DestPath, false, &git.CloneOptions{
		URL:   task.SourceURL,
		Auth:  auth,
		Depth: c.depth,
	})
	if err != nil {
		return fmt.Errorf("clone of %q failed: %w", task.SourceURL, err)
	}
	return nil
}
