package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/bulkclone/domain"
)

// TaskResult records the outcome of one clone task.
type TaskResult struct {
	Task domain.CloneTask
	Err  error
}

// Dispatcher consumes a repository stream and executes clone tasks.
// With a concurrency of one or less it runs strictly sequentially and
// aborts on the first failure; above that it uses a bounded worker pool
// where a failing task does not cancel its siblings, and the aggregate
// error reflects whether anything failed.
type Dispatcher struct {
	cloner      domain.Cloner
	concurrency int
}

// NewDispatcher creates a dispatcher over the given cloner.
func NewDispatcher(cloner domain.Cloner, concurrency int) *Dispatcher {
	return &Dispatcher{
		cloner:      cloner,
		concurrency: concurrency,
	}
}

// PrepareDestination ensures destDir exists and is empty, creating it if
// necessary. It must be called before any clone is dispatched.
func PrepareDestination(destDir string) error {
	entries, err := os.ReadDir(destDir)
	if err == nil {
		if len(entries) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrDestinationNotEmpty, destDir)
		}
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if mkdirErr := os.MkdirAll(destDir, 0o755); mkdirErr != nil {
			return fmt.Errorf("failed to create destination %q: %w", destDir, mkdirErr)
		}
		return nil
	}
	return fmt.Errorf("failed to inspect destination %q: %w", destDir, err)
}

// DestinationPath applies the layout rule: flattened repositories land
// directly under destDir, otherwise under their namespace hierarchy.
func DestinationPath(destDir string, repo domain.Repository, flatten bool) string {
	if flatten || repo.NamespacePath == "" {
		return filepath.Join(destDir, repo.Name())
	}
	return filepath.Join(destDir, filepath.FromSlash(repo.NamespacePath), repo.Name())
}

// Run drains the repository stream and clones every entry into destDir.
// It returns the per-task outcomes together with the first fatal error:
// a traversal error, the first clone failure in sequential mode, or an
// aggregate failure count in concurrent mode. On an abort the stream is
// left undrained; the caller must cancel the producer's context.
func (d *Dispatcher) Run(ctx context.Context, stream <-chan CollectResult, destDir string, flatten bool) ([]TaskResult, error) {
	if d.concurrency <= 1 {
		return d.runSequential(ctx, stream, destDir, flatten)
	}
	return d.runConcurrent(ctx, stream, destDir, flatten)
}

func (d *Dispatcher) runSequential(ctx context.Context, stream <-chan CollectResult, destDir string, flatten bool) ([]TaskResult, error) {
	var results []TaskResult

	for res := range stream {
		if res.Err != nil {
			return results, res.Err
		}

		task := newTask(res.Repo, destDir, flatten)
		err := d.cloner.Clone(ctx, task)
		results = append(results, TaskResult{Task: task, Err: err})
		if err != nil {
			return results, fmt.Errorf("clone of %q failed: %w", task.SourceURL, err)
		}
		logger.Infof("Cloned %s", task.DestPath)
	}

	return results, nil
}

func (d *Dispatcher) runConcurrent(ctx context.Context, stream <-chan CollectResult, destDir string, flatten bool) ([]TaskResult, error) {
	tasks := make(chan domain.CloneTask)

	var (
		waitGroup sync.WaitGroup
		resultsMu sync.Mutex
		results   []TaskResult
		failed    atomic.Int32
	)

	for i := 0; i < d.concurrency; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for task := range tasks {
				err := d.cloner.Clone(ctx, task)
				if err != nil {
					failed.Add(1)
					logger.Errorf("Clone of %q failed: %v", task.SourceURL, err)
				} else {
					logger.Infof("Cloned %s", task.DestPath)
				}

				resultsMu.Lock()
				results = append(results, TaskResult{Task: task, Err: err})
				resultsMu.Unlock()
			}
		}()
	}

	var streamErr error
	for res := range stream {
		if res.Err != nil {
			// Traversal failure: stop feeding the pool but let the
			// already-dispatched tasks finish.
			streamErr = res.Err
			break
		}
		tasks <- newTask(res.Repo, destDir, flatten)
	}
	close(tasks)
	waitGroup.Wait()

	if streamErr != nil {
		return results, streamErr
	}
	if n := failed.Load(); n > 0 {
		return results, fmt.Errorf("%d of %d clone tasks failed", n, len(results))
	}
	return results, nil
}

func newTask(repo domain.Repository, destDir string, flatten bool) domain.CloneTask {
	return domain.CloneTask{
		SourceURL: repo.CloneURL,
		DestPath:  DestinationPath(destDir, repo, flatten),
	}
}
