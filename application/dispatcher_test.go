package application //nolint:testpackage // tests unexported functions

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/bulkclone/domain"
	testdoubles "github.com/rios0rios0/bulkclone/test"
)

func stream(results ...CollectResult) <-chan CollectResult {
	out := make(chan CollectResult, len(results))
	for _, res := range results {
		out <- res
	}
	close(out)
	return out
}

func TestPrepareDestination(t *testing.T) {
	t.Parallel()

	t.Run("should accept an existing empty directory", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		err := PrepareDestination(dir)

		// then
		assert.NoError(t, err)
	})

	t.Run("should create a missing directory", func(t *testing.T) {
		t.Parallel()

		// given
		dir := filepath.Join(t.TempDir(), "nested", "dest")

		// when
		err := PrepareDestination(dir)

		// then
		require.NoError(t, err)
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})

	t.Run("should reject a non-empty directory", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "leftover"), []byte("x"), 0o600))

		// when
		err := PrepareDestination(dir)

		// then
		assert.ErrorIs(t, err, domain.ErrDestinationNotEmpty)
	})
}

func TestDestinationPath(t *testing.T) {
	t.Parallel()

	t.Run("should nest the repository under its namespace by default", func(t *testing.T) {
		t.Parallel()

		// given
		repo := domain.Repository{
			CloneURL:      "https://git.example/acme/infra/terraform.git",
			NamespacePath: "acme/infra",
		}

		// when
		path := DestinationPath("/tmp/dest", repo, false)

		// then
		assert.Equal(t, filepath.Join("/tmp/dest", "acme", "infra", "terraform"), path)
	})

	t.Run("should place the repository directly under the destination when flattened", func(t *testing.T) {
		t.Parallel()

		// given
		repo := domain.Repository{
			CloneURL:      "https://git.example/acme/infra/terraform.git",
			NamespacePath: "acme/infra",
		}

		// when
		path := DestinationPath("/tmp/dest", repo, true)

		// then
		assert.Equal(t, filepath.Join("/tmp/dest", "terraform"), path)
	})

	t.Run("should flatten implicitly when the namespace is empty", func(t *testing.T) {
		t.Parallel()

		// given
		repo := domain.Repository{CloneURL: "git@github.com:acme/tooling.git"}

		// when
		path := DestinationPath("/tmp/dest", repo, false)

		// then
		assert.Equal(t, filepath.Join("/tmp/dest", "tooling"), path)
	})
}

func TestDispatcherRun(t *testing.T) {
	t.Parallel()

	t.Run("should clone every repository sequentially", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &testdoubles.SpyCloner{}
		dispatcher := NewDispatcher(spy, 1)
		input := stream(
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/a.git", NamespacePath: "g"}},
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/b.git", NamespacePath: "g"}},
		)

		// when
		results, err := dispatcher.Run(context.Background(), input, "/tmp/dest", false)

		// then
		require.NoError(t, err)
		require.Len(t, results, 2)
		tasks := spy.Tasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, "https://git.example/g/a.git", tasks[0].SourceURL)
		assert.Equal(t, filepath.Join("/tmp/dest", "g", "a"), tasks[0].DestPath)
	})

	t.Run("should abort on the first failure in sequential mode", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &testdoubles.SpyCloner{
			FailURLs: map[string]error{"https://git.example/g/b.git": assert.AnError},
		}
		dispatcher := NewDispatcher(spy, 1)
		input := stream(
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/a.git"}},
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/b.git"}},
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/c.git"}},
		)

		// when
		results, err := dispatcher.Run(context.Background(), input, "/tmp/dest", true)

		// then: c was never attempted
		assert.ErrorIs(t, err, assert.AnError)
		assert.Len(t, results, 2)
		assert.Len(t, spy.Tasks(), 2)
	})

	t.Run("should complete siblings despite failures in concurrent mode", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &testdoubles.SpyCloner{
			FailURLs: map[string]error{"https://git.example/g/b.git": assert.AnError},
		}
		dispatcher := NewDispatcher(spy, 4)
		input := stream(
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/a.git"}},
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/b.git"}},
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/c.git"}},
		)

		// when
		results, err := dispatcher.Run(context.Background(), input, "/tmp/dest", true)

		// then: every task ran, one failed, the aggregate error says so
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3 clone tasks failed")
		assert.Len(t, results, 3)
		assert.Len(t, spy.Tasks(), 3)

		failures := 0
		for _, res := range results {
			if res.Err != nil {
				failures++
				assert.Equal(t, "https://git.example/g/b.git", res.Task.SourceURL)
			}
		}
		assert.Equal(t, 1, failures)
	})

	t.Run("should release a live producer after a sequential abort", func(t *testing.T) {
		t.Parallel()

		// given: a real collector feeding the dispatcher, first clone fails
		provider := &testdoubles.SpyProvider{
			ProjectsByEntity: map[string][]domain.Repository{
				"root": {
					{CloneURL: "https://git.example/root/a.git"},
					{CloneURL: "https://git.example/root/b.git"},
					{CloneURL: "https://git.example/root/c.git"},
				},
			},
		}
		spy := &testdoubles.SpyCloner{
			FailURLs: map[string]error{"https://git.example/root/a.git": assert.AnError},
		}
		dispatcher := NewDispatcher(spy, 1)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		input := NewCollector(provider).Projects(ctx, []domain.Entity{
			{ID: "root", Kind: domain.KindGroup, ProviderName: "spy"},
		})

		// when
		_, err := dispatcher.Run(ctx, input, "/tmp/dest", true)
		require.ErrorIs(t, err, assert.AnError)
		cancel()

		// then: the producer exits and closes the undrained stream
		deadline := time.After(2 * time.Second)
		for {
			closed := false
			select {
			case _, ok := <-input:
				closed = !ok
			case <-deadline:
				t.Fatal("collector goroutine still blocked after sequential abort")
			}
			if closed {
				break
			}
		}
		assert.Len(t, spy.Tasks(), 1)
	})

	t.Run("should surface a traversal error from the stream", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &testdoubles.SpyCloner{}
		dispatcher := NewDispatcher(spy, 2)
		input := stream(
			CollectResult{Repo: domain.Repository{CloneURL: "https://git.example/g/a.git"}},
			CollectResult{Err: assert.AnError},
		)

		// when
		_, err := dispatcher.Run(context.Background(), input, "/tmp/dest", true)

		// then
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("should succeed on an empty stream", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &testdoubles.SpyCloner{}
		dispatcher := NewDispatcher(spy, 1)

		// when
		results, err := dispatcher.Run(context.Background(), stream(), "/tmp/dest", false)

		// then
		assert.NoError(t, err)
		assert.Empty(t, results)
		assert.Empty(t, spy.Tasks())
	})
}
