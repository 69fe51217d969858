// Package gitrepo keeps one local working copy per repository name under a
// storage root, cloning on first use and pulling afterwards.
package gitrepo

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"repo-rag/internal/logger"
	"repo-rag/internal/models"
)

const maxDetail = 500

// Acquirer clones or updates repositories under Root. It is the only writer
// of Root. VCS and Locker must be set.
type Acquirer struct {
	Root   string
	VCS    VCS
	Locker Locker
	now    func() time.Time
}

// NewAcquirer creates an Acquirer backed by the git CLI and an in-process
// per-name lock.
func NewAcquirer(root string) *Acquirer {
	return &Acquirer{
		Root:   root,
		VCS:    NewGitCLI(),
		Locker: NewKeyedLocker(),
		now:    time.Now,
	}
}

// LocalPath returns where the working copy for ref lives.
func (a *Acquirer) LocalPath(ref models.RepositoryReference) string {
	return filepath.Join(a.Root, ref.Name)
}

// Acquire makes sure an up-to-date working copy of ref exists. Calls for the
// same repository name are serialized; different names run independently.
// Every failure is returned as *AcquisitionError.
func (a *Acquirer) Acquire(ctx context.Context, ref models.RepositoryReference) (models.LocalRepository, error) {
	if !a.VCS.Available(ctx) {
		return models.LocalRepository{}, &AcquisitionError{Kind: ToolUnavailable, Repo: ref.Name}
	}

	if ref.Name == "" || ref.Name == "." || ref.Name == ".." {
		return models.LocalRepository{}, &AcquisitionError{Kind: Unknown, Repo: ref.URL, Detail: "invalid repository name"}
	}

	if err := os.MkdirAll(a.Root, 0o755); err != nil {
		return models.LocalRepository{}, &AcquisitionError{Kind: Unknown, Repo: ref.Name, Detail: err.Error(), Err: err}
	}

	unlock, err := a.Locker.Lock(ctx, ref.Name)
	if err != nil {
		return models.LocalRepository{}, &AcquisitionError{Kind: Unknown, Repo: ref.Name, Detail: err.Error(), Err: err}
	}
	defer unlock()

	path := a.LocalPath(ref)
	op := models.OperationClone
	if _, err := os.Stat(path); err == nil {
		op = models.OperationPull
	}

	start := a.clock()
	var out string
	if op == models.OperationPull {
		out, err = a.VCS.Pull(ctx, path)
	} else {
		out, err = a.VCS.Clone(ctx, ref.URL, path)
		if err != nil {
			// A half-written clone would be pulled by the next request.
			_ = os.RemoveAll(path)
		}
	}
	if err != nil {
		return models.LocalRepository{}, classify(ref, err)
	}

	slog.InfoContext(ctx, "repository acquired",
		"repo", ref.Name,
		"operation", op,
		"path", path,
		"duration_ms", a.clock().Sub(start).Milliseconds(),
		"output", logger.Truncate(out, 200))

	return models.LocalRepository{
		Reference:  ref,
		Path:       path,
		AcquiredAt: a.clock(),
		Operation:  op,
	}, nil
}

func classify(ref models.RepositoryReference, err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		detail := cmdErr.Stderr
		if detail == "" {
			detail = cmdErr.Err.Error()
		}
		return &AcquisitionError{Kind: OperationFailed, Repo: ref.Name, Detail: logger.Truncate(detail, maxDetail), Err: err}
	}
	return &AcquisitionError{Kind: Unknown, Repo: ref.Name, Detail: logger.Truncate(err.Error(), maxDetail), Err: err}
}

func (a *Acquirer) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

