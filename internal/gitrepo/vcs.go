package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// gitEnv disables interactive credential prompts so an unauthenticated
// clone fails with stderr instead of waiting on the terminal.
func gitEnv() []string {
	return append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
}

// VCS is the version-control capability used by the Acquirer.
type VCS interface {
	Available(ctx context.Context) bool
	Clone(ctx context.Context, url, path string) (string, error)
	Pull(ctx context.Context, path string) (string, error)
}

// GitCLI runs the git executable found on PATH (or at Binary).
type GitCLI struct {
	Binary string
}

// NewGitCLI returns a GitCLI using "git" from PATH.
func NewGitCLI() *GitCLI {
	return &GitCLI{Binary: "git"}
}

func (g *GitCLI) Available(ctx context.Context) bool {
	_, err := g.run(ctx, "--version")
	return err == nil
}

func (g *GitCLI) Clone(ctx context.Context, url, path string) (string, error) {
	return g.run(ctx, "clone", url, path)
}

func (g *GitCLI) Pull(ctx context.Context, path string) (string, error) {
	return g.run(ctx, "-C", path, "pull")
}

// run executes git with captured output. Cancelling ctx kills the process.
// A non-zero exit is reported as *CommandError; anything else (binary
// missing, permission denied) is returned as the raw launch error.
func (g *GitCLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary(), args...)
	cmd.Env = gitEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.DebugContext(ctx, "executing git command", "args", args)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{
				Args:   args,
				Stderr: strings.TrimSpace(stderr.String()),
				Err:    err,
			}
		}
		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (g *GitCLI) binary() string {
	if g.Binary == "" {
		return "git"
	}
	return g.Binary
}
