// Package ingest loads the text documents of a folder for one request.
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SkipDirs are never descended into, at any depth.
var SkipDirs = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"node_modules": true,
	"venv":         true,
	".env":         true,
	".github":      true,
	"dist":         true,
	"build":        true,
}

// Entry is a file visited by Walk.
type Entry struct {
	Path    string // absolute or root-joined path
	RelPath string // slash-separated, relative to root
	Info    fs.FileInfo
}

// Walk visits every non-hidden regular file under root outside SkipDirs, in
// lexical order. It is the single place that decides which paths a folder
// exposes; Ingest and Manifest both go through it. A missing root visits
// nothing. Unreadable directories are skipped. The walk stops early when ctx
// is done or visit returns false.
func Walk(ctx context.Context, root string, visit func(Entry) bool) {
	if _, err := os.Stat(root); err != nil {
		return
	}
	// WalkDir does not follow a symlinked root.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && SkipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		if !visit(Entry{Path: path, RelPath: filepath.ToSlash(rel), Info: info}) {
			return fs.SkipAll
		}
		return nil
	})
}
