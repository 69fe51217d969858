// Package docstore manages the files of the default document folder.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"repo-rag/internal/ingest"
)

var (
	// ErrInvalidPath is returned for names that would escape the folder,
	// or that the ingestor would never read.
	ErrInvalidPath = errors.New("invalid document path")
	ErrNotFound    = errors.New("document not found")
)

// Document describes a stored file.
type Document struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store reads and writes documents under Root.
type Store struct {
	Root string
}

func New(root string) *Store {
	return &Store{Root: root}
}

// List returns the documents the ingestor would see, in walk order.
func (s *Store) List(ctx context.Context) []Document {
	docs := []Document{}
	ingest.Walk(ctx, s.Root, func(e ingest.Entry) bool {
		docs = append(docs, Document{Path: e.RelPath, Size: e.Info.Size(), Modified: e.Info.ModTime().UTC()})
		return true
	})
	return docs
}

// Save writes r to name, creating parent directories. An existing file is
// replaced.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (Document, error) {
	rel, err := Clean(name)
	if err != nil {
		return Document{}, err
	}
	target := filepath.Join(s.Root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Document{}, fmt.Errorf("create document folder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return Document{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Document{}, fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}

	slog.InfoContext(ctx, "document saved", "path", rel, "bytes", n)
	return Document{Path: rel, Size: n, Modified: time.Now().UTC()}, nil
}

// Delete removes name.
func (s *Store) Delete(ctx context.Context, name string) error {
	rel, err := Clean(name)
	if err != nil {
		return err
	}
	target := filepath.Join(s.Root, filepath.FromSlash(rel))

	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	slog.InfoContext(ctx, "document deleted", "path", rel)
	return nil
}

// Clean normalizes a client-supplied document name to a slash-separated
// path inside the folder. Absolute paths, parent references, hidden
// segments and excluded directories are rejected.
func Clean(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "", ErrInvalidPath
	}

	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}

	cleaned := path.Clean(name)
	if cleaned == "." {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(cleaned, "/") {
		if strings.HasPrefix(seg, ".") || ingest.SkipDirs[seg] {
			return "", ErrInvalidPath
		}
	}
	return cleaned, nil
}
