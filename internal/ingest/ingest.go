package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"repo-rag/internal/models"
)

// TextExtensions are ingested when binary skipping is on.
var TextExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".json": true, ".yaml": true,
	".yml": true, ".ini": true, ".conf": true, ".py": true, ".js": true,
	".ts": true, ".java": true, ".c": true, ".cpp": true, ".h": true,
	".html": true, ".css": true, ".sh": true, ".bash": true, ".bat": true,
	".cmd": true, ".php": true, ".rb": true, ".go": true, ".rust": true,
	".xml": true, ".csv": true, ".tsv": true, ".log": true,
}

const DefaultMaxFileSize = 1 << 20

type Options struct {
	// SkipBinary drops files that are not valid UTF-8 and applies the
	// TextExtensions allow-list. When off, every file is read and invalid
	// byte sequences are removed.
	SkipBinary bool
	// ExtractPDF converts .pdf files to plain text instead of skipping them.
	ExtractPDF bool
	// MaxFileSize skips larger files; zero means DefaultMaxFileSize, negative disables the limit.
	MaxFileSize int64
}

func DefaultOptions() Options {
	return Options{SkipBinary: true, ExtractPDF: true, MaxFileSize: DefaultMaxFileSize}
}

// Ingestor builds DocumentSets and Manifests from folders.
type Ingestor struct {
	opts Options
}

func NewIngestor(opts Options) *Ingestor {
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	return &Ingestor{opts: opts}
}

// Ingest reads every eligible file under root. A missing root yields an
// empty set; files that cannot be read or decoded are left out.
func (i *Ingestor) Ingest(ctx context.Context, root string) *models.DocumentSet {
	docs := models.NewDocumentSet()
	skipped := 0

	Walk(ctx, root, func(e Entry) bool {
		text, ok := i.load(ctx, e)
		if !ok {
			skipped++
			return true
		}
		docs.Add(e.RelPath, text)
		return true
	})

	slog.DebugContext(ctx, "documents ingested",
		"root", root,
		"documents", docs.Len(),
		"skipped", skipped)

	return docs
}

// Manifest lists the files Ingest would consider, without reading them.
func (i *Ingestor) Manifest(ctx context.Context, root string) models.Manifest {
	m := models.Manifest{Paths: []string{}}
	Walk(ctx, root, func(e Entry) bool {
		m.Paths = append(m.Paths, e.RelPath)
		return true
	})
	m.Count = len(m.Paths)
	return m
}

func (i *Ingestor) load(ctx context.Context, e Entry) (string, bool) {
	if i.opts.MaxFileSize > 0 && e.Info.Size() > i.opts.MaxFileSize {
		slog.DebugContext(ctx, "skipping oversized file", "path", e.RelPath, "size", e.Info.Size())
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(e.Path))
	if ext == ".pdf" && i.opts.ExtractPDF {
		text, err := ExtractPDFText(e.Path)
		if err != nil {
			slog.DebugContext(ctx, "skipping unreadable pdf", "path", e.RelPath, "error", err)
			return "", false
		}
		return text, true
	}

	if i.opts.SkipBinary && !TextExtensions[ext] {
		return "", false
	}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		slog.DebugContext(ctx, "skipping unreadable file", "path", e.RelPath, "error", err)
		return "", false
	}

	if !utf8.Valid(data) {
		if i.opts.SkipBinary {
			return "", false
		}
		return strings.ToValidUTF8(string(data), ""), true
	}
	return string(data), true
}
