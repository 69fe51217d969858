// Package pipeline runs one query through source resolution, ingestion,
// ranking, prompt assembly and the two-turn conversation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"repo-rag/internal/database"
	"repo-rag/internal/gitrepo"
	"repo-rag/internal/ingest"
	"repo-rag/internal/llm"
	"repo-rag/internal/logger"
	"repo-rag/internal/models"
	"repo-rag/internal/prompt"
	"repo-rag/internal/ranker"
	"repo-rag/internal/source"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty query")

// Acquirer provides a local working copy of a repository.
type Acquirer interface {
	Acquire(ctx context.Context, ref models.RepositoryReference) (models.LocalRepository, error)
}

// Conversant runs the answer and verification turns.
type Conversant interface {
	Converse(ctx context.Context, prompt, followUp, apiKey string) (llm.Conversation, error)
}

// Engine holds the per-process collaborators. Every query is independent;
// the repository store behind Acquirer is the only shared state.
type Engine struct {
	Acquirer         Acquirer
	Ingestor         *ingest.Ingestor
	Conversant       Conversant
	Settings         database.SettingsStore // optional
	DocsFolder       string
	TopK             int
	ListingThreshold int
	GitTimeout       time.Duration

	now func() time.Time
}

// Request is a single question.
type Request struct {
	Query  string
	APIKey string
}

// Prepared is everything computed before the model is called.
type Prepared struct {
	Root            string
	Documents       *models.DocumentSet
	Repository      *models.RepositoryInfo
	RepositoryError string
	Sources         []models.ScoredChunk
	Prompt          string
	FollowUp        string
}

// Prepare resolves the source, loads and ranks documents and builds the
// prompt. Repository problems fall back to DocsFolder and never fail the
// call.
func (e *Engine) Prepare(ctx context.Context, query string) (*Prepared, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	ctx = logger.WithComponent(ctx, "pipeline")

	p := &Prepared{Root: e.DocsFolder}

	if ref, ok := source.Classify(query); ok {
		e.acquire(ctx, ref, p)
	} else if source.IsRepositoryRelated(query) {
		slog.InfoContext(ctx, "query mentions a repository but no URL was found; using default documents")
	}

	p.Documents = e.Ingestor.Ingest(ctx, p.Root)

	topK := e.TopK
	if topK == 0 {
		topK = ranker.DefaultTopK
	}
	p.Sources = ranker.Rank(query, p.Documents, topK)

	settings := e.settings(ctx)
	assembler := prompt.Assembler{
		Preamble:         settings.SystemPrompt,
		ListingThreshold: e.ListingThreshold,
	}
	p.Prompt = assembler.Prompt(query, p.Sources, p.Repository, staticContext(settings))
	p.FollowUp = settings.FollowUpPrompt

	slog.DebugContext(ctx, "prompt assembled",
		"root", p.Root,
		"documents", p.Documents.Len(),
		"sources", len(p.Sources),
		"prompt_chars", len(p.Prompt))

	return p, nil
}

// Answer runs Prepare and the conversation. Only conversation failures are
// returned as errors, as *llm.BackendError.
func (e *Engine) Answer(ctx context.Context, req Request) (*models.Answer, error) {
	p, err := e.Prepare(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	conv, err := e.Conversant.Converse(ctx, p.Prompt, p.FollowUp, req.APIKey)
	if err != nil {
		slog.ErrorContext(ctx, "conversation failed", "error", err)
		return nil, err
	}

	return &models.Answer{
		FirstResponse:   conv.First.Content,
		SecondResponse:  conv.Second.Content,
		Sources:         p.Sources,
		Repository:      p.Repository,
		RepositoryError: p.RepositoryError,
		Prompt:          p.Prompt,
		Timestamp:       e.clock().Format(time.RFC3339),
	}, nil
}

func (e *Engine) acquire(ctx context.Context, ref models.RepositoryReference, p *Prepared) {
	if e.Acquirer == nil {
		return
	}

	actx := ctx
	if e.GitTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, e.GitTimeout)
		defer cancel()
	}

	local, err := e.Acquirer.Acquire(actx, ref)
	if err != nil {
		kind := gitrepo.Unknown
		var aerr *gitrepo.AcquisitionError
		if errors.As(err, &aerr) {
			kind = aerr.Kind
		}
		slog.WarnContext(ctx, "repository unavailable; using default documents",
			"repo", ref.URL, "kind", kind, "error", err)
		p.RepositoryError = err.Error()
		return
	}

	manifest := e.Ingestor.Manifest(ctx, local.Path)
	p.Root = local.Path
	p.Repository = &models.RepositoryInfo{
		URL:       ref.URL,
		Name:      ref.Name,
		LocalPath: local.Path,
		FileCount: manifest.Count,
		FilePaths: manifest.Paths,
	}
}

// settings reads the store, treating failures as empty settings so a
// database outage degrades to the built-in prompts.
func (e *Engine) settings(ctx context.Context) models.Settings {
	if e.Settings == nil {
		return models.Settings{}
	}
	s, err := e.Settings.Settings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "settings unavailable; using defaults", "error", err)
		return models.Settings{}
	}
	return s
}

func staticContext(s models.Settings) *prompt.StaticContext {
	sc := &prompt.StaticContext{
		ProjectName:        s.Project.Name,
		ProjectDescription: s.Project.Description,
	}
	for _, ex := range s.Examples {
		sc.Examples = append(sc.Examples, ex.Content)
	}
	return sc
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}
