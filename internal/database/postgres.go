package database

import (
	"context"
	"errors"
	"fmt"

	"repo-rag/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents the database connection
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection
func NewDB(ctx context.Context, connStr string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Initialize sets up the settings tables
func (db *DB) Initialize(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rag_prompts (
			name TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rag_prompts table: %w", err)
	}

	// Single-row table; the CHECK pins id to 1.
	_, err = db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rag_project (
			id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rag_project table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rag_examples (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rag_examples table: %w", err)
	}

	return nil
}

// Settings loads prompts, project and examples
func (db *DB) Settings(ctx context.Context) (models.Settings, error) {
	var s models.Settings

	rows, err := db.Pool.Query(ctx, `SELECT name, content FROM rag_prompts`)
	if err != nil {
		return s, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, content string
		if err := rows.Scan(&name, &content); err != nil {
			return s, fmt.Errorf("failed to scan prompt: %w", err)
		}
		switch name {
		case PromptSystem:
			s.SystemPrompt = content
		case PromptFollowUp:
			s.FollowUpPrompt = content
		}
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("error iterating prompts: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT name, description FROM rag_project WHERE id = 1`).
		Scan(&s.Project.Name, &s.Project.Description)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return s, fmt.Errorf("failed to query project: %w", err)
	}

	s.Examples, err = db.ListExamples(ctx)
	if err != nil {
		return s, err
	}
	return s, nil
}

// SetPrompt stores the text for a named prompt
func (db *DB) SetPrompt(ctx context.Context, name, text string) error {
	if !ValidPrompt(name) {
		return ErrUnknownPrompt
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO rag_prompts (name, content) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = now()
	`, name, text)
	if err != nil {
		return fmt.Errorf("failed to store prompt %s: %w", name, err)
	}
	return nil
}

// SetProject replaces the project metadata
func (db *DB) SetProject(ctx context.Context, project models.Project) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO rag_project (id, name, description) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
	`, project.Name, project.Description)
	if err != nil {
		return fmt.Errorf("failed to store project: %w", err)
	}
	return nil
}

// ListExamples returns all examples, oldest first
func (db *DB) ListExamples(ctx context.Context) ([]models.Example, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, content, created_at FROM rag_examples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query examples: %w", err)
	}
	defer rows.Close()

	examples := []models.Example{}
	for rows.Next() {
		var ex models.Example
		if err := rows.Scan(&ex.ID, &ex.Content, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan example: %w", err)
		}
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating examples: %w", err)
	}

	return examples, nil
}

// AddExample stores a new example snippet
func (db *DB) AddExample(ctx context.Context, content string) (models.Example, error) {
	ex := models.Example{Content: content}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO rag_examples (content) VALUES ($1) RETURNING id, created_at
	`, content).Scan(&ex.ID, &ex.CreatedAt)
	if err != nil {
		return models.Example{}, fmt.Errorf("failed to store example: %w", err)
	}
	return ex, nil
}

// DeleteExample removes an example by id
func (db *DB) DeleteExample(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM rag_examples WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete example: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}
