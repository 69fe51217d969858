package models

import (
	"encoding/json"
	"time"
)

// RepositoryReference identifies a remote Git repository named in a query.
type RepositoryReference struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Acquisition operations recorded on a LocalRepository.
const (
	OperationClone = "clone"
	OperationPull  = "pull"
)

// LocalRepository is the on-disk working copy of a repository
type LocalRepository struct {
	Reference  RepositoryReference `json:"reference"`
	Path       string              `json:"local_path"`
	AcquiredAt time.Time           `json:"acquired_at"`
	Operation  string              `json:"operation"`
}

// Manifest lists the files of a folder without reading their content.
type Manifest struct {
	Count int      `json:"file_count"`
	Paths []string `json:"file_paths"`
}

// DocumentSet maps relative slash-separated paths to file content,
// remembering insertion order so ranking ties are reproducible.
type DocumentSet struct {
	paths   []string
	content map[string]string
}

// NewDocumentSet creates an empty document set
func NewDocumentSet() *DocumentSet {
	return &DocumentSet{content: make(map[string]string)}
}

// Add stores a document. Re-adding a path replaces its content but keeps its position.
func (d *DocumentSet) Add(path, text string) {
	if _, ok := d.content[path]; !ok {
		d.paths = append(d.paths, path)
	}
	d.content[path] = text
}

// Get returns the content stored for path.
func (d *DocumentSet) Get(path string) (string, bool) {
	if d == nil {
		return "", false
	}
	text, ok := d.content[path]
	return text, ok
}

// Paths returns the document paths in insertion order.
func (d *DocumentSet) Paths() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// Len returns the number of documents.
func (d *DocumentSet) Len() int {
	if d == nil {
		return 0
	}
	return len(d.paths)
}

// Chunk is one paragraph of a document
type Chunk struct {
	SourcePath string `json:"filename"`
	Index      int    `json:"chunk_id"`
	Text       string `json:"content"`
}

// ScoredChunk is a chunk with its keyword overlap against the query.
type ScoredChunk struct {
	Chunk
	MatchCount int `json:"match_count"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message exchanged with the language model.
// Reasoning is an opaque backend payload; it is replayed as-is and never inspected.
type ConversationTurn struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Reasoning json.RawMessage `json:"reasoning_details,omitempty"`
}

// RepositoryInfo describes the repository a query was answered from
type RepositoryInfo struct {
	URL       string   `json:"repo_url"`
	Name      string   `json:"repo_name"`
	LocalPath string   `json:"local_path"`
	FileCount int      `json:"file_count"`
	FilePaths []string `json:"file_paths,omitempty"`
}

// Answer is the result of a two-turn conversation
type Answer struct {
	FirstResponse   string          `json:"first_response"`
	SecondResponse  string          `json:"second_response"`
	Sources         []ScoredChunk   `json:"sources"`
	Repository      *RepositoryInfo `json:"repository,omitempty"`
	RepositoryError string          `json:"repository_error,omitempty"`
	Prompt          string          `json:"-"`
	Timestamp       string          `json:"timestamp"`
}

// Project is the configured description of the codebase being asked about
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Example is a stored snippet shown to the model as static context
type Example struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings holds everything the operator can edit at runtime.
// Empty prompts mean the built-in defaults apply.
type Settings struct {
	SystemPrompt   string    `json:"system_prompt"`
	FollowUpPrompt string    `json:"follow_up_prompt"`
	Project        Project   `json:"project"`
	Examples       []Example `json:"examples"`
}
