package database

import (
	"context"
	"sync"
	"time"

	"repo-rag/internal/models"
)

// MemoryStore keeps settings in process memory. It is used when no
// database is configured; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	settings models.Settings
	nextID   int64
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (m *MemoryStore) Settings(_ context.Context) (models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.settings
	s.Examples = append([]models.Example{}, m.settings.Examples...)
	return s, nil
}

func (m *MemoryStore) SetPrompt(_ context.Context, name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case PromptSystem:
		m.settings.SystemPrompt = text
	case PromptFollowUp:
		m.settings.FollowUpPrompt = text
	default:
		return ErrUnknownPrompt
	}
	return nil
}

func (m *MemoryStore) SetProject(_ context.Context, project models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.Project = project
	return nil
}

func (m *MemoryStore) ListExamples(_ context.Context) ([]models.Example, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Example{}, m.settings.Examples...), nil
}

func (m *MemoryStore) AddExample(_ context.Context, content string) (models.Example, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex := models.Example{ID: m.nextID, Content: content, CreatedAt: m.now().UTC()}
	m.nextID++
	m.settings.Examples = append(m.settings.Examples, ex)
	return ex, nil
}

func (m *MemoryStore) DeleteExample(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, ex := range m.settings.Examples {
		if ex.ID == id {
			m.settings.Examples = append(m.settings.Examples[:i], m.settings.Examples[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Close() {}
