package store

import (
	"context"
	"fmt"
	"sync"

	"rps-backend/internal/models"
)

type MemoryStore struct {
	mu          sync.RWMutex
	tournaments map[int]*models.Tournament
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments: make(map[int]*models.Tournament),
	}
}

func (m *MemoryStore) SaveTournament(_ context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Deep copy to avoid external mutation
	m.tournaments[t.ID] = t.Clone()
	return nil
}

func (m *MemoryStore) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tournaments[id]
	if !ok {
		return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

func (m *MemoryStore) ListTournaments(_ context.Context) ([]*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Tournament, 0, len(m.tournaments))
	for _, t := range m.tournaments {
		result = append(result, t.Clone())
	}
	return result, nil
}

func (m *MemoryStore) DeleteTournament(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tournaments[id]; !ok {
		return fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}

	delete(m.tournaments, id)
	return nil
}
