package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"rps-backend/internal/models"
)

// FileStore persists each tournament as a JSON file on disk.
// Files are stored as {dir}/{tournament-id}.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(id int) string {
	return filepath.Join(f.dir, strconv.Itoa(id)+".json")
}

func (f *FileStore) readTournament(id int) (*models.Tournament, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading tournament %d: %w", id, err)
	}

	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding tournament %d: %w", id, err)
	}
	return &t, nil
}

func (f *FileStore) writeTournament(t *models.Tournament) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tournament %d: %w", t.ID, err)
	}

	// Write to temp file then rename for atomic writes
	tmp := f.path(t.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing tournament %d: %w", t.ID, err)
	}
	if err := os.Rename(tmp, f.path(t.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming tournament file %d: %w", t.ID, err)
	}
	return nil
}

func (f *FileStore) SaveTournament(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.writeTournament(t)
}

func (f *FileStore) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.readTournament(id)
}

func (f *FileStore) ListTournaments(_ context.Context) ([]*models.Tournament, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}

	tournaments := make([]*models.Tournament, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		t, err := f.readTournament(id)
		if err != nil {
			continue // skip corrupt files
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}

func (f *FileStore) DeleteTournament(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.path(id)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}

	if err := os.Remove(p); err != nil {
		return fmt.Errorf("deleting tournament %d: %w", id, err)
	}
	return nil
}
