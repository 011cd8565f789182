package store

import (
	"context"
	"errors"

	"rps-backend/internal/models"
)

// ErrNotFound is returned when a tournament does not exist in the backend.
var ErrNotFound = errors.New("tournament not found")

// Store persists whole tournament aggregates (players, matches and sub-rounds
// travel with their tournament). The engine is the in-memory authority and
// writes through after each transition; implementations only need durable
// upsert/lookup keyed by tournament ID.
type Store interface {
	SaveTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
}
