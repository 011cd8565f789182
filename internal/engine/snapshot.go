package engine

import (
	"fmt"
	"time"

	"rps-backend/internal/models"
)

// Read-only projections. Every snapshot is a deep copy assembled under the
// tournament lock, so concurrent mutators can never tear a view.

// TournamentState returns a consistent snapshot with matches ordered by
// round then ID.
func (r *Registry) TournamentState(tournamentID int) (*models.Tournament, error) {
	t, mu, err := r.tournament(tournamentID)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	snap := t.Clone()
	snap.SortMatches()
	return snap, nil
}

// CurrentTournamentState returns the most recently created tournament, or nil
// when none exists yet.
func (r *Registry) CurrentTournamentState() *models.Tournament {
	r.mu.Lock()
	ids := r.sortedIDs()
	r.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	snap, err := r.TournamentState(ids[len(ids)-1])
	if err != nil {
		return nil
	}
	return snap
}

// TournamentStates snapshots every tournament, ordered by ID.
func (r *Registry) TournamentStates() []*models.Tournament {
	r.mu.Lock()
	ids := r.sortedIDs()
	r.mu.Unlock()

	out := make([]*models.Tournament, 0, len(ids))
	for _, id := range ids {
		if snap, err := r.TournamentState(id); err == nil {
			out = append(out, snap)
		}
	}
	return out
}

// CurrentMatchForPlayer returns the player's single non-completed match, or
// with completed=true the most recently decided one. A nil match with nil
// error means the player currently has none.
func (r *Registry) CurrentMatchForPlayer(playerID int, completed bool) (*models.Match, error) {
	t, mu, err := r.findByPlayer(playerID)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	var found *models.Match
	if completed {
		var latest time.Time
		for i := range t.Matches {
			m := &t.Matches[i]
			if m.Status == models.MatchCompleted && m.HasPlayer(playerID) && !m.CompletedAt.Before(latest) {
				found = m
				latest = m.CompletedAt
			}
		}
	} else {
		for i := range t.Matches {
			m := &t.Matches[i]
			if m.Status != models.MatchCompleted && m.HasPlayer(playerID) {
				found = m
				break
			}
		}
	}
	if found == nil {
		return nil, nil
	}

	snap := *found
	snap.Rounds = append([]models.MatchRound(nil), found.Rounds...)
	return &snap, nil
}

// Leaderboard ranks a tournament's players by match wins, then round wins.
func (r *Registry) Leaderboard(tournamentID int) ([]models.LeaderboardEntry, error) {
	t, mu, err := r.tournament(tournamentID)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return models.CalculateLeaderboard(t), nil
}

// RoundResults lists per-match outcomes for one bracket round.
func (r *Registry) RoundResults(tournamentID, round int) ([]models.RoundResultEntry, error) {
	t, mu, err := r.tournament(tournamentID)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	if round < 1 || round > t.CurrentRound {
		return nil, fmt.Errorf("tournament %d round %d: %w", tournamentID, round, ErrNotFound)
	}
	return models.RoundResults(t, round), nil
}
