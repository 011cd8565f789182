package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rps-backend/internal/models"
	"rps-backend/internal/store"
)

// Options fixes the rules a tournament is created with.
type Options struct {
	Capacity    int
	BestOf      int
	Tiebreak    models.TiebreakPolicy
	AutoRelease bool
}

func DefaultOptions() Options {
	return Options{
		Capacity: 8,
		BestOf:   3,
		Tiebreak: models.TiebreakTimestamp,
	}
}

func (o Options) Validate() error {
	if o.Capacity < 2 || o.Capacity&(o.Capacity-1) != 0 {
		return fmt.Errorf("capacity %d must be a power of two >= 2: %w", o.Capacity, ErrValidation)
	}
	if o.BestOf < 1 || o.BestOf%2 == 0 {
		return fmt.Errorf("best-of %d must be odd: %w", o.BestOf, ErrValidation)
	}
	if !o.Tiebreak.Valid() {
		return fmt.Errorf("tiebreak policy %q: %w", o.Tiebreak, ErrValidation)
	}
	return nil
}

// idCounters issues process-wide monotonically increasing entity IDs. It is a
// leaf lock: safe to take while holding the registry or a tournament lock.
type idCounters struct {
	mu         sync.Mutex
	tournament int
	player     int
	match      int
}

func (c *idCounters) nextTournament() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tournament++
	return c.tournament
}

func (c *idCounters) nextPlayer() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player++
	return c.player
}

func (c *idCounters) nextMatch() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.match++
	return c.match
}

// bump raises the counters past IDs seen in persisted tournaments.
func (c *idCounters) bump(t *models.Tournament) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.ID > c.tournament {
		c.tournament = t.ID
	}
	for _, p := range t.Players {
		if p.ID > c.player {
			c.player = p.ID
		}
	}
	for _, m := range t.Matches {
		if m.ID > c.match {
			c.match = m.ID
		}
	}
}

// Registry tracks every tournament in the process and routes ID-addressed
// operations to the right one. The registry mutex guards only the maps; each
// tournament's state is guarded by its own lock, so unrelated tournaments
// never block each other. Lock order is registry -> tournament, counters are
// a leaf.
//
// Persistence is write-through outside the critical section: mutate under the
// tournament lock, deep-copy, release, then save the copy. A failed save is
// logged and does not undo the in-memory transition.
type Registry struct {
	opts  Options
	store store.Store
	ids   idCounters

	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	locks       map[int]*sync.Mutex
}

func NewRegistry(opts Options, s store.Store) (*Registry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		opts:        opts,
		store:       s,
		tournaments: make(map[int]*models.Tournament),
		locks:       make(map[int]*sync.Mutex),
	}, nil
}

// Hydrate loads persisted tournaments so a restarted process keeps serving
// existing brackets. Counters advance past every ID seen.
func (r *Registry) Hydrate(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	tournaments, err := r.store.ListTournaments(ctx)
	if err != nil {
		return fmt.Errorf("hydrating registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tournaments {
		r.tournaments[t.ID] = t
		r.locks[t.ID] = &sync.Mutex{}
		r.ids.bump(t)
	}
	return nil
}

func (r *Registry) persist(ctx context.Context, snapshot *models.Tournament) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveTournament(ctx, snapshot); err != nil {
		slog.Error("persisting tournament", "tournamentId", snapshot.ID, "error", err)
	}
}

// sortedIDs returns tournament IDs ascending; callers hold r.mu.
func (r *Registry) sortedIDs() []int {
	ids := make([]int, 0, len(r.tournaments))
	for id := range r.tournaments {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *Registry) tournament(id int) (*models.Tournament, *sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}
	return t, r.locks[id], nil
}

// findByPlayer locates the tournament a player registered into.
func (r *Registry) findByPlayer(playerID int) (*models.Tournament, *sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.sortedIDs() {
		t, mu := r.tournaments[id], r.locks[id]
		mu.Lock()
		found := t.Player(playerID) != nil
		mu.Unlock()
		if found {
			return t, mu, nil
		}
	}
	return nil, nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
}

// findByMatch locates the tournament owning a match.
func (r *Registry) findByMatch(matchID int) (*models.Tournament, *sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.sortedIDs() {
		t, mu := r.tournaments[id], r.locks[id]
		mu.Lock()
		found := t.Match(matchID) != nil
		mu.Unlock()
		if found {
			return t, mu, nil
		}
	}
	return nil, nil, fmt.Errorf("match %d: %w", matchID, ErrNotFound)
}

// update runs fn on the tournament under its lock, then persists a deep copy
// of the new state outside the lock. fn returning an error aborts the write.
func (r *Registry) update(ctx context.Context, t *models.Tournament, mu *sync.Mutex, fn func(t *models.Tournament) error) error {
	mu.Lock()
	if err := fn(t); err != nil {
		mu.Unlock()
		return err
	}
	t.UpdatedAt = time.Now()
	snapshot := t.Clone()
	mu.Unlock()

	r.persist(ctx, snapshot)
	return nil
}

// RegistrationResult reports where a new player landed.
type RegistrationResult struct {
	PlayerID     int    `json:"playerId"`
	TournamentID int    `json:"tournamentId"`
	Message      string `json:"message"`
}

// RegisterPlayer trims and validates the name, assigns the player to an open
// tournament (creating one if every tournament is full or running), and
// auto-starts the tournament when the last seat fills.
func (r *Registry) RegisterPlayer(ctx context.Context, name string) (*RegistrationResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("player name must not be empty: %w", ErrValidation)
	}

	now := time.Now()

	r.mu.Lock()
	var target *models.Tournament
	var targetMu *sync.Mutex
	for _, id := range r.sortedIDs() {
		t, mu := r.tournaments[id], r.locks[id]
		mu.Lock()
		open := t.Status == models.TournamentWaiting && len(t.Players) < t.Capacity
		mu.Unlock()
		if open {
			target, targetMu = t, mu
			break
		}
	}
	if target == nil {
		id := r.ids.nextTournament()
		target = &models.Tournament{
			ID:          id,
			UID:         uuid.New().String(),
			Name:        fmt.Sprintf("Tournament %d", id),
			Status:      models.TournamentWaiting,
			Capacity:    r.opts.Capacity,
			BestOf:      r.opts.BestOf,
			Tiebreak:    r.opts.Tiebreak,
			AutoRelease: r.opts.AutoRelease,
			CreatedAt:   now,
		}
		targetMu = &sync.Mutex{}
		r.tournaments[target.ID] = target
		r.locks[target.ID] = targetMu
	}

	playerID := r.ids.nextPlayer()

	targetMu.Lock()
	target.Players = append(target.Players, models.Player{
		ID:           playerID,
		TournamentID: target.ID,
		Name:         name,
		IsActive:     true,
		RegisteredAt: now,
	})

	message := fmt.Sprintf("registered, waiting for %d more player(s)", target.Capacity-len(target.Players))
	if len(target.Players) == target.Capacity {
		startTournament(target, r.ids.nextMatch, now)
		message = "registered, tournament is starting"
	}
	target.UpdatedAt = now
	snapshot := target.Clone()
	tournamentID := target.ID
	targetMu.Unlock()
	r.mu.Unlock()

	r.persist(ctx, snapshot)
	return &RegistrationResult{
		PlayerID:     playerID,
		TournamentID: tournamentID,
		Message:      message,
	}, nil
}

// SubmitResult carries the post-submission view of the player's match.
type SubmitResult struct {
	Message string        `json:"message"`
	Match   *models.Match `json:"match"`
}

// SubmitMove records a move for the player's active match. The second
// submission of a round either waits for the referee's release or, in
// auto-release tournaments, settles the round on the spot.
func (r *Registry) SubmitMove(ctx context.Context, playerID int, move models.Move) (*SubmitResult, error) {
	if !move.Valid() {
		return nil, fmt.Errorf("move %d is not a valid throw (1=rock 2=paper 3=scissors): %w", int(move), ErrValidation)
	}

	t, mu, err := r.findByPlayer(playerID)
	if err != nil {
		return nil, err
	}

	var result *SubmitResult
	err = r.update(ctx, t, mu, func(t *models.Tournament) error {
		p := t.Player(playerID)
		if !p.IsActive {
			return invalidState("submit move", "player eliminated")
		}

		var match *models.Match
		for i := range t.Matches {
			if t.Matches[i].Status != models.MatchCompleted && t.Matches[i].HasPlayer(playerID) {
				match = &t.Matches[i]
				break
			}
		}
		if match == nil {
			return fmt.Errorf("no active match for player %d: %w", playerID, ErrNotFound)
		}

		if err := submitMove(t, match, playerID, move, time.Now()); err != nil {
			return err
		}
		refreshRoundStatus(t)

		message := "move recorded, waiting for opponent"
		if match.Status == models.MatchCompleted {
			message = "match decided"
		} else if cur := match.Round(match.CurrentRound); cur != nil && cur.BothMovesIn() {
			message = "both moves in, awaiting release"
		}

		snap := *match
		snap.Rounds = append([]models.MatchRound(nil), match.Rounds...)
		result = &SubmitResult{Message: message, Match: &snap}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StartRound opens the current bracket round of a tournament.
func (r *Registry) StartRound(ctx context.Context, tournamentID int) error {
	t, mu, err := r.tournament(tournamentID)
	if err != nil {
		return err
	}
	return r.update(ctx, t, mu, startTournamentRound)
}

// ReleaseRoundResults advances the bracket once every match of the current
// round is decided: winners pair into the next round, or the champion is set.
func (r *Registry) ReleaseRoundResults(ctx context.Context, tournamentID int) error {
	t, mu, err := r.tournament(tournamentID)
	if err != nil {
		return err
	}
	return r.update(ctx, t, mu, func(t *models.Tournament) error {
		return releaseTournamentRound(t, r.ids.nextMatch, time.Now())
	})
}

// StartMatchRound opens the next sub-round of one match.
func (r *Registry) StartMatchRound(ctx context.Context, matchID int) error {
	t, mu, err := r.findByMatch(matchID)
	if err != nil {
		return err
	}
	return r.update(ctx, t, mu, func(t *models.Tournament) error {
		return startMatchRound(t.Match(matchID))
	})
}

// ReleaseMatchResults resolves the active sub-round of one match.
func (r *Registry) ReleaseMatchResults(ctx context.Context, matchID int) error {
	t, mu, err := r.findByMatch(matchID)
	if err != nil {
		return err
	}
	return r.update(ctx, t, mu, func(t *models.Tournament) error {
		if err := releaseMatchRound(t, t.Match(matchID), time.Now()); err != nil {
			return err
		}
		refreshRoundStatus(t)
		return nil
	})
}
