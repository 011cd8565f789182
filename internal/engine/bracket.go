package engine

import (
	"sort"
	"time"

	"rps-backend/internal/models"
)

// Bracket management for a single-elimination tree. Capacity is a power of
// two, so every round halves cleanly and byes never occur. All functions run
// with the tournament lock held.

// startTournament seeds round 1 once registration fills the tournament.
// Seeding is adjacent pairs in registration order: first registrant plays
// the second, third plays the fourth, and so on.
func startTournament(t *models.Tournament, nextMatchID func() int, now time.Time) {
	players := append([]models.Player(nil), t.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].RegisteredAt.Before(players[j].RegisteredAt)
	})

	for i := 0; i < len(players); i += 2 {
		t.Matches = append(t.Matches, models.Match{
			ID:                 nextMatchID(),
			TournamentID:       t.ID,
			RoundNumber:        1,
			BracketOrder:       i/2 + 1,
			Player1ID:          players[i].ID,
			Player2ID:          players[i+1].ID,
			Status:             models.MatchPending,
			CurrentRound:       1,
			CurrentRoundStatus: models.RoundWaiting,
			CreatedAt:          now,
		})
	}

	t.Status = models.TournamentInProgress
	t.CurrentRound = 1
	t.CurrentRoundStatus = models.RoundWaiting
	t.StartedAt = now
}

// startTournamentRound opens every pending match of the current bracket round.
func startTournamentRound(t *models.Tournament) error {
	if t.Status != models.TournamentInProgress {
		return invalidState("start round", t.Status)
	}
	if t.CurrentRoundStatus != models.RoundWaiting {
		return invalidState("start round", t.CurrentRoundStatus)
	}

	for _, m := range t.MatchesInRound(t.CurrentRound) {
		if err := startMatchRound(m); err != nil {
			return err
		}
	}
	t.CurrentRoundStatus = models.RoundInProgress
	return nil
}

// refreshRoundStatus flips the round to results-available once its last match
// completes. Called after any operation that may have decided a match.
func refreshRoundStatus(t *models.Tournament) {
	if t.Status != models.TournamentInProgress || t.CurrentRoundStatus != models.RoundInProgress {
		return
	}
	for _, m := range t.MatchesInRound(t.CurrentRound) {
		if m.Status != models.MatchCompleted {
			return
		}
	}
	t.CurrentRoundStatus = models.RoundResultsAvailable
}

// releaseTournamentRound collects the winners of a finished bracket round and
// either crowns the champion or pairs the winners into the next round.
func releaseTournamentRound(t *models.Tournament, nextMatchID func() int, now time.Time) error {
	if t.Status != models.TournamentInProgress {
		return invalidState("release round results", t.Status)
	}

	switch t.CurrentRoundStatus {
	case models.RoundResultsAvailable:
	case models.RoundInProgress:
		return ErrIncompleteRound
	default:
		return invalidState("release round results", t.CurrentRoundStatus)
	}

	var winners []int
	for _, m := range t.MatchesInRound(t.CurrentRound) {
		winners = append(winners, m.WinnerID)
	}

	if len(winners) == 1 {
		t.Status = models.TournamentCompleted
		t.CurrentRoundStatus = models.RoundCompleted
		t.WinnerID = winners[0]
		t.CompletedAt = now
		return nil
	}

	next := t.CurrentRound + 1
	for i := 0; i < len(winners); i += 2 {
		t.Matches = append(t.Matches, models.Match{
			ID:                 nextMatchID(),
			TournamentID:       t.ID,
			RoundNumber:        next,
			BracketOrder:       i/2 + 1,
			Player1ID:          winners[i],
			Player2ID:          winners[i+1],
			Status:             models.MatchPending,
			CurrentRound:       1,
			CurrentRoundStatus: models.RoundWaiting,
			CreatedAt:          now,
		})
	}
	t.CurrentRound = next
	t.CurrentRoundStatus = models.RoundWaiting
	return nil
}
