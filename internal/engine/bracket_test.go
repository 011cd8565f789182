package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rps-backend/internal/models"
)

// decideMatch plays one best-of-1 throw with player1 winning (rock vs
// scissors) and has the referee release it.
func decideMatch(t *testing.T, reg *Registry, m models.Match) {
	t.Helper()
	ctx := context.Background()

	_, err := reg.SubmitMove(ctx, m.Player1ID, models.MoveRock)
	require.NoError(t, err)
	_, err = reg.SubmitMove(ctx, m.Player2ID, models.MoveScissors)
	require.NoError(t, err)
	require.NoError(t, reg.ReleaseMatchResults(ctx, m.ID))
}

func currentRoundMatches(t *testing.T, reg *Registry, tid int) []models.Match {
	t.Helper()
	snap, err := reg.TournamentState(tid)
	require.NoError(t, err)

	out := make([]models.Match, 0)
	for _, m := range snap.MatchesInRound(snap.CurrentRound) {
		out = append(out, *m)
	}
	return out
}

func TestEightPlayerBracket(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 8, BestOf: 1, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()

	names := make([]string, 8)
	for i := range names {
		names[i] = fmt.Sprintf("P%d", i+1)
	}
	results := registerPlayers(t, reg, names...)
	tid := results[0].TournamentID

	for i, res := range results[:7] {
		assert.Equal(t, fmt.Sprintf("registered, waiting for %d more player(s)", 7-i), res.Message)
	}
	assert.Equal(t, "registered, tournament is starting", results[7].Message)

	snap, err := reg.TournamentState(tid)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentInProgress, snap.Status)
	assert.Equal(t, 1, snap.CurrentRound)
	assert.Equal(t, models.RoundWaiting, snap.CurrentRoundStatus)
	assert.False(t, snap.StartedAt.IsZero())

	// Registration order pairs adjacent players: P1vP2, P3vP4, P5vP6, P7vP8
	round1 := currentRoundMatches(t, reg, tid)
	require.Len(t, round1, 4)
	for i, m := range round1 {
		assert.Equal(t, i+1, m.BracketOrder)
		assert.Equal(t, results[2*i].PlayerID, m.Player1ID)
		assert.Equal(t, results[2*i+1].PlayerID, m.Player2ID)
		assert.Equal(t, models.MatchPending, m.Status)
	}

	require.NoError(t, reg.StartRound(ctx, tid))

	// Every player has exactly one active match while the round runs
	for _, res := range results {
		m, err := reg.CurrentMatchForPlayer(res.PlayerID, false)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, models.MatchInProgress, m.Status)
	}

	rounds := []int{4, 2, 1}
	for roundIdx, want := range rounds {
		matches := currentRoundMatches(t, reg, tid)
		require.Len(t, matches, want, "round %d", roundIdx+1)

		for _, m := range matches {
			decideMatch(t, reg, m)
		}

		snap, err = reg.TournamentState(tid)
		require.NoError(t, err)
		assert.Equal(t, models.RoundResultsAvailable, snap.CurrentRoundStatus)

		require.NoError(t, reg.ReleaseRoundResults(ctx, tid))

		if want > 1 {
			require.NoError(t, reg.StartRound(ctx, tid))
		}
	}

	// Player 1 beat every opponent on the left side of the bracket
	snap, err = reg.TournamentState(tid)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentCompleted, snap.Status)
	assert.Equal(t, results[0].PlayerID, snap.WinnerID)
	assert.False(t, snap.CompletedAt.IsZero())
	assert.Len(t, snap.Matches, 7)

	// Only the champion survives
	active := 0
	for _, p := range snap.Players {
		if p.IsActive {
			active++
			assert.Equal(t, snap.WinnerID, p.ID)
		}
	}
	assert.Equal(t, 1, active)

	// Round 2 paired the winners of round 1 in bracket order
	for _, m := range snap.MatchesInRound(2) {
		assert.Contains(t, []int{results[0].PlayerID, results[2].PlayerID, results[4].PlayerID, results[6].PlayerID},
			m.Player1ID)
	}
}

func TestStartRound_Idempotence(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 1, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()

	results := registerPlayers(t, reg, "Ada", "Bea")
	tid := results[0].TournamentID

	require.NoError(t, reg.StartRound(ctx, tid))

	// A second start is rejected and leaves the round untouched
	err := reg.StartRound(ctx, tid)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.RoundInProgress), stateErr.Current)

	snap, err := reg.TournamentState(tid)
	require.NoError(t, err)
	assert.Equal(t, models.RoundInProgress, snap.CurrentRoundStatus)
	require.Len(t, snap.Matches, 1)
	assert.Len(t, snap.Matches[0].Rounds, 1)
}

func TestStartRound_RequiresRunningTournament(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 4, BestOf: 1, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()

	results := registerPlayers(t, reg, "Ada")
	err := reg.StartRound(ctx, results[0].TournamentID)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.TournamentWaiting), stateErr.Current)

	err = reg.StartRound(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReleaseRoundResults_Premature(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 4, BestOf: 1, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()

	results := registerPlayers(t, reg, "Ada", "Bea", "Cal", "Dov")
	tid := results[0].TournamentID

	// Round not started yet
	err := reg.ReleaseRoundResults(ctx, tid)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	require.NoError(t, reg.StartRound(ctx, tid))

	// One of two matches decided: results are not available
	matches := currentRoundMatches(t, reg, tid)
	require.Len(t, matches, 2)
	decideMatch(t, reg, matches[0])

	err = reg.ReleaseRoundResults(ctx, tid)
	assert.ErrorIs(t, err, ErrIncompleteRound)

	snap, err := reg.TournamentState(tid)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentRound)
	assert.Equal(t, models.RoundInProgress, snap.CurrentRoundStatus)

	// The second decision flips the round to results available
	decideMatch(t, reg, matches[1])
	snap, err = reg.TournamentState(tid)
	require.NoError(t, err)
	assert.Equal(t, models.RoundResultsAvailable, snap.CurrentRoundStatus)

	require.NoError(t, reg.ReleaseRoundResults(ctx, tid))
	snap, err = reg.TournamentState(tid)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.CurrentRound)
	require.Len(t, snap.MatchesInRound(2), 1)
}
