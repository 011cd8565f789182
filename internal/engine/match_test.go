package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rps-backend/internal/models"
	"rps-backend/internal/store"
)

func newTestRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	reg, err := NewRegistry(opts, store.NewMemoryStore())
	require.NoError(t, err)
	return reg
}

func registerPlayers(t *testing.T, reg *Registry, names ...string) []*RegistrationResult {
	t.Helper()
	ctx := context.Background()
	results := make([]*RegistrationResult, 0, len(names))
	for _, name := range names {
		res, err := reg.RegisterPlayer(ctx, name)
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

// headToHead spins up a capacity-2 tournament with an open round 1 and
// returns the two player IDs and the match.
func headToHead(t *testing.T, reg *Registry) (p1, p2 int, match models.Match) {
	t.Helper()
	ctx := context.Background()

	results := registerPlayers(t, reg, "Ada", "Bea")
	tid := results[0].TournamentID
	require.NoError(t, reg.StartRound(ctx, tid))

	snap, err := reg.TournamentState(tid)
	require.NoError(t, err)
	require.Len(t, snap.Matches, 1)
	return results[0].PlayerID, results[1].PlayerID, snap.Matches[0]
}

func TestSubmitMove_RequiresOpenRound(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()

	results := registerPlayers(t, reg, "Ada", "Bea")

	// Round 1 exists but has not been started by the referee yet
	_, err := reg.SubmitMove(ctx, results[0].PlayerID, models.MoveRock)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.RoundWaiting), stateErr.Current)
}

func TestSubmitMove_Validation(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()

	_, err := reg.SubmitMove(ctx, 1, models.Move(7))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = reg.SubmitMove(ctx, 99, models.MoveRock)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitMove_NonParticipant(t *testing.T) {
	tournament := &models.Tournament{BestOf: 3, Tiebreak: models.TiebreakTimestamp}
	match := &models.Match{
		ID: 1, Player1ID: 1, Player2ID: 2,
		Status: models.MatchInProgress, CurrentRound: 1,
		Rounds: []models.MatchRound{{Number: 1, Status: models.RoundInProgress}},
	}

	err := submitMove(tournament, match, 3, models.MoveRock, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitMove_Duplicate(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()
	p1, _, match := headToHead(t, reg)

	_, err := reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)

	_, err = reg.SubmitMove(ctx, p1, models.MovePaper)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	// The original move is untouched
	current, err := reg.CurrentMatchForPlayer(p1, false)
	require.NoError(t, err)
	require.Equal(t, match.ID, current.ID)
	assert.Equal(t, models.MoveRock, current.Rounds[0].Player1Move)
}

func TestReleaseMatchResults_Incomplete(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()
	p1, _, match := headToHead(t, reg)

	_, err := reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)

	err = reg.ReleaseMatchResults(ctx, match.ID)
	assert.ErrorIs(t, err, ErrIncompleteSubmission)

	// Round unchanged: still in progress, no winner recorded
	current, err := reg.CurrentMatchForPlayer(p1, false)
	require.NoError(t, err)
	assert.Equal(t, models.RoundInProgress, current.Rounds[0].Status)
	assert.Zero(t, current.Rounds[0].WinnerID)
}

func TestBestOfThree_RefereePaced(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()
	p1, p2, match := headToHead(t, reg)
	tid := match.TournamentID

	// Round 1: Ada's rock beats Bea's scissors
	_, err := reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)
	res, err := reg.SubmitMove(ctx, p2, models.MoveScissors)
	require.NoError(t, err)
	assert.Equal(t, "both moves in, awaiting release", res.Message)

	require.NoError(t, reg.ReleaseMatchResults(ctx, match.ID))

	current, err := reg.CurrentMatchForPlayer(p1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Player1Wins)
	assert.Equal(t, 2, current.CurrentRound)
	assert.Equal(t, models.RoundWaiting, current.CurrentRoundStatus)

	// Round 2: referee opens it, Ada closes out the match
	require.NoError(t, reg.StartMatchRound(ctx, match.ID))
	_, err = reg.SubmitMove(ctx, p1, models.MovePaper)
	require.NoError(t, err)
	_, err = reg.SubmitMove(ctx, p2, models.MoveRock)
	require.NoError(t, err)
	require.NoError(t, reg.ReleaseMatchResults(ctx, match.ID))

	decided, err := reg.CurrentMatchForPlayer(p1, true)
	require.NoError(t, err)
	assert.Equal(t, models.MatchCompleted, decided.Status)
	assert.Equal(t, p1, decided.WinnerID)
	assert.Equal(t, 2, decided.Player1Wins)

	// No third round was played, and the loser is out
	assert.Len(t, decided.Rounds, 2)
	snap, err := reg.TournamentState(tid)
	require.NoError(t, err)
	assert.False(t, snap.Player(p2).IsActive)
	assert.True(t, snap.Player(p1).IsActive)
	assert.Equal(t, models.RoundResultsAvailable, snap.CurrentRoundStatus)
}

func TestTiePolicy_ReplaysRound(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTie})
	ctx := context.Background()
	p1, p2, match := headToHead(t, reg)

	_, err := reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)
	_, err = reg.SubmitMove(ctx, p2, models.MoveRock)
	require.NoError(t, err)

	require.NoError(t, reg.ReleaseMatchResults(ctx, match.ID))

	// The tied throw is discarded and round 1 replays
	current, err := reg.CurrentMatchForPlayer(p1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, current.CurrentRound)
	assert.Equal(t, models.RoundInProgress, current.Rounds[0].Status)
	assert.Equal(t, models.MoveNone, current.Rounds[0].Player1Move)
	assert.Equal(t, models.MoveNone, current.Rounds[0].Player2Move)
	assert.Zero(t, current.Player1Wins+current.Player2Wins)

	// Both players can throw again
	_, err = reg.SubmitMove(ctx, p1, models.MovePaper)
	require.NoError(t, err)
	_, err = reg.SubmitMove(ctx, p2, models.MoveRock)
	require.NoError(t, err)
	require.NoError(t, reg.ReleaseMatchResults(ctx, match.ID))

	current, err = reg.CurrentMatchForPlayer(p1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Player1Wins)
}

func TestTimestampPolicy_EarlierSubmissionWinsTiedThrow(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 1, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()
	p1, p2, match := headToHead(t, reg)

	// Bea submits rock first, Ada matches it later
	_, err := reg.SubmitMove(ctx, p2, models.MoveRock)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)

	require.NoError(t, reg.ReleaseMatchResults(ctx, match.ID))

	decided, err := reg.CurrentMatchForPlayer(p2, true)
	require.NoError(t, err)
	assert.Equal(t, p2, decided.WinnerID, "earlier submission should take the tied throw")
}

func TestAutoRelease_ResolvesOnSecondSubmission(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 3, Tiebreak: models.TiebreakTimestamp, AutoRelease: true})
	ctx := context.Background()
	p1, p2, _ := headToHead(t, reg)

	_, err := reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)
	res, err := reg.SubmitMove(ctx, p2, models.MoveScissors)
	require.NoError(t, err)

	// Round settled and the next throw opened without a referee
	assert.Equal(t, 1, res.Match.Player1Wins)
	assert.Equal(t, 2, res.Match.CurrentRound)
	assert.Equal(t, models.RoundInProgress, res.Match.CurrentRoundStatus)

	// Second straight win decides the match on the spot
	_, err = reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)
	res, err = reg.SubmitMove(ctx, p2, models.MoveScissors)
	require.NoError(t, err)
	assert.Equal(t, "match decided", res.Message)
	assert.Equal(t, models.MatchCompleted, res.Match.Status)
	assert.Equal(t, p1, res.Match.WinnerID)
}

func TestStartMatchRound_Guards(t *testing.T) {
	reg := newTestRegistry(t, Options{Capacity: 2, BestOf: 1, Tiebreak: models.TiebreakTimestamp})
	ctx := context.Background()
	p1, p2, match := headToHead(t, reg)

	// Round already in progress
	err := reg.StartMatchRound(ctx, match.ID)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	// Completed match refuses further rounds
	_, err = reg.SubmitMove(ctx, p1, models.MoveRock)
	require.NoError(t, err)
	_, err = reg.SubmitMove(ctx, p2, models.MoveScissors)
	require.NoError(t, err)
	require.NoError(t, reg.ReleaseMatchResults(ctx, match.ID))

	err = reg.StartMatchRound(ctx, match.ID)
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.MatchCompleted), stateErr.Current)

	err = reg.ReleaseMatchResults(ctx, match.ID)
	require.ErrorAs(t, err, &stateErr)
}
