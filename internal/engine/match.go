package engine

import (
	"fmt"
	"time"

	"rps-backend/internal/models"
)

// Match-level state machine. Every function here runs with the owning
// tournament's lock held and validates before it mutates, so a returned error
// always means the match is unchanged.

func startMatchRound(m *models.Match) error {
	if m.Status == models.MatchCompleted {
		return invalidState("start match round", m.Status)
	}

	cur := m.Round(m.CurrentRound)
	if cur != nil && cur.Status != models.RoundWaiting {
		return invalidState("start match round", cur.Status)
	}

	if cur == nil {
		m.Rounds = append(m.Rounds, models.MatchRound{
			Number: m.CurrentRound,
			Status: models.RoundInProgress,
		})
	} else {
		cur.Status = models.RoundInProgress
	}

	m.Status = models.MatchInProgress
	m.CurrentRoundStatus = models.RoundInProgress
	return nil
}

func submitMove(t *models.Tournament, m *models.Match, playerID int, move models.Move, now time.Time) error {
	if m.Status == models.MatchCompleted {
		return invalidState("submit move", m.Status)
	}
	if !m.HasPlayer(playerID) {
		return fmt.Errorf("player %d is not a participant of match %d: %w", playerID, m.ID, ErrNotFound)
	}

	cur := m.Round(m.CurrentRound)
	if cur == nil || cur.Status != models.RoundInProgress {
		status := models.RoundWaiting
		if cur != nil {
			status = cur.Status
		}
		return invalidState("submit move", status)
	}

	switch playerID {
	case m.Player1ID:
		if cur.Player1Move.Valid() {
			return fmt.Errorf("player %d, match %d round %d: %w", playerID, m.ID, cur.Number, ErrDuplicateSubmission)
		}
		cur.Player1Move = move
		cur.Player1MoveAt = now
	case m.Player2ID:
		if cur.Player2Move.Valid() {
			return fmt.Errorf("player %d, match %d round %d: %w", playerID, m.ID, cur.Number, ErrDuplicateSubmission)
		}
		cur.Player2Move = move
		cur.Player2MoveAt = now
	}

	// In auto-release mode the second submission settles the round
	// immediately; otherwise the referee releases it explicitly.
	if t.AutoRelease && cur.BothMovesIn() {
		return releaseMatchRound(t, m, now)
	}
	return nil
}

// releaseMatchRound resolves the active sub-round. A true tie (policy "tie")
// clears both moves and replays the same round number, so every counted round
// is decisive and a best-of-N match can never dead-end at a tied tally.
func releaseMatchRound(t *models.Tournament, m *models.Match, now time.Time) error {
	if m.Status == models.MatchCompleted {
		return invalidState("release match results", m.Status)
	}

	cur := m.Round(m.CurrentRound)
	if cur == nil || !cur.BothMovesIn() {
		return fmt.Errorf("match %d round %d: %w", m.ID, m.CurrentRound, ErrIncompleteSubmission)
	}

	outcome := models.ResolveMoves(cur.Player1Move, cur.Player2Move, cur.Player1MoveAt, cur.Player2MoveAt, t.Tiebreak)
	if outcome == models.OutcomeTie {
		cur.Player1Move = models.MoveNone
		cur.Player2Move = models.MoveNone
		cur.Player1MoveAt = time.Time{}
		cur.Player2MoveAt = time.Time{}
		return nil
	}

	if outcome == models.OutcomePlayer1 {
		cur.WinnerID = m.Player1ID
		m.Player1Wins++
	} else {
		cur.WinnerID = m.Player2ID
		m.Player2Wins++
	}
	cur.Status = models.RoundCompleted

	majority := models.MajorityWins(t.BestOf)
	if m.Player1Wins >= majority || m.Player2Wins >= majority {
		m.Status = models.MatchCompleted
		m.CurrentRoundStatus = models.RoundCompleted
		m.CompletedAt = now
		if m.Player1Wins > m.Player2Wins {
			m.WinnerID = m.Player1ID
		} else {
			m.WinnerID = m.Player2ID
		}
		if loser := t.Player(m.LoserID()); loser != nil {
			loser.IsActive = false
		}
		return nil
	}

	m.CurrentRound++
	m.CurrentRoundStatus = models.RoundWaiting
	if t.AutoRelease {
		// Full automation: the next throw opens without a referee
		return startMatchRound(m)
	}
	return nil
}
