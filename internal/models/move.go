package models

import (
	"fmt"
	"time"
)

// Move is a player's throw. The wire encoding is the raw integer value:
// 1=rock, 2=paper, 3=scissors, 0=unset. Clients sending 0-based values are
// rejected at the boundary rather than silently shifted.
type Move int

const (
	MoveNone     Move = 0
	MoveRock     Move = 1
	MovePaper    Move = 2
	MoveScissors Move = 3
)

func (m Move) Valid() bool {
	return m >= MoveRock && m <= MoveScissors
}

func (m Move) String() string {
	switch m {
	case MoveRock:
		return "rock"
	case MovePaper:
		return "paper"
	case MoveScissors:
		return "scissors"
	case MoveNone:
		return "none"
	}
	return fmt.Sprintf("move(%d)", int(m))
}

// Beats reports whether m wins against other under the cyclic
// rock > scissors > paper > rock dominance.
func (m Move) Beats(other Move) bool {
	switch m {
	case MoveRock:
		return other == MoveScissors
	case MovePaper:
		return other == MoveRock
	case MoveScissors:
		return other == MovePaper
	}
	return false
}

// TiebreakPolicy decides what happens when both players throw the same move.
type TiebreakPolicy string

const (
	// TiebreakTimestamp awards the round to whoever submitted first.
	TiebreakTimestamp TiebreakPolicy = "timestamp"
	// TiebreakTie reports a true tie and leaves resolution to the caller.
	TiebreakTie TiebreakPolicy = "tie"
)

func (p TiebreakPolicy) Valid() bool {
	return p == TiebreakTimestamp || p == TiebreakTie
}

// RoundOutcome is the result of resolving one pair of moves.
type RoundOutcome int

const (
	OutcomePlayer1 RoundOutcome = 1
	OutcomePlayer2 RoundOutcome = 2
	OutcomeTie     RoundOutcome = 0
)

// ResolveMoves settles a single throw between two players. Both moves must be
// concrete; an unset move here means a caller skipped its own validation, so
// this panics rather than guessing.
//
// Under TiebreakTimestamp equal moves go to the earlier submission, so the
// outcome is always decisive. Under TiebreakTie equal moves return OutcomeTie.
func ResolveMoves(move1, move2 Move, at1, at2 time.Time, policy TiebreakPolicy) RoundOutcome {
	if !move1.Valid() || !move2.Valid() {
		panic(fmt.Sprintf("resolve called with unset move: %s vs %s", move1, move2))
	}

	if move1 != move2 {
		if move1.Beats(move2) {
			return OutcomePlayer1
		}
		return OutcomePlayer2
	}

	if policy == TiebreakTie {
		return OutcomeTie
	}

	// Identical moves, timestamp policy: first in wins
	if at1.After(at2) {
		return OutcomePlayer2
	}
	return OutcomePlayer1
}
