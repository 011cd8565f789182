// Package engine is the tournament orchestration core: registration, bracket
// seeding, match/round state transitions, move arbitration and read-only
// snapshots. All mutation happens under a per-tournament lock; every failed
// operation leaves the tournament untouched.
package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed caller input (empty name, bad move).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a missing player, match, tournament or round.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSubmission is returned when a player resubmits a move for
	// a round that already holds one. The recorded move is never replaced.
	ErrDuplicateSubmission = errors.New("move already submitted for this round")

	// ErrIncompleteSubmission is returned when a round release is attempted
	// before both players have moved.
	ErrIncompleteSubmission = errors.New("both moves must be submitted before release")

	// ErrIncompleteRound is returned when a bracket advance is attempted
	// while matches in the current round are still undecided.
	ErrIncompleteRound = errors.New("all matches must be completed before advancing")
)

// InvalidStateError reports an operation attempted from a state that does not
// permit it. Current carries the observed status so callers can render a
// precise reason instead of "something went wrong".
type InvalidStateError struct {
	Op      string
	Current string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: current status is %q", e.Op, e.Current)
}

func invalidState(op string, current any) error {
	return &InvalidStateError{Op: op, Current: fmt.Sprintf("%v", current)}
}
