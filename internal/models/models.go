package models

import (
	"sort"
	"time"
)

type TournamentStatus string

const (
	TournamentWaiting    TournamentStatus = "waiting_for_players"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentCompleted  TournamentStatus = "completed"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

// RoundStatus tracks both a tournament's current bracket round and the
// sub-rounds inside a match. Sub-rounds never use RoundResultsAvailable.
type RoundStatus string

const (
	RoundWaiting          RoundStatus = "waiting"
	RoundInProgress       RoundStatus = "in_progress"
	RoundResultsAvailable RoundStatus = "results_available"
	RoundCompleted        RoundStatus = "completed"
)

type Player struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournamentId"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"isActive"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// MatchRound is one throw within a best-of-N match. A submitted move is
// immutable until the round itself is reset (tie replay).
type MatchRound struct {
	Number        int         `json:"number"`
	Status        RoundStatus `json:"status"`
	Player1Move   Move        `json:"player1Move"`
	Player2Move   Move        `json:"player2Move"`
	Player1MoveAt time.Time   `json:"player1MoveAt"`
	Player2MoveAt time.Time   `json:"player2MoveAt"`
	WinnerID      int         `json:"winnerId"`
}

func (r *MatchRound) BothMovesIn() bool {
	return r.Player1Move.Valid() && r.Player2Move.Valid()
}

type Match struct {
	ID           int `json:"id"`
	TournamentID int `json:"tournamentId"`

	// Position in the bracket for reconstructing the tree
	RoundNumber  int `json:"roundNumber"`
	BracketOrder int `json:"bracketOrder"`

	Player1ID int `json:"player1Id"`
	Player2ID int `json:"player2Id"`

	Status             MatchStatus `json:"status"`
	CurrentRound       int         `json:"currentRound"`
	CurrentRoundStatus RoundStatus `json:"currentRoundStatus"`

	Player1Wins int          `json:"player1Wins"`
	Player2Wins int          `json:"player2Wins"`
	WinnerID    int          `json:"winnerId"`
	Rounds      []MatchRound `json:"rounds"`

	CreatedAt   time.Time `json:"createdAt"`
	CompletedAt time.Time `json:"completedAt"`
}

func (m *Match) HasPlayer(playerID int) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// Round returns the sub-round with the given number, or nil if it has not
// been created yet.
func (m *Match) Round(number int) *MatchRound {
	for i := range m.Rounds {
		if m.Rounds[i].Number == number {
			return &m.Rounds[i]
		}
	}
	return nil
}

// LoserID returns the eliminated player once the match is decided, 0 before.
func (m *Match) LoserID() int {
	if m.Status != MatchCompleted || m.WinnerID == 0 {
		return 0
	}
	if m.WinnerID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// MajorityWins is the sub-round tally that decides a best-of-N match.
func MajorityWins(bestOf int) int {
	return bestOf/2 + 1
}

type Tournament struct {
	ID  int    `json:"id"`
	UID string `json:"uid"`

	Name     string           `json:"name"`
	Status   TournamentStatus `json:"status"`
	Capacity int              `json:"capacity"`

	// Rule configuration, fixed at creation time
	BestOf      int            `json:"bestOf"`
	Tiebreak    TiebreakPolicy `json:"tiebreak"`
	AutoRelease bool           `json:"autoRelease"`

	CurrentRound       int         `json:"currentRound"`
	CurrentRoundStatus RoundStatus `json:"currentRoundStatus"`

	Players  []Player `json:"players"`
	Matches  []Match  `json:"matches"`
	WinnerID int      `json:"winnerId"`

	CreatedAt   time.Time `json:"createdAt"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone deep-copies the aggregate so snapshots and store writes never share
// slices with the live tournament.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Players = append([]Player(nil), t.Players...)
	c.Matches = make([]Match, len(t.Matches))
	for i := range t.Matches {
		c.Matches[i] = t.Matches[i]
		c.Matches[i].Rounds = append([]MatchRound(nil), t.Matches[i].Rounds...)
	}
	return &c
}

// Player returns the registered player with the given ID, or nil.
func (t *Tournament) Player(playerID int) *Player {
	for i := range t.Players {
		if t.Players[i].ID == playerID {
			return &t.Players[i]
		}
	}
	return nil
}

// Match returns the match with the given ID, or nil.
func (t *Tournament) Match(matchID int) *Match {
	for i := range t.Matches {
		if t.Matches[i].ID == matchID {
			return &t.Matches[i]
		}
	}
	return nil
}

// MatchesInRound returns the matches of one bracket round in bracket order.
func (t *Tournament) MatchesInRound(round int) []*Match {
	var out []*Match
	for i := range t.Matches {
		if t.Matches[i].RoundNumber == round {
			out = append(out, &t.Matches[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BracketOrder < out[j].BracketOrder })
	return out
}

// SortMatches orders matches by round then ID, the order snapshots expose.
func (t *Tournament) SortMatches() {
	sort.Slice(t.Matches, func(i, j int) bool {
		if t.Matches[i].RoundNumber != t.Matches[j].RoundNumber {
			return t.Matches[i].RoundNumber < t.Matches[j].RoundNumber
		}
		return t.Matches[i].ID < t.Matches[j].ID
	})
}
