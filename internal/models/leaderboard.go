package models

import "sort"

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	PlayerID  int    `json:"playerId"`
	Name      string `json:"name"`
	MatchWins int    `json:"matchWins"`
	RoundWins int    `json:"roundWins"`
}

// CalculateLeaderboard derives standings from completed matches and released
// sub-rounds. Ordering is match wins, then round wins, then name; entries
// with identical records share a rank.
func CalculateLeaderboard(t *Tournament) []LeaderboardEntry {
	matchWins := make(map[int]int)
	roundWins := make(map[int]int)

	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Status == MatchCompleted && m.WinnerID != 0 {
			matchWins[m.WinnerID]++
		}
		for j := range m.Rounds {
			if w := m.Rounds[j].WinnerID; w != 0 {
				roundWins[w]++
			}
		}
	}

	entries := make([]LeaderboardEntry, 0, len(t.Players))
	for _, p := range t.Players {
		entries = append(entries, LeaderboardEntry{
			PlayerID:  p.ID,
			Name:      p.Name,
			MatchWins: matchWins[p.ID],
			RoundWins: roundWins[p.ID],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MatchWins != entries[j].MatchWins {
			return entries[i].MatchWins > entries[j].MatchWins
		}
		if entries[i].RoundWins != entries[j].RoundWins {
			return entries[i].RoundWins > entries[j].RoundWins
		}
		return entries[i].Name < entries[j].Name
	})

	for i := range entries {
		if i > 0 && entries[i].MatchWins == entries[i-1].MatchWins && entries[i].RoundWins == entries[i-1].RoundWins {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}

	return entries
}

type RoundResultEntry struct {
	MatchID     int    `json:"matchId"`
	Player1ID   int    `json:"player1Id"`
	Player1Name string `json:"player1Name"`
	Player2ID   int    `json:"player2Id"`
	Player2Name string `json:"player2Name"`
	Player1Wins int    `json:"player1Wins"`
	Player2Wins int    `json:"player2Wins"`
	WinnerID    int    `json:"winnerId"`
	WinnerName  string `json:"winnerName"`
}

// RoundResults summarizes every match of one bracket round in bracket order.
func RoundResults(t *Tournament, round int) []RoundResultEntry {
	playerName := func(id int) string {
		if p := t.Player(id); p != nil {
			return p.Name
		}
		return ""
	}

	matches := t.MatchesInRound(round)
	entries := make([]RoundResultEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, RoundResultEntry{
			MatchID:     m.ID,
			Player1ID:   m.Player1ID,
			Player1Name: playerName(m.Player1ID),
			Player2ID:   m.Player2ID,
			Player2Name: playerName(m.Player2ID),
			Player1Wins: m.Player1Wins,
			Player2Wins: m.Player2Wins,
			WinnerID:    m.WinnerID,
			WinnerName:  playerName(m.WinnerID),
		})
	}
	return entries
}
