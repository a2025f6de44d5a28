package playtomic

import (
	"math"

	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/rating"
)

// ToMatchResult converts a Playtomic match into the engine's result form.
// The second return value is false when the match is not ratable: not played
// yet, results not confirmed, or missing a clear two-sided outcome.
func ToMatchResult(m *PadelMatch) (*club.MatchResult, bool) {
	if m.GameStatus != GameStatusPlayed || m.ResultsStatus != ResultsStatusConfirmed {
		return nil, false
	}
	if len(m.Teams) != 2 {
		return nil, false
	}

	winners := 0
	sides := make([]club.MatchSide, 0, len(m.Teams))
	for _, team := range m.Teams {
		side := club.MatchSide{
			TeamID: team.ID,
			Won:    team.TeamResult == TeamResultWon,
		}
		if side.Won {
			winners++
		}
		for _, player := range team.Players {
			side.PlayerIDs = append(side.PlayerIDs, player.UserID)
		}
		if len(side.PlayerIDs) == 0 {
			return nil, false
		}
		sides = append(sides, side)
	}
	if winners != 1 {
		return nil, false
	}

	matchType := rating.MatchTypeFriendly
	if m.CompetitionType == Competition {
		matchType = rating.MatchTypeRanked
	}

	return &club.MatchResult{
		MatchID: m.MatchID,
		Sides:   sides,
		Context: rating.MatchContext{
			MatchType:  matchType,
			ResultType: rating.ResultTypeNormal,
		},
		PlayedAt: m.End,
	}, true
}

// ToPlayers extracts the players of a match for upserting into the club
// store. The Playtomic 0-7 level value maps onto the club's declared levels
// 1-8 and only seeds ratings for players we have never seen.
func ToPlayers(m *PadelMatch) []club.PlayerInfo {
	var players []club.PlayerInfo
	for _, team := range m.Teams {
		for _, player := range team.Players {
			declared := int(math.Round(player.Level)) + 1
			if declared < 1 {
				declared = 1
			} else if declared > 8 {
				declared = 8
			}
			players = append(players, club.PlayerInfo{
				ID:            player.UserID,
				Name:          player.Name,
				DeclaredLevel: declared,
			})
		}
	}
	return players
}
