package club

import "github.com/sebbultel59/padel-sync-engine/internal/badges"

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	AddPlayer(playerID, name string, declaredLevel int)
	UpsertPlayers(players []PlayerInfo) error
	GetPlayer(playerID string) (*PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	IsKnownPlayer(playerID string) bool
	GetLeaderboard() ([]LeaderboardEntry, error)

	UpsertResult(result *MatchResult) error
	UpsertResults(results []*MatchResult) error
	GetResultsForProcessing() ([]*MatchResult, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error
	ApplyRatingDelta(matchID string, playerIDs []string, delta float64) error
	GetRatingHistory(playerID string) ([]RatingChange, error)

	UpsertBadges(catalog []badges.Badge) error
	RecordBadgeUnlock(badgeID, playerID string) error
	GetBadgeRarities() ([]badges.BadgeRarity, error)

	Clear()
	ClearMatch(matchID string)
}
