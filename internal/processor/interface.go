package processor

import "github.com/sebbultel59/padel-sync-engine/internal/club"

// Store defines the database operations required by the processor.
type Store interface {
	UpsertResult(result *club.MatchResult) error
	GetResultsForProcessing() ([]*club.MatchResult, error)
	UpdateProcessingStatus(matchID string, status club.ProcessingStatus) error
	GetPlayers(playerIDs []string) ([]club.PlayerInfo, error)
	ApplyRatingDelta(matchID string, playerIDs []string, delta float64) error
}
