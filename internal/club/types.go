package club

import (
	"database/sql"
	"sync"

	"github.com/sebbultel59/padel-sync-engine/internal/rating"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a player in the store. Level and XP are derived from
// the stored rating on read; they are never persisted.
type PlayerInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Rating        float64 `json:"rating"`
	DeclaredLevel int     `json:"declared_level"`
	Level         int     `json:"level"`
	XP            float64 `json:"xp"`
}

// LeaderboardEntry is one row of the club leaderboard, ranked by rating.
// Rank assignment (including tie ordering) is the store's concern; the
// ranking comes straight from a row_number window over the rating order.
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Rating     float64 `json:"rating"`
	Level      int     `json:"level"`
	XP         float64 `json:"xp"`
}

// ProcessingStatus defines the internal processing state of a match result.
type ProcessingStatus string

const (
	StatusNew        ProcessingStatus = "NEW"
	StatusProcessed  ProcessingStatus = "PROCESSED"
	StatusSuppressed ProcessingStatus = "SUPPRESSED"
)

// MatchSide is one side of a finished match. Doubles sides carry two player
// IDs; the side shares a single effective rating for the update.
type MatchSide struct {
	TeamID    string   `json:"team_id" msgpack:"team_id"`
	PlayerIDs []string `json:"player_ids" msgpack:"player_ids"`
	Won       bool     `json:"won" msgpack:"won"`
}

// MatchResult represents a finished match as submitted by the ingestion
// paths, queued in the store until its rating deltas have been applied.
type MatchResult struct {
	MatchID          string              `json:"match_id" msgpack:"match_id"`
	Sides            []MatchSide         `json:"sides" msgpack:"sides"`
	Context          rating.MatchContext `json:"context" msgpack:"context"`
	PlayedAt         int64               `json:"played_at" msgpack:"played_at"`
	ProcessingStatus ProcessingStatus    `json:"processing_status" msgpack:"processing_status"`
}

// RatingChange is one applied (or suppressed) delta, kept as history so a
// player's rating curve can be rendered over time.
type RatingChange struct {
	ID          string  `json:"id"`
	MatchID     string  `json:"match_id"`
	PlayerID    string  `json:"player_id"`
	Delta       float64 `json:"delta"`
	RatingAfter float64 `json:"rating_after"`
	CreatedAt   int64   `json:"created_at"`
}
