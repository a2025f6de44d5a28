package processor

import (
	"github.com/sebbultel59/padel-sync-engine/internal/metrics"
	"github.com/sebbultel59/padel-sync-engine/internal/pubsub"
)

// Processor applies finished match results to player ratings.
type Processor struct {
	store        Store
	pubsub       pubsub.PubSubClient
	metrics      metrics.Metrics
	metricsStore metrics.MetricsStore
}

// SideUpdate describes the delta applied to one side of a match.
type SideUpdate struct {
	TeamID    string   `json:"team_id" msgpack:"team_id"`
	PlayerIDs []string `json:"player_ids" msgpack:"player_ids"`
	Delta     float64  `json:"delta" msgpack:"delta"`
}

// RatingUpdate is the payload published on the rating-updated topic after a
// result has been applied.
type RatingUpdate struct {
	MatchID string       `json:"match_id" msgpack:"match_id"`
	Sides   []SideUpdate `json:"sides" msgpack:"sides"`
}
