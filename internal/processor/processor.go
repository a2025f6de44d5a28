package processor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/metrics"
	"github.com/sebbultel59/padel-sync-engine/internal/pubsub"
	"github.com/sebbultel59/padel-sync-engine/internal/rating"
)

// New creates a new Processor.
func New(store Store, metricsSvc metrics.Metrics, metricsStore metrics.MetricsStore, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:        store,
		pubsub:       pubsub,
		metrics:      metricsSvc,
		metricsStore: metricsStore,
	}
}

// RecordResult queues a submitted result and immediately runs the pending
// queue. Resubmitting an already processed match is harmless: the upsert
// never resets the processing status, so it will not be rated twice.
func (p *Processor) RecordResult(result *club.MatchResult, dryRun bool) error {
	if err := p.store.UpsertResult(result); err != nil {
		return fmt.Errorf("failed to queue result %s: %w", result.MatchID, err)
	}
	p.ProcessResults(dryRun)
	return nil
}

// ProcessResults fetches results that still need rating updates and applies
// them one by one. Failed results stay queued; the caller (or the next run)
// decides whether to retry.
func (p *Processor) ProcessResults(dryRun bool) {
	log.Info("Starting result processing...")
	results, err := p.store.GetResultsForProcessing()
	if err != nil {
		log.Error("Failed to get results for processing", "error", err)
		return
	}

	if len(results) == 0 {
		log.Info("No results to process.")
		return
	}

	log.Info("Found results to process", "count", len(results))
	for _, result := range results {
		startTime := time.Now()
		if err := p.ProcessResult(result, dryRun); err != nil {
			log.Error("Failed to process result", "matchID", result.MatchID, "error", err)
		}
		p.metrics.ObserveUpdateDuration(time.Since(startTime).Seconds())
	}
	log.Info("Result processing finished.")
}

// ProcessResult applies one finished match to both sides' ratings. Each
// side's delta is computed against the opposing side's current rating, then
// written back clamped inside a single store transaction, so concurrent
// updates for the same player serialize instead of losing one another.
func (p *Processor) ProcessResult(result *club.MatchResult, dryRun bool) error {
	log.Info("Processing result", "matchID", result.MatchID, "matchType", result.Context.MatchType, "resultType", result.Context.ResultType)

	if err := validateResult(result); err != nil {
		return err
	}
	p.metrics.IncResultsProcessed()
	p.metricsStore.Increment(metrics.KeyResultsProcessed)

	// Friendly and interrupted matches never move ratings. Mark them so they
	// are not revisited on the next run.
	if result.Context.MatchType == rating.MatchTypeFriendly || result.Context.ResultType == rating.ResultTypeInterrupted {
		log.Info("Result does not affect ratings. Suppressing deltas.", "matchID", result.MatchID)
		p.metrics.IncDeltasSuppressed()
		p.metricsStore.Increment(metrics.KeyDeltasSuppressed)
		if dryRun {
			return nil
		}
		return p.store.UpdateProcessingStatus(result.MatchID, club.StatusSuppressed)
	}

	sideRatings := make([]float64, len(result.Sides))
	for i, side := range result.Sides {
		r, err := p.sideRating(side)
		if err != nil {
			return fmt.Errorf("match %s side %s: %w", result.MatchID, side.TeamID, err)
		}
		sideRatings[i] = r
	}

	update := RatingUpdate{MatchID: result.MatchID}
	for i, side := range result.Sides {
		opponent := sideRatings[1-i]
		delta := rating.Delta(sideRatings[i], opponent, side.Won, result.Context)
		update.Sides = append(update.Sides, SideUpdate{
			TeamID:    side.TeamID,
			PlayerIDs: side.PlayerIDs,
			Delta:     delta,
		})

		if dryRun {
			log.Info("[Dry Run] Would apply rating delta", "matchID", result.MatchID, "teamID", side.TeamID, "delta", delta)
			continue
		}
		if err := p.store.ApplyRatingDelta(result.MatchID, side.PlayerIDs, delta); err != nil {
			return fmt.Errorf("failed to apply delta for match %s: %w", result.MatchID, err)
		}
		p.metrics.IncDeltasApplied()
		p.metricsStore.Increment(metrics.KeyDeltasApplied)
	}

	if dryRun {
		return nil
	}

	if err := p.store.UpdateProcessingStatus(result.MatchID, club.StatusProcessed); err != nil {
		return fmt.Errorf("failed to mark result %s processed: %w", result.MatchID, err)
	}
	if err := p.pubsub.SendMessage(pubsub.EventRatingUpdated, &update); err != nil {
		// The deltas are already committed; the event is best effort.
		log.Error("Failed to publish rating update", "matchID", result.MatchID, "error", err)
	}

	log.Info("Finished processing result", "matchID", result.MatchID)
	return nil
}

// sideRating resolves the single effective rating for one side: the average
// of the side's player ratings, doubles sharing one side-rating.
func (p *Processor) sideRating(side club.MatchSide) (float64, error) {
	players, err := p.store.GetPlayers(side.PlayerIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) != len(side.PlayerIDs) {
		return 0, fmt.Errorf("unknown players on side (want %d, found %d)", len(side.PlayerIDs), len(players))
	}

	sum := 0.0
	for _, player := range players {
		sum += rating.ClampRating(player.Rating)
	}
	return sum / float64(len(players)), nil
}

func validateResult(result *club.MatchResult) error {
	if len(result.Sides) != 2 {
		return fmt.Errorf("result %s must have exactly 2 sides, got %d", result.MatchID, len(result.Sides))
	}
	winners := 0
	for _, side := range result.Sides {
		if len(side.PlayerIDs) == 0 {
			return fmt.Errorf("result %s has a side with no players", result.MatchID)
		}
		if side.Won {
			winners++
		}
	}
	if winners != 1 {
		return fmt.Errorf("result %s must have exactly 1 winning side, got %d", result.MatchID, winners)
	}
	return nil
}
