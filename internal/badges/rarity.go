// Package badges holds the badge catalog types and the population-based
// rarity score used to order badges from rarest to most common.
package badges

import "github.com/sebbultel59/padel-sync-engine/internal/rating"

// RarityScore converts a badge's unlock count across the whole player
// population into a 0-100 score, rounded to 2 decimals half away from zero.
// It is a presentation ordering heuristic, not a probability: 0 unlocks
// scores 100, and the score floors at 0 after 1000 unlocks.
func RarityScore(unlockCount int) float64 {
	if unlockCount < 0 {
		unlockCount = 0
	}
	score := 100 - float64(unlockCount)/10
	if score < 0 {
		return 0
	}
	return rating.Round2(score)
}
