// Package rating implements the club's skill rating model: an Elo-style
// expected score over a bounded 0-100 rating scale, and the per-match delta
// applied to each side's rating.
//
// All functions are pure and safe for concurrent use. Clamping the updated
// rating back into [0,100] is the caller's job (see the processor package);
// Delta itself returns the raw signed adjustment.
package rating

import "math"

const (
	// RatingMin and RatingMax bound the rating scale.
	RatingMin = 0.0
	RatingMax = 100.0

	// Scale controls how fast the expected score saturates with the rating
	// difference. Empirical constant, kept fixed for behavioral parity with
	// the historical ratings.
	Scale = 25.0

	// KBase is the base K-factor applied to (actual - expected).
	KBase = 2.0

	// TournamentMultiplier scales deltas for tournament matches.
	TournamentMultiplier = 1.2

	// ForfeitMultiplier dampens deltas for walkovers and retirements.
	ForfeitMultiplier = 0.7
)

// ClampRating forces r into the [RatingMin, RatingMax] interval. Upstream
// data may drift slightly out of range (floating point accumulation); we
// tolerate that rather than reject it.
func ClampRating(r float64) float64 {
	return math.Min(RatingMax, math.Max(RatingMin, r))
}

// ExpectedScore returns the expected score (win probability estimate) for a
// player rated rPlayer against an opponent rated rOpponent. The result lies
// in [0,1], is 0.5 for equal ratings, and satisfies
// ExpectedScore(a,b)+ExpectedScore(b,a) == 1.
func ExpectedScore(rPlayer, rOpponent float64) float64 {
	diff := ClampRating(rOpponent) - ClampRating(rPlayer)
	e := 1 / (1 + math.Pow(10, diff/Scale))
	return math.Min(1, math.Max(0, e))
}

// Delta computes the signed rating adjustment for one side of a finished
// match. Friendly matches and interrupted results never move ratings.
// Tournament and walkover/retirement modifiers stack multiplicatively, in
// that order. The result is rounded to 2 decimals, half away from zero.
func Delta(rTeam, rOpponent float64, won bool, ctx MatchContext) float64 {
	if ctx.MatchType == MatchTypeFriendly || ctx.ResultType == ResultTypeInterrupted {
		return 0
	}

	expected := ExpectedScore(rTeam, rOpponent)
	actual := 0.0
	if won {
		actual = 1.0
	}
	delta := KBase * (actual - expected)

	if ctx.MatchType == MatchTypeTournament {
		delta *= TournamentMultiplier
	}
	if ctx.ResultType == ResultTypeWalkover || ctx.ResultType == ResultTypeRetirement {
		delta *= ForfeitMultiplier
	}

	return Round2(delta)
}

// DeltaForOutcome is a convenience wrapper over Delta for callers holding a
// MatchOutcome value.
func DeltaForOutcome(o MatchOutcome) float64 {
	return Delta(o.TeamRating, o.OpponentRating, o.Won, o.Context)
}

// Round2 rounds to 2 decimal places, half away from zero. All user-facing
// rating math in this module pins this rounding mode.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
