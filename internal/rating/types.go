package rating

// MatchType represents how competitive a match is, which decides whether and
// how much the result moves ratings.
type MatchType string

const (
	MatchTypeRanked     MatchType = "RANKED"
	MatchTypeFriendly   MatchType = "FRIENDLY"
	MatchTypeTournament MatchType = "TOURNAMENT"
)

// ResultType represents how a match ended.
type ResultType string

const (
	ResultTypeNormal      ResultType = "NORMAL"
	ResultTypeWalkover    ResultType = "WO"
	ResultTypeRetirement  ResultType = "RETIRE"
	ResultTypeInterrupted ResultType = "INTERRUPTED"
)

// MatchContext describes how a rating delta should be scaled for one match.
// It is built per match by the caller and never persisted here.
type MatchContext struct {
	MatchType  MatchType  `json:"match_type" msgpack:"match_type"`
	ResultType ResultType `json:"result_type" msgpack:"result_type"`
}

// MatchOutcome is the input for a single side's rating update: the two
// opposing side ratings, whether this side won, and the match context.
type MatchOutcome struct {
	TeamRating     float64      `json:"team_rating" msgpack:"team_rating"`
	OpponentRating float64      `json:"opponent_rating" msgpack:"opponent_rating"`
	Won            bool         `json:"won" msgpack:"won"`
	Context        MatchContext `json:"context" msgpack:"context"`
}
