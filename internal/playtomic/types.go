package playtomic

// SearchMatchesParams defines the parameters for searching for matches.
type SearchMatchesParams struct {
	SportID       string
	HasPlayers    bool
	Sort          string
	TenantIDs     []string
	FromStartDate string
}

// MatchSummary contains the essential details of a match from a search result.
type MatchSummary struct {
	MatchID string
	OwnerID *string
}

// PadelMatch represents a single padel match as played on a Playtomic court,
// reduced to the fields the rating importer needs.
type PadelMatch struct {
	MatchID         string
	OwnerID         string
	Start           int64
	End             int64
	GameStatus      GameStatus
	ResultsStatus   ResultsStatus
	CompetitionType CompetitionType
	Teams           []Team
	Tenant          Tenant
}

// CompetitionType defines the type of match.
type CompetitionType string

const (
	Competition CompetitionType = "COMPETITIVE"
	Practice    CompetitionType = "FRIENDLY"
)

// GameStatus defines the status of a game.
type GameStatus string

const (
	GameStatusPending    GameStatus = "PENDING"
	GameStatusPlayed     GameStatus = "PLAYED"
	GameStatusUnknown    GameStatus = "UNKNOWN"
	GameStatusCanceled   GameStatus = "CANCELED"
	GameStatusWaitingFor GameStatus = "WAITING_FOR"
	GameStatusExpired    GameStatus = "EXPIRED"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
)

// ResultsStatus defines the status of the match results.
type ResultsStatus string

const (
	ResultsStatusPending    ResultsStatus = "PENDING"
	ResultsStatusConfirmed  ResultsStatus = "CONFIRMED"
	ResultsStatusInvalid    ResultsStatus = "INVALID"
	ResultsStatusExpired    ResultsStatus = "EXPIRED"
	ResultsStatusWaitingFor ResultsStatus = "WAITING_FOR"
)

// TeamResultWon marks the winning side in a confirmed result.
const TeamResultWon = "WON"

// Team represents a team in a match.
type Team struct {
	ID         string
	Players    []Player
	TeamResult string
}

// Player represents a player in a match.
type Player struct {
	UserID string
	Name   string
	Level  float64
}

// Tenant represents a Playtomic tenant (club).
type Tenant struct {
	ID   string
	Name string
}

// playtomicMatchResponse defines the structure for the JSON response from the Playtomic API for a single match.
type playtomicMatchResponse struct {
	OwnerID         string                  `json:"owner_id"`
	StartDate       string                  `json:"start_date"`
	EndDate         string                  `json:"end_date"`
	GameStatus      string                  `json:"game_status"`
	Teams           []playtomicTeamResponse `json:"teams"`
	ResultsStatus   string                  `json:"results_status"`
	Tenant          playtomicTenant         `json:"tenant"`
	CompetitionType string                  `json:"competition_mode"`
}

// playtomicTenant defines the structure for the tenant information in the response.
type playtomicTenant struct {
	ID   string `json:"tenant_id"`
	Name string `json:"tenant_name"`
}

// playtomicTeamResponse defines the structure for a team within the match response.
type playtomicTeamResponse struct {
	TeamID     string                    `json:"team_id"`
	Players    []playtomicPlayerResponse `json:"players"`
	TeamResult *string                   `json:"team_result"`
}

// playtomicPlayerResponse defines the structure for a player within a team.
type playtomicPlayerResponse struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	LevelValue *float64 `json:"level_value"`
}
