package club

import (
	"sync"

	"github.com/sebbultel59/padel-sync-engine/internal/badges"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc               func(playerID, name string, declaredLevel int)
	UpsertPlayersFunc           func(players []PlayerInfo) error
	GetPlayerFunc               func(playerID string) (*PlayerInfo, error)
	GetPlayersFunc              func(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayersFunc           func() ([]PlayerInfo, error)
	IsKnownPlayerFunc           func(playerID string) bool
	GetLeaderboardFunc          func() ([]LeaderboardEntry, error)
	UpsertResultFunc            func(result *MatchResult) error
	UpsertResultsFunc           func(results []*MatchResult) error
	GetResultsForProcessingFunc func() ([]*MatchResult, error)
	UpdateProcessingStatusFunc  func(matchID string, status ProcessingStatus) error
	ApplyRatingDeltaFunc        func(matchID string, playerIDs []string, delta float64) error
	GetRatingHistoryFunc        func(playerID string) ([]RatingChange, error)
	UpsertBadgesFunc            func(catalog []badges.Badge) error
	RecordBadgeUnlockFunc       func(badgeID, playerID string) error
	GetBadgeRaritiesFunc        func() ([]badges.BadgeRarity, error)

	// Call records
	AddPlayerCalls     []PlayerInfo
	UpsertPlayersCalls [][]PlayerInfo
	UpsertResultCalls  []*MatchResult
	UpsertResultsCalls [][]*MatchResult

	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  ProcessingStatus
	}
	ApplyRatingDeltaCalls []struct {
		MatchID   string
		PlayerIDs []string
		Delta     float64
	}
	RecordBadgeUnlockCalls []struct {
		BadgeID  string
		PlayerID string
	}
	GetPlayersCalls [][]string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = nil
	m.UpsertPlayersCalls = nil
	m.UpsertResultCalls = nil
	m.UpsertResultsCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.ApplyRatingDeltaCalls = nil
	m.RecordBadgeUnlockCalls = nil
	m.GetPlayersCalls = nil
}

func (m *MockStore) AddPlayer(playerID, name string, declaredLevel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, PlayerInfo{ID: playerID, Name: name, DeclaredLevel: declaredLevel})
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name, declaredLevel)
	}
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayersCalls = append(m.GetPlayersCalls, playerIDs)
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetLeaderboard() ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) UpsertResult(result *MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertResultCalls = append(m.UpsertResultCalls, result)
	if m.UpsertResultFunc != nil {
		return m.UpsertResultFunc(result)
	}
	return nil
}

func (m *MockStore) UpsertResults(results []*MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertResultsCalls = append(m.UpsertResultsCalls, results)
	if m.UpsertResultsFunc != nil {
		return m.UpsertResultsFunc(results)
	}
	return nil
}

func (m *MockStore) GetResultsForProcessing() ([]*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetResultsForProcessingFunc != nil {
		return m.GetResultsForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) ApplyRatingDelta(matchID string, playerIDs []string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyRatingDeltaCalls = append(m.ApplyRatingDeltaCalls, struct {
		MatchID   string
		PlayerIDs []string
		Delta     float64
	}{matchID, playerIDs, delta})
	if m.ApplyRatingDeltaFunc != nil {
		return m.ApplyRatingDeltaFunc(matchID, playerIDs, delta)
	}
	return nil
}

func (m *MockStore) GetRatingHistory(playerID string) ([]RatingChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRatingHistoryFunc != nil {
		return m.GetRatingHistoryFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) UpsertBadges(catalog []badges.Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertBadgesFunc != nil {
		return m.UpsertBadgesFunc(catalog)
	}
	return nil
}

func (m *MockStore) RecordBadgeUnlock(badgeID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordBadgeUnlockCalls = append(m.RecordBadgeUnlockCalls, struct {
		BadgeID  string
		PlayerID string
	}{badgeID, playerID})
	if m.RecordBadgeUnlockFunc != nil {
		return m.RecordBadgeUnlockFunc(badgeID, playerID)
	}
	return nil
}

func (m *MockStore) GetBadgeRarities() ([]badges.BadgeRarity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetBadgeRaritiesFunc != nil {
		return m.GetBadgeRaritiesFunc()
	}
	return nil, nil
}

func (m *MockStore) Clear() {}

func (m *MockStore) ClearMatch(matchID string) {}
