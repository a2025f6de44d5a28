package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sebbultel59/padel-sync-engine/internal/badges"
	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/config"
	"github.com/sebbultel59/padel-sync-engine/internal/database"
	"github.com/sebbultel59/padel-sync-engine/internal/metrics"
	"github.com/sebbultel59/padel-sync-engine/internal/playtomic"
	"github.com/sebbultel59/padel-sync-engine/internal/processor"
	"github.com/sebbultel59/padel-sync-engine/internal/pubsub"
	"github.com/sebbultel59/padel-sync-engine/internal/rating"
	"github.com/prometheus/client_golang/prometheus"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, playtomicClient playtomic.PlaytomicClient) (*Server, func()) {
	t.Helper()

	// For handlers that use the store, we need a real db connection for now.
	db, dbTeardown, err := database.InitDB(t.TempDir()+"/test.db", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	metricsStore := metrics.New(db)
	cfg := config.Config{TenantID: "tenant-test"}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	pubsubClient := pubsub.NewMock("TEST")
	proc := processor.New(clubStore, metricsSvc, metricsStore, pubsubClient)
	server := NewServer(clubStore, metricsSvc, metricsStore, metricsHandler, cfg, playtomicClient, proc, pubsubClient)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, teardown
}

func declareLevel(t *testing.T, server *Server, playerID, name string, level int) {
	t.Helper()
	body := fmt.Sprintf(`{"player_id":%q,"name":%q,"declared_level":%d}`, playerID, name, level)
	req := httptest.NewRequest("POST", "/declare-level", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, "declare-level failed: %s", rr.Body.String())
}

func testResult(matchID string, matchType rating.MatchType, resultType rating.ResultType) club.MatchResult {
	return club.MatchResult{
		MatchID: matchID,
		Sides: []club.MatchSide{
			{TeamID: "1", PlayerIDs: []string{"p1"}, Won: true},
			{TeamID: "2", PlayerIDs: []string{"p2"}, Won: false},
		},
		Context:  rating.MatchContext{MatchType: matchType, ResultType: resultType},
		PlayedAt: 1700000000,
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestDeclareLevelHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	t.Run("seeds the rating at the band midpoint", func(t *testing.T) {
		body := `{"player_id":"p1","name":"Alice","declared_level":5}`
		req := httptest.NewRequest("POST", "/declare-level", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var player club.PlayerInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
		assert.Equal(t, "p1", player.ID)
		assert.Equal(t, 5, player.Level)
		assert.InDelta(t, 56.2, player.Rating, 1e-9)
		assert.InDelta(t, 50.0, player.XP, 0.01)
	})

	t.Run("re-declaring does not reset an existing rating", func(t *testing.T) {
		body := `{"player_id":"p1","name":"Alice","declared_level":2}`
		req := httptest.NewRequest("POST", "/declare-level", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var player club.PlayerInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
		assert.InDelta(t, 56.2, player.Rating, 1e-9)
	})

	t.Run("rejects an out-of-range level", func(t *testing.T) {
		body := `{"player_id":"p2","name":"Bob","declared_level":9}`
		req := httptest.NewRequest("POST", "/declare-level", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a GET", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/declare-level", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestRecordResultHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	declareLevel(t, server, "p1", "Alice", 5)
	declareLevel(t, server, "p2", "Bob", 5)

	body, err := json.Marshal(testResult("match-1", rating.MatchTypeRanked, rating.ResultTypeNormal))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/record-result", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p1, err := server.Store.GetPlayer("p1")
	require.NoError(t, err)
	p2, err := server.Store.GetPlayer("p2")
	require.NoError(t, err)
	assert.InDelta(t, 57.2, p1.Rating, 1e-9, "winner gains 1.0 at equal ratings")
	assert.InDelta(t, 55.2, p2.Rating, 1e-9, "loser drops 1.0 at equal ratings")
}

func TestRecordResultHandler_DryRun(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	declareLevel(t, server, "p1", "Alice", 5)
	declareLevel(t, server, "p2", "Bob", 5)

	body, err := json.Marshal(testResult("match-1", rating.MatchTypeRanked, rating.ResultTypeNormal))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/record-result?dry_run=true", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	p1, err := server.Store.GetPlayer("p1")
	require.NoError(t, err)
	assert.InDelta(t, 56.2, p1.Rating, 1e-9, "dry run must not touch ratings")
}

func TestResultEventHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	declareLevel(t, server, "p1", "Alice", 5)
	declareLevel(t, server, "p2", "Bob", 5)

	result := testResult("match-1", rating.MatchTypeRanked, rating.ResultTypeNormal)
	payload, err := msgpack.Marshal(&result)
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/result-event",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/result-event", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p1, err := server.Store.GetPlayer("p1")
	require.NoError(t, err)
	assert.InDelta(t, 57.2, p1.Rating, 1e-9)

	t.Run("rejects a broken envelope", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/result-event", bytes.NewBufferString("not json"))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/result-event", bytes.NewBufferString(`{"message":{"data":"!!!"}}`))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPlayerProgressHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	t.Run("maps a raw rating to level and xp", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/player-progress?rating=62.5", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Rating float64 `json:"rating"`
			Level  int     `json:"level"`
			XP     float64 `json:"xp"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 6, resp.Level)
		assert.InDelta(t, 0.0, resp.XP, 0.01)
	})

	t.Run("returns the stored player with history", func(t *testing.T) {
		declareLevel(t, server, "p1", "Alice", 5)
		declareLevel(t, server, "p2", "Bob", 5)

		body, err := json.Marshal(testResult("match-1", rating.MatchTypeRanked, rating.ResultTypeNormal))
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/record-result", bytes.NewBuffer(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		req = httptest.NewRequest("GET", "/player-progress?player_id=p1", nil)
		rr = httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp playerProgressResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Player)
		assert.InDelta(t, 57.2, resp.Player.Rating, 1e-9)
		require.Len(t, resp.History, 1)
		assert.InDelta(t, 1.0, resp.History[0].Delta, 1e-9)
	})

	t.Run("unknown player returns 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/player-progress?player_id=ghost", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing parameters returns 400", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/player-progress", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListPlayersHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	declareLevel(t, server, "p1", "Alice", 5)
	declareLevel(t, server, "p2", "Bob", 3)

	req := httptest.NewRequest("GET", "/players", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var players []club.PlayerInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	assert.Len(t, players, 2)
}

func TestLeaderboardHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	declareLevel(t, server, "p1", "Alice", 6)
	declareLevel(t, server, "p2", "Bob", 3)

	req := httptest.NewRequest("GET", "/leaderboard", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []club.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "p1", entries[0].PlayerID, "higher rated player ranks first")
	assert.Equal(t, 2, entries[1].Rank)
}

func TestBadgeRaritiesHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	declareLevel(t, server, "p1", "Alice", 5)
	require.NoError(t, server.Store.UpsertBadges([]badges.Badge{
		{ID: "first-win", Name: "First Win", Description: "Win a match"},
	}))
	require.NoError(t, server.Store.RecordBadgeUnlock("first-win", "p1"))

	req := httptest.NewRequest("GET", "/badges", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rarities []badges.BadgeRarity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rarities))
	require.Len(t, rarities, 1)
	assert.Equal(t, 1, rarities[0].UnlockCount)
	assert.InDelta(t, 99.9, rarities[0].RarityScore, 1e-9)
}

func TestEngineStatsHandler(t *testing.T) {
	server, teardown := setupTestServer(t, playtomic.NewMockClient())
	defer teardown()

	server.MetricsStore.Increment("results_processed")
	server.MetricsStore.Increment("results_processed")

	req := httptest.NewRequest("GET", "/engine-stats", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var stats map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats["results_processed"])
}

func TestImportPlaytomicHandler(t *testing.T) {
	mockClient := playtomic.NewMockClient()
	mockClient.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		return []playtomic.MatchSummary{{MatchID: "match-1"}}, nil
	}
	mockClient.GetSpecificMatchFunc = func(matchID string) (playtomic.PadelMatch, error) {
		return playtomic.PadelMatch{
			MatchID:         matchID,
			GameStatus:      playtomic.GameStatusPlayed,
			ResultsStatus:   playtomic.ResultsStatusConfirmed,
			CompetitionType: playtomic.Competition,
			End:             1752086400,
			Teams: []playtomic.Team{
				{
					ID:         "1",
					TeamResult: playtomic.TeamResultWon,
					Players: []playtomic.Player{
						{UserID: "user-1", Name: "Player A", Level: 3.5},
						{UserID: "user-2", Name: "Player B", Level: 3.5},
					},
				},
				{
					ID:         "2",
					TeamResult: "LOST",
					Players: []playtomic.Player{
						{UserID: "user-3", Name: "Player C", Level: 3.5},
						{UserID: "user-4", Name: "Player D", Level: 3.5},
					},
				},
			},
		}, nil
	}

	server, teardown := setupTestServer(t, mockClient)
	defer teardown()

	req := httptest.NewRequest("GET", "/import-playtomic?days=7", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	players, err := server.Store.GetAllPlayers()
	require.NoError(t, err)
	assert.Len(t, players, 4, "import seeds the players it sees")

	winner, err := server.Store.GetPlayer("user-1")
	require.NoError(t, err)
	loser, err := server.Store.GetPlayer("user-3")
	require.NoError(t, err)
	assert.Greater(t, winner.Rating, loser.Rating, "imported result moves ratings")

	t.Run("re-import is idempotent", func(t *testing.T) {
		before := winner.Rating
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, httptest.NewRequest("GET", "/import-playtomic?days=7", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		after, err := server.Store.GetPlayer("user-1")
		require.NoError(t, err)
		assert.InDelta(t, before, after.Rating, 1e-9, "a processed match is never rated twice")
	})
}
