package club_test

import (
	"sync"
	"testing"

	"github.com/sebbultel59/padel-sync-engine/internal/badges"
	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/database"
	"github.com/sebbultel59/padel-sync-engine/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary SQLite database for testing.
func setupTestDB(t *testing.T) (club.ClubStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(t.TempDir()+"/club.db", "", "", "../../migrations")
	require.NoError(t, err)

	store := club.New(db)
	return store, dbTeardown
}

func TestAddAndGetPlayers(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("player1", "Player One", 3)
	store.AddPlayer("player2", "Player Two", 8)

	assert.True(t, store.IsKnownPlayer("player1"))
	assert.False(t, store.IsKnownPlayer("player3"))

	allPlayers, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Len(t, allPlayers, 2)

	t.Run("rating is seeded from the declared level band midpoint", func(t *testing.T) {
		p, err := store.GetPlayer("player1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 3, p.Level)
		assert.InDelta(t, 50.0, p.XP, 0.01)
	})

	t.Run("adding an existing player does not reset their rating", func(t *testing.T) {
		require.NoError(t, store.ApplyRatingDelta("m0", []string{"player1"}, 2.0))
		store.AddPlayer("player1", "Player One", 1)
		p, err := store.GetPlayer("player1")
		require.NoError(t, err)
		assert.InDelta(t, 33.2, p.Rating, 1e-9)
	})

	t.Run("unknown player returns nil", func(t *testing.T) {
		p, err := store.GetPlayer("nobody")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestUpsertPlayersKeepsRatings(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	err := store.UpsertPlayers([]club.PlayerInfo{
		{ID: "p1", Name: "One", DeclaredLevel: 5},
		{ID: "p2", Name: "Two", Rating: 77.5},
	})
	require.NoError(t, err)

	require.NoError(t, store.ApplyRatingDelta("m1", []string{"p1"}, 1.5))

	// A later upsert may rename but never clobber the stored rating.
	err = store.UpsertPlayers([]club.PlayerInfo{{ID: "p1", Name: "One Renamed", DeclaredLevel: 5}})
	require.NoError(t, err)

	p, err := store.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, "One Renamed", p.Name)
	assert.InDelta(t, 57.7, p.Rating, 1e-9)
}

func TestGetPlayers(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("p1", "Player One", 2)
	store.AddPlayer("p2", "Player Two", 4)
	store.AddPlayer("p3", "Player Three", 6)

	t.Run("gets multiple players", func(t *testing.T) {
		players, err := store.GetPlayers([]string{"p1", "p3"})
		require.NoError(t, err)
		require.Len(t, players, 2)

		playerMap := make(map[string]club.PlayerInfo)
		for _, p := range players {
			playerMap[p.ID] = p
		}
		assert.Contains(t, playerMap, "p1")
		assert.Contains(t, playerMap, "p3")
		assert.Equal(t, 2, playerMap["p1"].Level)
		assert.Equal(t, 6, playerMap["p3"].Level)
	})

	t.Run("returns empty slice for no matches", func(t *testing.T) {
		players, err := store.GetPlayers([]string{"p4", "p5"})
		require.NoError(t, err)
		assert.Len(t, players, 0)
	})

	t.Run("returns empty slice for empty id slice", func(t *testing.T) {
		players, err := store.GetPlayers([]string{})
		require.NoError(t, err)
		assert.Len(t, players, 0)
	})
}

func TestApplyRatingDelta(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("p1", "Player One", 5) // seeded at 56.2
	store.AddPlayer("p2", "Player Two", 5)

	t.Run("applies the delta to every player on the side", func(t *testing.T) {
		require.NoError(t, store.ApplyRatingDelta("m1", []string{"p1", "p2"}, -1.0))
		for _, id := range []string{"p1", "p2"} {
			p, err := store.GetPlayer(id)
			require.NoError(t, err)
			assert.InDelta(t, 55.2, p.Rating, 1e-9, "player %s", id)
		}
	})

	t.Run("clamps at the scale boundaries", func(t *testing.T) {
		require.NoError(t, store.ApplyRatingDelta("m2", []string{"p1"}, 80))
		p, err := store.GetPlayer("p1")
		require.NoError(t, err)
		assert.Equal(t, rating.RatingMax, p.Rating)

		require.NoError(t, store.ApplyRatingDelta("m3", []string{"p1"}, -150))
		p, err = store.GetPlayer("p1")
		require.NoError(t, err)
		assert.Equal(t, rating.RatingMin, p.Rating)
	})

	t.Run("unknown player aborts the whole transaction", func(t *testing.T) {
		before, err := store.GetPlayer("p2")
		require.NoError(t, err)

		err = store.ApplyRatingDelta("m4", []string{"p2", "ghost"}, 5)
		require.Error(t, err)

		after, err := store.GetPlayer("p2")
		require.NoError(t, err)
		assert.Equal(t, before.Rating, after.Rating, "failed transaction must not partially apply")
	})

	t.Run("records history with the post-update rating", func(t *testing.T) {
		history, err := store.GetRatingHistory("p1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, rating.RatingMin, history[0].RatingAfter)
	})
}

func TestApplyRatingDelta_NoLostUpdate(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("p1", "Player One", 5) // seeded at 56.2

	// Two results for the same player land concurrently. Whatever order the
	// store picks, both deltas must survive.
	deltas := []float64{1.0, -0.5}
	var wg sync.WaitGroup
	errs := make([]error, len(deltas))
	for i, d := range deltas {
		wg.Add(1)
		go func(i int, d float64) {
			defer wg.Done()
			errs[i] = store.ApplyRatingDelta("race-match", []string{"p1"}, d)
		}(i, d)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	p, err := store.GetPlayer("p1")
	require.NoError(t, err)
	assert.InDelta(t, 56.7, p.Rating, 1e-9)

	history, err := store.GetRatingHistory("p1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestResultQueue(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	result := &club.MatchResult{
		MatchID: "match1",
		Sides: []club.MatchSide{
			{TeamID: "t1", PlayerIDs: []string{"p1", "p2"}, Won: true},
			{TeamID: "t2", PlayerIDs: []string{"p3", "p4"}},
		},
		Context: rating.MatchContext{
			MatchType:  rating.MatchTypeRanked,
			ResultType: rating.ResultTypeNormal,
		},
		PlayedAt: 1700000000,
	}
	require.NoError(t, store.UpsertResult(result))

	pending, err := store.GetResultsForProcessing()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "match1", pending[0].MatchID)
	assert.Equal(t, club.StatusNew, pending[0].ProcessingStatus)
	require.Len(t, pending[0].Sides, 2)
	assert.True(t, pending[0].Sides[0].Won)
	assert.Equal(t, rating.MatchTypeRanked, pending[0].Context.MatchType)

	t.Run("re-upsert does not reset the processing status", func(t *testing.T) {
		require.NoError(t, store.UpdateProcessingStatus("match1", club.StatusProcessed))

		result.PlayedAt = 1700000001
		require.NoError(t, store.UpsertResult(result))

		pending, err := store.GetResultsForProcessing()
		require.NoError(t, err)
		assert.Len(t, pending, 0, "processed result must not be rated twice")
	})
}

func TestBadges(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	catalog := []badges.Badge{
		{ID: "first-win", Name: "First Win"},
		{ID: "clean-sweep", Name: "Clean Sweep"},
		{ID: "night-owl", Name: "Night Owl"},
	}
	require.NoError(t, store.UpsertBadges(catalog))

	require.NoError(t, store.RecordBadgeUnlock("first-win", "p1"))
	require.NoError(t, store.RecordBadgeUnlock("first-win", "p2"))
	require.NoError(t, store.RecordBadgeUnlock("clean-sweep", "p1"))
	// Duplicate unlock is a no-op.
	require.NoError(t, store.RecordBadgeUnlock("first-win", "p1"))

	rarities, err := store.GetBadgeRarities()
	require.NoError(t, err)
	require.Len(t, rarities, 3)

	assert.Equal(t, "night-owl", rarities[0].Badge.ID, "rarest badge comes first")
	assert.Equal(t, 100.0, rarities[0].RarityScore)
	assert.Equal(t, "clean-sweep", rarities[1].Badge.ID)
	assert.Equal(t, 99.9, rarities[1].RarityScore)
	assert.Equal(t, "first-win", rarities[2].Badge.ID)
	assert.Equal(t, 2, rarities[2].UnlockCount)
	assert.Equal(t, 99.8, rarities[2].RarityScore)
}

func TestGetLeaderboard(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("p1", "Low", 2)
	store.AddPlayer("p2", "High", 7)
	store.AddPlayer("p3", "Mid", 5)

	board, err := store.GetLeaderboard()
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, []string{"p2", "p3", "p1"}, []string{board[0].PlayerID, board[1].PlayerID, board[2].PlayerID})
	for i, e := range board {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, 7, board[0].Level)
	assert.InDelta(t, 50.0, board[0].XP, 0.01)
}
