package club

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sebbultel59/padel-sync-engine/internal/badges"
	"github.com/sebbultel59/padel-sync-engine/internal/progression"
	"github.com/sebbultel59/padel-sync-engine/internal/rating"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// AddPlayer inserts a player, seeding the rating from the self-declared
// level. Existing players are left untouched.
func (s *store) AddPlayer(playerID, name string, declaredLevel int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := progression.InitialRating(declaredLevel)
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO players (id, name, rating, declared_level) VALUES (?, ?, ?, ?)`,
		playerID, name, seeded, declaredLevel,
	)
	if err != nil {
		log.Error("Failed to add player", "error", err, "playerID", playerID)
	}
}

// UpsertPlayers inserts or updates a batch of players in one transaction.
// The stored rating is never overwritten for known players; only the display
// name follows the upsert.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating, declared_level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		r := p.Rating
		if r == 0 {
			r = progression.InitialRating(p.DeclaredLevel)
		}
		if _, err := stmt.Exec(p.ID, p.Name, rating.ClampRating(r), p.DeclaredLevel); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// GetPlayer retrieves a single player with the derived level and XP.
func (s *store) GetPlayer(playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, name, rating, declared_level FROM players WHERE id = ?`, playerID)
	var p PlayerInfo
	if err := row.Scan(&p.ID, &p.Name, &p.Rating, &p.DeclaredLevel); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	p.Level, p.XP = progression.LevelForRating(p.Rating)
	return &p, nil
}

// GetPlayers retrieves the given players. Unknown IDs are simply absent from
// the result.
func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := []PlayerInfo{}
	if len(playerIDs) == 0 {
		return players, nil
	}

	query := `SELECT id, name, rating, declared_level FROM players WHERE id IN (?` +
		repeatPlaceholder(len(playerIDs)-1) + `)`
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PlayerInfo
		if err := rows.Scan(&p.ID, &p.Name, &p.Rating, &p.DeclaredLevel); err != nil {
			return nil, err
		}
		p.Level, p.XP = progression.LevelForRating(p.Rating)
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetAllPlayers returns every player in the store.
func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, rating, declared_level FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []PlayerInfo{}
	for rows.Next() {
		var p PlayerInfo
		if err := rows.Scan(&p.ID, &p.Name, &p.Rating, &p.DeclaredLevel); err != nil {
			return nil, err
		}
		p.Level, p.XP = progression.LevelForRating(p.Rating)
		players = append(players, p)
	}
	return players, rows.Err()
}

// IsKnownPlayer reports whether the player exists in the store.
func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)`, playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check player existence", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

// GetLeaderboard returns all players ranked by rating. Rank comes from a
// row_number window over the rating order; tie ordering is whatever the
// database decides.
func (s *store) GetLeaderboard() ([]LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT row_number() OVER (ORDER BY rating DESC) AS rank, id, name, rating
		FROM players
		ORDER BY rating DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.PlayerID, &e.PlayerName, &e.Rating); err != nil {
			return nil, err
		}
		e.Level, e.XP = progression.LevelForRating(e.Rating)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertResult inserts a new match result or updates an existing one. It is
// "dumb" and never touches the processing status of an existing result, so a
// re-submitted match cannot be rated twice.
func (s *store) UpsertResult(result *MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsertResultLocked(s.db, result)
}

// UpsertResults inserts or updates a batch of results in one transaction.
func (s *store) UpsertResults(results []*MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, result := range results {
		if err := s.upsertResultLocked(tx, result); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *store) upsertResultLocked(db execer, result *MatchResult) error {
	sidesJSON, err := json.Marshal(result.Sides)
	if err != nil {
		return fmt.Errorf("failed to marshal sides for match %s: %w", result.MatchID, err)
	}

	_, err = db.Exec(`
		INSERT INTO match_results (id, match_type, result_type, sides_json, played_at, processing_status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			match_type = excluded.match_type,
			result_type = excluded.result_type,
			sides_json = excluded.sides_json,
			played_at = excluded.played_at;
	`, result.MatchID, string(result.Context.MatchType), string(result.Context.ResultType),
		sidesJSON, result.PlayedAt, StatusNew)
	if err != nil {
		return fmt.Errorf("failed to upsert result %s: %w", result.MatchID, err)
	}
	return nil
}

// GetResultsForProcessing returns every result whose deltas have not been
// applied yet, oldest first.
func (s *store) GetResultsForProcessing() ([]*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, match_type, result_type, sides_json, played_at, processing_status
		FROM match_results
		WHERE processing_status = ?
		ORDER BY played_at ASC
	`, StatusNew)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for processing: %w", err)
	}
	defer rows.Close()

	results := []*MatchResult{}
	for rows.Next() {
		var r MatchResult
		var matchType, resultType string
		var sidesJSON []byte
		if err := rows.Scan(&r.MatchID, &matchType, &resultType, &sidesJSON, &r.PlayedAt, &r.ProcessingStatus); err != nil {
			return nil, err
		}
		r.Context = rating.MatchContext{
			MatchType:  rating.MatchType(matchType),
			ResultType: rating.ResultType(resultType),
		}
		if err := json.Unmarshal(sidesJSON, &r.Sides); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sides for match %s: %w", r.MatchID, err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// UpdateProcessingStatus transitions a match result to a new state.
func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE match_results SET processing_status = ? WHERE id = ?`, status, matchID)
	if err != nil {
		return fmt.Errorf("failed to update processing status for %s: %w", matchID, err)
	}
	return nil
}

// ApplyRatingDelta applies one side's delta to every player on that side in
// a single transaction. The clamped read-modify-write happens inside the
// UPDATE itself, so two concurrent updates for the same player serialize in
// the database and neither is lost. A history row with the post-update
// rating is recorded per player. The caller decides whether to resubmit on
// failure; there are no internal retries.
func (s *store) ApplyRatingDelta(matchID string, playerIDs []string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, playerID := range playerIDs {
		res, err := tx.Exec(`
			UPDATE players
			SET rating = MIN(?, MAX(?, rating + ?))
			WHERE id = ?
		`, rating.RatingMax, rating.RatingMin, delta, playerID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply delta to player %s: %w", playerID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return err
		}
		if affected == 0 {
			tx.Rollback()
			return fmt.Errorf("unknown player %s for match %s", playerID, matchID)
		}

		var after float64
		if err := tx.QueryRow(`SELECT rating FROM players WHERE id = ?`, playerID).Scan(&after); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to read back rating for player %s: %w", playerID, err)
		}

		_, err = tx.Exec(`
			INSERT INTO rating_history (id, match_id, player_id, delta, rating_after, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), matchID, playerID, delta, after, now)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record rating history for player %s: %w", playerID, err)
		}
	}

	return tx.Commit()
}

// GetRatingHistory returns a player's applied deltas, newest first.
func (s *store) GetRatingHistory(playerID string) ([]RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, match_id, player_id, delta, rating_after, created_at
		FROM rating_history
		WHERE player_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	changes := []RatingChange{}
	for rows.Next() {
		var c RatingChange
		if err := rows.Scan(&c.ID, &c.MatchID, &c.PlayerID, &c.Delta, &c.RatingAfter, &c.CreatedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// UpsertBadges replaces catalog entries by ID.
func (s *store) UpsertBadges(catalog []badges.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO badges (id, name, description)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, b := range catalog {
		if _, err := stmt.Exec(b.ID, b.Name, b.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert badge %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

// RecordBadgeUnlock records that a player unlocked a badge. Unlocking the
// same badge twice is a no-op.
func (s *store) RecordBadgeUnlock(badgeID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO badge_unlocks (id, badge_id, player_id, unlocked_at)
		VALUES (?, ?, ?, ?)
	`, uuid.New().String(), badgeID, playerID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record badge unlock: %w", err)
	}
	return nil
}

// GetBadgeRarities returns the badge catalog with population unlock counts
// and the derived rarity score, rarest first.
func (s *store) GetBadgeRarities() ([]badges.BadgeRarity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT b.id, b.name, b.description, COUNT(u.id) AS unlock_count
		FROM badges b
		LEFT JOIN badge_unlocks u ON u.badge_id = b.id
		GROUP BY b.id, b.name, b.description
		ORDER BY unlock_count ASC, b.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge rarities: %w", err)
	}
	defer rows.Close()

	rarities := []badges.BadgeRarity{}
	for rows.Next() {
		var r badges.BadgeRarity
		if err := rows.Scan(&r.Badge.ID, &r.Badge.Name, &r.Badge.Description, &r.UnlockCount); err != nil {
			return nil, err
		}
		r.RarityScore = badges.RarityScore(r.UnlockCount)
		rarities = append(rarities, r)
	}
	return rarities, rows.Err()
}

// Clear wipes the whole store. Test and operator escape hatch.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"rating_history", "badge_unlocks", "badges", "match_results", "players"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
}

// ClearMatch removes a single match result and its history rows.
func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM rating_history WHERE match_id = ?`, matchID); err != nil {
		log.Error("Failed to clear rating history for match", "matchID", matchID, "error", err)
	}
	if _, err := s.db.Exec(`DELETE FROM match_results WHERE id = ?`, matchID); err != nil {
		log.Error("Failed to clear match result", "matchID", matchID, "error", err)
	}
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
