package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/sebbultel59/padel-sync-engine/internal/badges"
	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/progression"
	"github.com/sebbultel59/padel-sync-engine/internal/rating"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

type seedPlayer struct {
	ID            string
	Name          string
	DeclaredLevel int
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create 4 dummy players to use in results
	dummyPlayers := []seedPlayer{
		{ID: "player-1", Name: "Seeder Player A", DeclaredLevel: 4},
		{ID: "player-2", Name: "Seeder Player B", DeclaredLevel: 4},
		{ID: "player-3", Name: "Seeder Player C", DeclaredLevel: 5},
		{ID: "player-4", Name: "Seeder Player D", DeclaredLevel: 5},
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name, rating, declared_level) VALUES (?, ?, ?, ?)",
			p.ID, p.Name, progression.InitialRating(p.DeclaredLevel), p.DeclaredLevel)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	catalog := []badges.Badge{
		{ID: "first-win", Name: "First Win", Description: "Win your first ranked match"},
		{ID: "streak-5", Name: "On Fire", Description: "Win five ranked matches in a row"},
		{ID: "level-up", Name: "Level Up", Description: "Reach a new level"},
		{ID: "tournament-debut", Name: "Tournament Debut", Description: "Play your first tournament match"},
	}
	for _, b := range catalog {
		_, err := db.Exec("INSERT OR IGNORE INTO badges (id, name, description) VALUES (?, ?, ?)", b.ID, b.Name, b.Description)
		if err != nil {
			log.Fatalf("Failed to insert badge %s: %s", b.Name, err)
		}
	}
	log.Info("Ensured badge catalog exists.")

	const batchSize = 100 // Insert 100 results at a time
	const numResults = 10000

	log.Info("Preparing to insert dummy results...", "total", numResults, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*6)

	for i := 0; i < numResults; i++ {
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		winner := rand.Intn(2)
		sides := []club.MatchSide{
			{TeamID: "t1", PlayerIDs: []string{dummyPlayers[0].ID, dummyPlayers[1].ID}, Won: winner == 0},
			{TeamID: "t2", PlayerIDs: []string{dummyPlayers[2].ID, dummyPlayers[3].ID}, Won: winner == 1},
		}
		sidesJSON, _ := json.Marshal(sides)

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			rating.MatchTypeRanked,
			rating.ResultTypeNormal,
			sidesJSON,
			playedAt.Unix(),
			club.StatusProcessed,
		)

		if (i+1)%batchSize == 0 || (i+1) == numResults {
			stmt := fmt.Sprintf("INSERT INTO match_results (id, match_type, result_type, sides_json, played_at, processing_status) VALUES %s",
				strings.Join(valueStrings, ","))
			if _, err := tx.Exec(stmt, valueArgs...); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to insert result batch: %s", err)
			}
			valueStrings = valueStrings[:0]
			valueArgs = valueArgs[:0]
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	log.Info("Seeding complete.", "results", numResults, "duration", time.Since(startTime))
}
