package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"io"

	"github.com/charmbracelet/log"
	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/playtomic"
	"github.com/sebbultel59/padel-sync-engine/internal/progression"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			log.Info("Successfully cleared match from store", "matchID", matchID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// LeaderboardHandler returns a handler that serves the club leaderboard,
// ranked by rating.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Store.GetLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

// BadgeRaritiesHandler serves the badge catalog with unlock counts and
// rarity scores, rarest first.
func (s *Server) BadgeRaritiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rarities, err := s.Store.GetBadgeRarities()
		if err != nil {
			http.Error(w, "Failed to get badge rarities", http.StatusInternalServerError)
			log.Error("Failed to get badge rarities from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rarities); err != nil {
			log.Error("Failed to encode badge rarities to JSON", "error", err)
		}
	}
}

// playerProgressResponse bundles everything the progression screen needs in
// one round trip.
type playerProgressResponse struct {
	Player  *club.PlayerInfo    `json:"player"`
	History []club.RatingChange `json:"history"`
}

// PlayerProgressHandler maps a rating onto its display level and XP. With a
// 'player_id' it returns the stored player plus their rating history; with a
// raw 'rating' it just runs the conversion.
func (s *Server) PlayerProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ratingStr := r.URL.Query().Get("rating"); ratingStr != "" {
			ratingValue, err := strconv.ParseFloat(ratingStr, 64)
			if err != nil {
				http.Error(w, "Invalid 'rating' parameter", http.StatusBadRequest)
				return
			}
			level, xp := progression.LevelForRating(ratingValue)
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(map[string]any{
				"rating": ratingValue,
				"level":  level,
				"xp":     xp,
			}); err != nil {
				log.Error("Failed to write response", "error", err)
			}
			return
		}

		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			http.Error(w, "Missing 'player_id' or 'rating' parameter", http.StatusBadRequest)
			return
		}

		player, err := s.Store.GetPlayer(playerID)
		if err != nil {
			http.Error(w, "Failed to get player", http.StatusInternalServerError)
			log.Error("Failed to get player from store", "playerID", playerID, "error", err)
			return
		}
		if player == nil {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		history, err := s.Store.GetRatingHistory(playerID)
		if err != nil {
			http.Error(w, "Failed to get rating history", http.StatusInternalServerError)
			log.Error("Failed to get rating history from store", "playerID", playerID, "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(playerProgressResponse{Player: player, History: history}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// DeclareLevelHandler registers a player with a self-declared level. The
// stored rating is seeded at the midpoint of the declared level's band; a
// player who already has a rating keeps it.
func (s *Server) DeclareLevelHandler() http.HandlerFunc {
	type declareLevelRequest struct {
		PlayerID      string `json:"player_id"`
		Name          string `json:"name"`
		DeclaredLevel int    `json:"declared_level"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req declareLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.PlayerID == "" {
			http.Error(w, "Missing 'player_id'", http.StatusBadRequest)
			return
		}
		if req.DeclaredLevel < 1 || req.DeclaredLevel > 8 {
			http.Error(w, "'declared_level' must be between 1 and 8", http.StatusBadRequest)
			return
		}

		s.Store.AddPlayer(req.PlayerID, req.Name, req.DeclaredLevel)
		log.Info("Registered declared level", "playerID", req.PlayerID, "declaredLevel", req.DeclaredLevel)

		player, err := s.Store.GetPlayer(req.PlayerID)
		if err != nil {
			http.Error(w, "Failed to read back player", http.StatusInternalServerError)
			log.Error("Failed to read back player after declare", "playerID", req.PlayerID, "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(player); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// RecordResultHandler ingests a finished match result directly as JSON and
// runs the rating update synchronously.
func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		isDryRun := isDryRunFromContext(r)

		var result club.MatchResult
		if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if result.MatchID == "" {
			http.Error(w, "Missing 'match_id'", http.StatusBadRequest)
			return
		}

		if err := s.Processor.RecordResult(&result, isDryRun); err != nil {
			log.Error("Failed to record result", "matchID", result.MatchID, "error", err)
			http.Error(w, "Failed to record result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// ResultEventHandler ingests a finished match result delivered through a
// Pub/Sub push subscription: a JSON envelope wrapping a base64 msgpack
// payload.
func (s *Server) ResultEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received result event message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		result := club.MatchResult{}
		if err := s.pubsub.ProcessMessage(rawData, &result); err != nil {
			log.Error("Failed to decode result payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.Processor.RecordResult(&result, isDryRun); err != nil {
			log.Error("Failed to record result", "matchID", result.MatchID, "error", err)
			http.Error(w, "Failed to record result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// ImportPlaytomicHandler backfills results from the Playtomic API for the
// configured tenant. Players seen in imported matches are upserted first, so
// a fresh store can be bootstrapped from a single import run.
func (s *Server) ImportPlaytomicHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting Playtomic import...")
		s.Metrics.IncImportRuns()
		isDryRun := isDryRunFromContext(r)

		daysStr := r.URL.Query().Get("days")
		daysToSubtract := 0
		if daysStr != "" {
			parsedDays, err := strconv.Atoi(daysStr)
			if err == nil && parsedDays > 0 {
				daysToSubtract = parsedDays
				log.Info("Importing historical matches", "days", daysToSubtract)
			} else {
				log.Warn("Invalid 'days' parameter provided. Defaulting to 0.", "days_param", daysStr)
			}
		}

		startDate := time.Now().AddDate(0, 0, -daysToSubtract)

		params := &playtomic.SearchMatchesParams{
			SportID:       "PADEL",
			HasPlayers:    true,
			Sort:          "start_date,ASC",
			TenantIDs:     []string{s.Cfg.TenantID},
			FromStartDate: startDate.Format("2006-01-02") + "T00:00:00",
		}
		log.Info("Fetching matches from", "startDate", startDate)
		matches, err := s.PlaytomicClient.GetMatches(params)
		if err != nil {
			log.Error("Error fetching Playtomic matches", "error", err)
			http.Error(w, "Failed to fetch matches", http.StatusInternalServerError)
			return
		}

		log.Info("Found matches from API", "count", len(matches))

		var resultsToUpsert []*club.MatchResult
		var playersToUpsert []club.PlayerInfo
		var mu sync.Mutex
		var wg sync.WaitGroup

		for _, match := range matches {
			wg.Add(1)
			go func(matchID string) {
				defer wg.Done()
				specificMatch, err := s.PlaytomicClient.GetSpecificMatch(matchID)
				if err != nil {
					log.Error("Error fetching specific match", "matchID", matchID, "error", err)
					return
				}

				result, ok := playtomic.ToMatchResult(&specificMatch)
				if !ok {
					log.Debug("Skipping non-ratable match", "matchID", matchID, "gameStatus", specificMatch.GameStatus, "resultsStatus", specificMatch.ResultsStatus)
					return
				}

				mu.Lock()
				resultsToUpsert = append(resultsToUpsert, result)
				playersToUpsert = append(playersToUpsert, playtomic.ToPlayers(&specificMatch)...)
				mu.Unlock()
			}(match.MatchID)
		}
		wg.Wait()

		if len(resultsToUpsert) > 0 {
			if !isDryRun {
				log.Info("Upserting imported results", "results", len(resultsToUpsert), "players", len(playersToUpsert))
				if err := s.Store.UpsertPlayers(playersToUpsert); err != nil {
					log.Error("Failed to bulk upsert players", "error", err)
					http.Error(w, "Failed to save players", http.StatusInternalServerError)
					return
				}
				if err := s.Store.UpsertResults(resultsToUpsert); err != nil {
					log.Error("Failed to bulk upsert results", "error", err)
					http.Error(w, "Failed to save results", http.StatusInternalServerError)
					return
				}
			} else {
				log.Info("[Dry Run] Would have upserted imported results", "results", len(resultsToUpsert), "players", len(playersToUpsert))
			}
		}

		s.Processor.ProcessResults(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Playtomic import completed.")
		log.Info("Playtomic import finished.", "total_api_matches", len(matches), "ratable_results", len(resultsToUpsert))
	}
}

// EngineStatsHandler serves the persisted engine counters. Unlike /metrics
// these survive restarts, which makes them useful for sanity checks after a
// redeploy.
func (s *Server) EngineStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.MetricsStore.GetAll()
		if err != nil {
			http.Error(w, "Failed to get engine stats", http.StatusInternalServerError)
			log.Error("Failed to get engine stats from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Error("Failed to encode engine stats to JSON", "error", err)
		}
	}
}
