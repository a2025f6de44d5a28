package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(declareCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(statsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the club leaderboard, ranked by rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Show the badge catalog with rarity scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/badges")
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress [playerID]",
	Short: "Show a player's level, XP and rating history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/player-progress?player_id=" + args[0])
	},
}

var declareCmd = &cobra.Command{
	Use:   "declare [playerID] [name] [level]",
	Short: "Register a player with a self-declared level (1-8)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("level must be a number: %w", err)
		}
		body := fmt.Sprintf(`{"player_id":%q,"name":%q,"declared_level":%d}`, args[0], args[1], level)
		return performPostRequest("/declare-level", body)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Trigger a Playtomic import for the configured tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		endpoint := "/import-playtomic"
		if days > 0 {
			endpoint += "?days=" + strconv.Itoa(days)
		}
		return performGetRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get the persisted engine counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/engine-stats")
	},
}

func init() {
	importCmd.Flags().Int("days", 0, "How many days back to import")
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

func performPostRequest(endpoint, body string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
