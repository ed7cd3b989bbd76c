package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		score int64
		game  string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a score for the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("score") {
				return fmt.Errorf("--score is required")
			}

			req := map[string]any{"score": score}
			if game != "" {
				req["game_id"] = game
			}
			var result SubmitResult

			if err := client.Post(cmd.Context(), "/score", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&score, "score", 0, "Score to submit (required)")
	cmd.Flags().StringVar(&game, "game", "", "Game board (default: global board)")

	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var (
		game  string
		all   bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show a leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/leaderboard"
			if all {
				path = "/allleaderboard"
			}

			query := url.Values{}
			if game != "" {
				query.Set("gameId", game)
			}
			if limit > 0 && !all {
				query.Set("limit", strconv.Itoa(limit))
			}
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var result []LeaderboardEntry
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game board (default: global board)")
	cmd.Flags().BoolVar(&all, "all", false, "Show the full board")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of entries (default 10, max 100)")

	return cmd
}
