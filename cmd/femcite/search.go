// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/femcite/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "List the library entries retrieved for a query",
	Long: `Search sends a query to the semantic search service and prints the
entries in the order the service ranks them. No answer is generated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
			cfg.Search.TopK = k
		}

		client := search.NewClient(cfg.Search, &http.Client{Timeout: cfg.Search.Timeout})
		entries, err := client.Retrieve(cmd.Context(), strings.Join(args, " "), cfg.Search.TopK)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return search.FormatJSON(entries, os.Stdout)
		}
		search.FormatTable(entries, os.Stdout)
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("top-k", 0, "number of entries to request (default from config, 10)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
