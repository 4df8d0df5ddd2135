// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Inspect the AI reconstruction service",
}

var aiCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Send a small sample document to the AI service",
	Long: `Check sends a one-page sample layout through the hybrid reconstruction
pass and validates the response. Use it to confirm the API key, endpoint
and model before converting real documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		recon, err := newReconstructor(cfg.AI, log)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Endpoint: %s\nModel:    %s\n", cfg.AI.BaseURL, cfg.AI.Model)

		rec, err := recon.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("AI check failed: %w", err)
		}
		fmt.Fprintf(w, "OK: %d block(s) reconstructed (status %s)\n", len(rec.Blocks), rec.Status)
		return nil
	},
}

func init() {
	aiCmd.AddCommand(aiCheckCmd)
	rootCmd.AddCommand(aiCmd)
}
