package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	loamAdapter "github.com/aretw0/easel/pkg/adapters/loam"
	"github.com/aretw0/easel/pkg/events"
)

var canvasCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Inspect stored canvases",
}

var canvasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the canvases in the canvas directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := loamAdapter.Open(cfg.Canvas.Dir)
		if err != nil {
			return err
		}
		names, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var canvasShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the canvas shapes as the model sees them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := loamAdapter.Open(cfg.Canvas.Dir)
		if err != nil {
			return err
		}
		doc, err := store.Load(cmd.Context(), cfg.Canvas.Name)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(events.FromContent(doc.Content()))
	},
}

func init() {
	rootCmd.AddCommand(canvasCmd)
	canvasCmd.AddCommand(canvasListCmd, canvasShowCmd)
}
