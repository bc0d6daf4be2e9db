package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Easel draws on a canvas from natural-language prompts",
	Long: `Easel asks a language model for canvas edits and applies them as they stream in.
A run that fails or is interrupted leaves the canvas exactly as it was.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultPath, "Path to the configuration file")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("mode", "", "Run mode: batch or stream")
	pf.Duration("timeout", 0, "Per-run deadline (0 keeps the configured value)")
	pf.String("canvas", "", "Name of the canvas to edit")
}
