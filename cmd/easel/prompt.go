package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/sanitize"
	"github.com/aretw0/easel/pkg/domain"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <text>",
	Short: "Ask the model to edit the canvas",
	Long: `Sends the prompt with the visible part of the canvas to the model and applies
the returned changes. Ctrl+C cancels the run and restores the canvas.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}
		text, err := sanitize.Input(strings.Join(args, " "))
		if err != nil {
			return err
		}
		mode, err := domain.ParseMode(cfg.Mode)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, cfg, logger, sessionOptions{provider: true})
		if err != nil {
			return err
		}
		defer s.close()

		res, runErr := s.ctrl.Generate(ctx, domain.PromptInput{Message: domain.TextMessage(text)}, mode)
		printReport(cmd.OutOrStdout(), res, runErr)
		if runErr != nil {
			return runErr
		}
		return s.save(ctx, res)
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}
