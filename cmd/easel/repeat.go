package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var repeatCmd = &cobra.Command{
	Use:   "repeat",
	Short: "Apply the last successful run again",
	Long: `Replays the changes of the last successful run on the canvas without calling
the model. Across invocations this needs the redis replay backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, cfg, logger, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.close()

		res, runErr := s.ctrl.Repeat(ctx)
		printReport(cmd.OutOrStdout(), res, runErr)
		if runErr != nil {
			return runErr
		}
		return s.save(ctx, res)
	},
}

func init() {
	rootCmd.AddCommand(repeatCmd)
}
