package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/simon020286/go-step-iterator/log"
	_ "github.com/simon020286/go-step-iterator/steps"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "stepseq",
		Short:         "Run step sequences defined in YAML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(flags.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(log.New(cmd.ErrOrStderr(), level, flags.logFormat))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", envOr("STEPSEQ_LOG_LEVEL", "WARN"), "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", envOr("STEPSEQ_LOG_FORMAT", "text"), "Log format (text, json)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newTypesCommand())

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
