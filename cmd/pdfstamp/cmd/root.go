package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

const AppName = "pdfstamp"

// Set at build time with -ldflags "-X pdfstamp/cmd/pdfstamp/cmd.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - fill PDF form templates",
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", "log level: DEBUG, INFO, WARN or ERROR")

	rootCmd.AddCommand(DefineStampCommand())
	rootCmd.AddCommand(DefineFieldsCommand())
	rootCmd.AddCommand(DefineLabelCommand())
	rootCmd.AddCommand(DefineVersionCommand())

	return rootCmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}
