package main

import (
	"os"

	"github.com/jaskrrish/Go-BV/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "bvctl",
	Short: "Bernstein-Vazirani experiment tool",
	Long: `bvctl builds Bernstein-Vazirani circuits for a hidden secret (a, b),
runs them on the state-vector simulator and reports the recovered secret.
It can also serve the HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger logs to stderr so command output stays machine readable
func newLogger() zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: logLevel, Pretty: true}, os.Stderr)
}
