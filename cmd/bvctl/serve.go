package main

import (
	"github.com/jaskrrish/Go-BV/internal/app"
	"github.com/jaskrrish/Go-BV/internal/config"
	"github.com/jaskrrish/Go-BV/internal/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long:  "Serve the HTTP API configured from the environment and an optional .env file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
		logger.SetGlobalLogger(log)

		application, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Run(cmd.Context())
	},
}
