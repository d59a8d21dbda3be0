package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleanviz/internal/app"
	"cleanviz/internal/config"
	"cleanviz/internal/infrastructure"
)

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			application, err := app.NewApplication(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "listen port")
	return cmd
}
