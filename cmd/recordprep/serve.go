package main

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recordprep/internal/web"
)

// createServeCmd creates the serve subcommand
func createServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			st, err := a.openStore(cmd.Context())
			if err != nil {
				log.Fatalf("Failed to open database: %v", err)
			}
			if st != nil {
				defer st.Close()
				a.log.Info("persisting runs", zap.String("driver", a.cfg.Database.Driver))
			}

			server := web.NewServer(a.cfg, a.standardizer(), st, a.log)
			if err := server.Start(); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}
