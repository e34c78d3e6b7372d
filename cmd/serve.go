package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paymap-jp/paymap-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Serves the aggregation endpoint, the provider proxies, and the cached photo route for the map front end.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		directory, tags := newClients(cfg)
		agg := newAggregator(cfg, directory, tags)

		photos, err := newPhotoCache(ctx, cfg)
		if err != nil {
			return err
		}
		defer photos.Close() //nolint:errcheck

		zap.L().Info("photo cache ready", zap.String("driver", cfg.PhotoCache.Driver))

		srv := server.New(agg, directory, tags, photos, server.Options{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
