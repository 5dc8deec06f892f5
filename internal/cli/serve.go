package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openhive-oss/openhive/internal/config"
	"github.com/openhive-oss/openhive/internal/registry"
	"github.com/openhive-oss/openhive/internal/server"
	"github.com/openhive-oss/openhive/internal/telemetry"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local registry server",
	Long: `Start an HTTP registry server over the configured backend.

The server exposes the registry API consumed by the remote driver, so a
local SQLite or in-memory registry can be shared with other clients.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cred := registry.Credential{
		BearerToken: cfg.Registry.Auth.BearerToken,
		APIKey:      cfg.Registry.Auth.APIKey,
		AccessToken: cfg.Registry.Auth.AccessToken,
	}
	adapter, err := registry.Open(cfg.Registry.Driver, cfg.Registry.Path, cfg.Registry.URL, cred)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}

	logger := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if verbose {
		logger = telemetry.NewVerboseLogger(true)
	}
	reg := registry.New(adapter, logger)
	defer reg.Close()

	srv := server.New(reg, cred, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	return srv.Start(ctx, addr)
}
