package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bankdesk/internal/api"
	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/jon4hz/bankdesk/internal/randomdata"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bankdesk server",
	Long:  `Start the bankdesk web server. Every browser session gets its own set of users and banks.`,
	Example: `bankdesk serve --config config.yml
bankdesk serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	source := randomdata.New(cfg.DataSource)
	store, closeStore, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("failed to create session store: %v", err)
	}
	defer closeStore()

	engine, err := engine.New(cfg, source, store)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	server, err := api.New(cfg, engine, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		errCh <- server.Run()
	}()

	log.Info("bankdesk started successfully")
	select {
	case err := <-errCh:
		if err != nil {
			log.Error("API server error", "error", err)
		}
		return
	case <-ctx.Done():
	}
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down API server", "error", err)
	}
}
