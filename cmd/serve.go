package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safedrive-ia/safedrive/internal/server"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr     string
	flagServeInterval time.Duration
	flagServeBuffer   int
	flagServeReadOnly bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics views as a JSON API with a live activity feed",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", 15*time.Second, "Activity feed polling interval")
	serveCmd.Flags().IntVar(&flagServeBuffer, "events-buffer", 200, "Max feed events retained in memory")
	serveCmd.Flags().BoolVar(&flagServeReadOnly, "read-only", false, "Disable driver and incident write routes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	log := newLogger()
	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	var admin *view.Admin
	if !flagServeReadOnly {
		admin = view.NewAdmin(backend, nil)
	}
	svc := server.New(server.Config{
		Addr:         addr,
		Interval:     flagServeInterval,
		EventsBuffer: flagServeBuffer,
	}, view.NewLoader(backend, loaderOptions(cfg, log)), admin, log)

	fmt.Printf("  safedrive API listening on http://%s\n", addr)
	fmt.Printf("  Backend: %s, polling every %s\n", cfg.Backend.Kind, flagServeInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
