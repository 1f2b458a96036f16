package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examhub-dev/examhub/config"
	"github.com/examhub-dev/examhub/data"
	"github.com/examhub-dev/examhub/internal/server"
	"github.com/examhub-dev/examhub/logging/logger"
	"github.com/examhub-dev/examhub/version"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "examhub",
		Short: "Task workflow and activity audit engine",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	root.AddCommand(startCommand(), versionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func run() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	log := logger.StdLogger()
	log.SetVersion(version.Version)

	config.Watch(func(c *config.Config) {
		log.Info(context.Background(), "configuration reloaded", "run_mode", c.RunMode)
	})

	d, err := data.New(cfg.Data, log)
	if err != nil {
		return fmt.Errorf("failed to initialize data layer: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Error(context.Background(), "failed to close data layer", "error", err)
		}
	}()

	srv, err := server.New(cfg, d, log)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(context.Background(), "server listening", "addr", srv.Addr, "mode", cfg.RunMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info(context.Background(), "shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info(context.Background(), "server stopped")
	return nil
}
