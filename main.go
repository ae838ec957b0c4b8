// main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
	"github.com/PhilHen99/InplayBasketSourceFinder/handlers"
	"github.com/PhilHen99/InplayBasketSourceFinder/mapview"
	"github.com/PhilHen99/InplayBasketSourceFinder/services"
	"github.com/PhilHen99/InplayBasketSourceFinder/source"
	"github.com/PhilHen99/InplayBasketSourceFinder/utils"
	"github.com/spf13/cobra"
)

var defaultConfigPaths = []string{
	"config/config.yaml",
	"config.yaml",
}

type app struct {
	cfg     *config.Config
	dataset *services.DatasetService
	maps    *mapview.Generator
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "teams-dashboard",
		Short:         "Teams dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: config/config.yaml if present)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Load the dataset and serve the dashboard API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(configPath)
				if err != nil {
					return err
				}
				return a.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Reload the dataset once and regenerate the map if it expired",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(configPath)
				if err != nil {
					return err
				}
				snap, err := a.dataset.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				a.maps.EnsureFresh(snap)
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %d teams from %s (fallback: %t)\n", snap.Len(), snap.Provider, snap.Fallback)
				return nil
			},
		},
		newStatusCmd(&configPath),
	)
	return root
}

func newStatusCmd(configPath *string) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Attempt a load and print the data and map status as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			if _, err := a.dataset.Refresh(cmd.Context()); err != nil {
				log.Printf("WARN Main: %v", err)
			}
			mapStatus, err := a.maps.Inspect()
			if err != nil {
				log.Printf("WARN Main: %v", err)
			}
			out := map[string]interface{}{
				"data": a.dataset.Status(),
				"map":  mapStatus,
			}
			if check {
				if err := a.dataset.CheckSource(cmd.Context()); err != nil {
					out["source_error"] = err.Error()
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "also validate connectivity to the configured provider")
	return cmd
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func newApp(configPath string) (*app, error) {
	path := resolveConfigPath(configPath)
	if err := config.LoadConfig(path); err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	cfg := &config.AppConfig
	if path != "" {
		log.Printf("Configuration loaded from %s", path)
	}
	log.Printf("Data provider: %s, refresh interval: %s, map: %s (ttl %s)",
		cfg.Source.Provider, cfg.Source.RefreshInterval, cfg.Map.Path, cfg.Map.TTL)

	primary, err := source.New(cfg.Source)
	if err != nil {
		return nil, err
	}
	var fallback source.Fetcher = source.NewLocalFetcher(cfg.Source.FallbackPath)

	coords, err := utils.LoadCountryCoordinates(cfg.Map.CoordinatesPath)
	if err != nil {
		return nil, err
	}
	if cfg.Debug() {
		log.Printf("DEBUG Main: environment=%s production=%t fetch_timeout=%s fallback=%s countries=%d top_n=%d",
			cfg.Server.Environment, cfg.IsProduction(), cfg.Source.FetchTimeout, cfg.Source.FallbackPath, coords.Len(), cfg.Map.TopN)
	}

	return &app{
		cfg:     cfg,
		dataset: services.NewDatasetService(primary, fallback, cfg.Source.RefreshInterval, services.WithFetchTimeout(cfg.Source.FetchTimeout)),
		maps:    mapview.NewGenerator(cfg.Map, coords),
	}, nil
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Eager initial load. Failure is not fatal: requests report no data until
	// a later refresh succeeds.
	if snap, err := a.dataset.Refresh(ctx); err != nil {
		log.Printf("ERROR Main: failed to initialize data: %v", err)
	} else {
		a.maps.EnsureFresh(snap)
		log.Println("Application initialized successfully")
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           handlers.NewServer(a.dataset, a.maps, a.cfg.Server.RateLimitCount, a.cfg.Server.RateLimitPeriod).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://%s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
