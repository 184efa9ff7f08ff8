package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/fundlab/overlap/internal/api"
	"github.com/fundlab/overlap/internal/config"
	"github.com/fundlab/overlap/internal/database"
	"github.com/fundlab/overlap/internal/domain"
	"github.com/fundlab/overlap/internal/export"
	"github.com/fundlab/overlap/internal/holdings"
	"github.com/fundlab/overlap/internal/overlap"
	"github.com/fundlab/overlap/internal/provider"
	"github.com/fundlab/overlap/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "overlap",
		Usage: "ETF holdings overlap service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API with background refresh",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "compute an overlap matrix and write it as xlsx",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "funds",
						Usage:    "comma-separated fund symbols (at least two)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "output file path",
						Value: "overlap.xlsx",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	client := provider.NewClient(cfg.ProviderURL, cfg.ProviderRetryMax, cfg.ProviderRetryBaseDelay)
	repo := holdings.NewPgRepository(pool)
	holdingsSvc := holdings.NewService(repo, client, cfg.HoldingsTTL)

	refreshWorker := worker.NewRefreshWorker(holdingsSvc, cfg.RefreshInterval)
	go refreshWorker.Run(ctx)

	if len(cfg.ReportWatchlist) >= 2 && cfg.GoogleSheetsID != "" && cfg.GoogleCredentialsJSON != "" {
		writer, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		reportWorker := worker.NewReportWorker(holdingsSvc, writer, cfg.ReportWatchlist, cfg.ReportInterval)
		go reportWorker.Run(ctx)
	} else if len(cfg.ReportWatchlist) > 0 {
		slog.Warn("report watchlist set but sheets export not fully configured, skipping reports")
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, refresh endpoint is unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, holdingsSvc, holdingsSvc, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	var symbols []string
	for _, p := range strings.Split(c.String("funds"), ",") {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			symbols = append(symbols, s)
		}
	}
	symbols = lo.Uniq(symbols)
	if len(symbols) < 2 {
		return fmt.Errorf("at least two fund symbols are required")
	}

	client := provider.NewClient(cfg.ProviderURL, cfg.ProviderRetryMax, cfg.ProviderRetryBaseDelay)

	resolved, err := fetchAll(ctx, client, symbols)
	if err != nil {
		return err
	}

	result, err := overlap.BuildMatrix(symbols, resolved)
	if err != nil {
		return fmt.Errorf("computing overlap: %w", err)
	}

	workbook, err := export.BuildWorkbook(result)
	if err != nil {
		return fmt.Errorf("building workbook: %w", err)
	}
	defer workbook.Close()

	out := c.String("out")
	if err := workbook.SaveAs(out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	log.Printf("Wrote %s (%d funds, %d core holdings)",
		out, len(symbols), result.CoreOverlap.TotalSharedHoldings)
	return nil
}

// fetchAll resolves holdings straight from the provider; the export
// command runs without a database.
func fetchAll(ctx context.Context, client *provider.Client, symbols []string) (map[string]domain.HoldingsSet, error) {
	resolved := make(map[string]domain.HoldingsSet, len(symbols))
	for _, symbol := range symbols {
		fund, err := client.FetchHoldings(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", symbol, err)
		}
		resolved[symbol] = fund.Holdings
	}
	return resolved, nil
}
