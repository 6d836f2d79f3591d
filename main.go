package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lordyo/podcast-analytics/charts"
	"github.com/lordyo/podcast-analytics/config"
	"github.com/lordyo/podcast-analytics/ingest"
	"github.com/lordyo/podcast-analytics/services"
	"github.com/lordyo/podcast-analytics/storage"
	"github.com/lordyo/podcast-analytics/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== Podcast Download Analytics starting ===")
	logger.Info("Config — export: %s | reference: %s | top-N: %d | start offset: %s",
		cfg.ExportPath, cfg.ReferencePath, cfg.TopN, cfg.StartOffset)

	loader := ingest.NewCSVLoader(cfg, logger)

	rawEpisodes, offsetLabels, err := loader.LoadExport()
	if err != nil {
		logger.Error("Export load failed: %v", err)
		os.Exit(1)
	}
	reference, err := loader.LoadReference()
	if err != nil {
		logger.Error("Reference load failed: %v", err)
		os.Exit(1)
	}

	if len(rawEpisodes) == 0 {
		logger.Error("Export contains no episodes. Exiting.")
		os.Exit(1)
	}

	cleaner := services.NewCleaner(logger)
	episodes, err := cleaner.Clean(rawEpisodes)
	if err != nil {
		logger.Error("Cleaning failed, aborting import: %v", err)
		os.Exit(1)
	}

	tidier := services.NewTidier(logger)
	observations, err := tidier.Tidy(episodes, reference, offsetLabels)
	if err != nil {
		logger.Error("Tidy transform failed, aborting import: %v", err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.TidyCSVPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.Write(observations); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Tidy table saved to %s", cfg.TidyCSVPath)
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(observations); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Tidy table stored in PostgreSQL (table: tidy_observations)")
	}

	dbObservations, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch observations from DB for views: %v", err)
		dbObservations = observations
	}

	rankingSvc := services.NewRankingService(logger)
	report := rankingSvc.Report(dbObservations, services.ReportConfig{
		TopN:        cfg.TopN,
		StartOffset: cfg.StartOffset,
		MinAgeDays:  cfg.MinAgeDays,
	})
	rankingSvc.Print(report)

	// Chart views are pure readers of the finished tidy table, so the two
	// renders can run side by side.
	averageSeries := services.AverageDownloadsCurve(dbObservations)
	episodeSeries := services.DownloadCurvesPerEpisode(dbObservations)

	if err := os.MkdirAll(cfg.ChartDir, 0755); err != nil {
		logger.Error("Failed to create chart dir: %v", err)
		os.Exit(1)
	}
	averagePath := filepath.Join(cfg.ChartDir, "average_downloads.png")
	episodesPath := filepath.Join(cfg.ChartDir, "episode_downloads.png")

	pool := utils.NewWorkerPool(2)
	pool.Submit(func() {
		if err := charts.RenderAverageCurve(averageSeries, averagePath); err != nil {
			logger.Error("Average chart render failed: %v", err)
		} else {
			logger.Info("Average downloads chart saved to %s", averagePath)
		}
	})
	pool.Submit(func() {
		if err := charts.RenderEpisodeCurves(episodeSeries, episodesPath); err != nil {
			logger.Error("Episode chart render failed: %v", err)
		} else {
			logger.Info("Per-episode downloads chart saved to %s", episodesPath)
		}
	})
	pool.Wait()

	fmt.Printf("  Done. Tidy CSV → %s | Clean data → PostgreSQL (tidy_observations) | Charts → %s\n\n",
		cfg.TidyCSVPath, cfg.ChartDir)
}
