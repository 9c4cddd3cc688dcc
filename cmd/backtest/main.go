package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"econ-predictor/internal/backtest"
	"econ-predictor/internal/cfg"
	"econ-predictor/internal/common"
	"econ-predictor/internal/features"
	"econ-predictor/internal/ml"
	"econ-predictor/internal/storage"
	"econ-predictor/internal/warehouse"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (overrides CONFIG_FILE)")
		outputPath = flag.String("output", "", "Output directory for report files (empty prints only)")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		neighbors  = flag.Int("k", ml.DefaultK, "Neighbour count for leave-one-out evaluation")
		replay     = flag.Bool("replay", false, "Replay audited predictions from the bolt store in DATA_PATH")
		startDate  = flag.String("start", "", "Replay start date (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "Replay end date (YYYY-MM-DD)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *configPath != "" {
		os.Setenv(common.EnvConfigFile, *configPath)
	}
	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *neighbors < common.MinNeighbors || *neighbors > common.MaxNeighbors {
		log.Fatal().Int("k", *neighbors).Msgf("k must be between %d and %d", common.MinNeighbors, common.MaxNeighbors)
	}

	fmt.Println("=== Evaluation Configuration ===")
	fmt.Printf("Source: %s\n", config.SourceKind)
	fmt.Printf("Model ID: %s\n", config.ModelID)
	fmt.Printf("Neighbours: %d\n", *neighbors)
	fmt.Printf("Output Directory: %s\n", *outputPath)
	fmt.Println("================================")

	ctx := context.Background()

	src, closeSource, err := warehouse.Open(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open training source")
	}
	records, _, err := warehouse.LoadTrainingSet(ctx, src)
	closeSource()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load training data")
	}

	results, err := backtest.LeaveOneOut(records, *neighbors)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	var replayResults *backtest.ReplayResults
	if *replay {
		replayResults = runReplay(config, records, *startDate, *endDate)
	}

	reporter := backtest.NewReporter(results, replayResults, *outputPath)
	if *outputPath != "" {
		if err := reporter.GenerateReport(); err != nil {
			log.Error().Err(err).Msg("Failed to generate reports")
		}
	}
	reporter.PrintSummary()

	log.Info().
		Str("output", *outputPath).
		Msg("Evaluation completed successfully")
}

// runReplay re-classifies the audited predictions of the configured model
// with a production model trained on the current table.
func runReplay(config cfg.Settings, records []features.TrainingRecord, startDate, endDate string) *backtest.ReplayResults {
	startTime, endTime, err := parseRange(startDate, endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date range")
	}

	model, err := ml.Train(records, ml.TrainConfig{ModelID: config.ModelID})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to train model for replay")
	}

	store, err := storage.New(config.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open BoltDB")
	}
	defer store.Close()

	audit, err := backtest.LoadAudit(store, config.ModelID, startTime, endTime)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load audited predictions")
	}
	return backtest.Replay(audit, model)
}

// parseRange defaults to the last month.
func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()

	var err error
	if startDate != "" {
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			return start, end, fmt.Errorf("start date: %w", err)
		}
	}
	if endDate != "" {
		if end, err = time.Parse("2006-01-02", endDate); err != nil {
			return start, end, fmt.Errorf("end date: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}
