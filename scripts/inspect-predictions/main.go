package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"econ-predictor/internal/common"
	"econ-predictor/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		dataPath = flag.String("data", "./data", "Data directory path")
		modelID  = flag.String("model", common.DefaultModelID, "Model ID to list")
		days     = flag.Int("days", 30, "How many days back to list")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fmt.Printf("Inspecting predictions in: %s\n", *dataPath)

	store, err := storage.New(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	total, err := store.CountPredictions()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count predictions")
	}
	fmt.Printf("Stored records (all models): %d\n", total)

	end := time.Now()
	records, err := store.ListPredictions(*modelID, end.AddDate(0, 0, -*days), end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list predictions")
	}

	fmt.Printf("\nRecent predictions for %s:\n", *modelID)
	for _, r := range records {
		fmt.Printf("%s  inflation=%.2f earnings=%.2f growth=%.2f  -> %s  (%s)\n",
			r.Timestamp.Format(time.RFC3339), r.Inflation, r.Earnings, r.Growth, r.Prediction, r.ID)
	}
}
