package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"econ-predictor/internal/common"
	"econ-predictor/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// regime describes the feature ranges of one economic status.
type regime struct {
	status                     string
	inflationLo, inflationSpan float64
	earningsLo, earningsSpan   float64
	growthLo, growthSpan       float64
}

var regimes = []regime{
	{"Stable", 1.0, 2.0, 2000, 300, 0.5, 1.5},
	{"Growing", 2.0, 2.0, 2300, 500, 2.0, 3.0},
	{"Declining", 4.0, 4.0, 1800, 300, -4.0, 3.5},
}

func main() {
	var (
		outPath    = flag.String("out", "data/training.csv", "CSV file to write")
		sqlitePath = flag.String("sqlite", "", "Also seed this SQLite database with the training view table")
		rows       = flag.Int("rows", 120, "Number of rows to generate")
		nullRate   = flag.Float64("null-rate", 0.03, "Fraction of cells left blank")
		seed       = flag.Int64("seed", 42, "Random seed")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fmt.Printf("Generating sample training data...\n")
	fmt.Printf("  Rows: %d\n", *rows)
	fmt.Printf("  Output: %s\n", *outPath)

	rng := rand.New(rand.NewSource(*seed))
	table := generateRows(rng, *rows, *nullRate)

	if err := writeCSV(*outPath, table); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}

	if *sqlitePath != "" {
		if err := seedSQLite(*sqlitePath, table); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed SQLite warehouse")
		}
		fmt.Printf("  Seeded %s table %s\n", *sqlitePath, common.DefaultSourceTable)
	}

	fmt.Printf("Generated %d rows\n", len(table))
}

// generateRows returns rows of [inflation, earnings, growth, status]; blank
// strings stand for nulls.
func generateRows(rng *rand.Rand, n int, nullRate float64) [][]string {
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		r := regimes[i%len(regimes)]
		row := []string{
			strconv.FormatFloat(r.inflationLo+rng.Float64()*r.inflationSpan, 'f', 2, 64),
			strconv.FormatFloat(r.earningsLo+rng.Float64()*r.earningsSpan, 'f', 2, 64),
			strconv.FormatFloat(r.growthLo+rng.Float64()*r.growthSpan, 'f', 2, 64),
			r.status,
		}
		if rng.Float64() < nullRate {
			row[rng.Intn(len(row))] = ""
		}
		out = append(out, row)
	}
	return out
}

func writeCSV(path string, table [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{common.ColumnInflation, common.ColumnEarnings, common.ColumnGrowth, common.ColumnStatus}
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(table); err != nil {
		return err
	}
	return writer.Error()
}

func seedSQLite(path string, table [][]string) error {
	db, err := storage.OpenSQL(common.KindSQLite, path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s REAL, %s REAL, %s REAL, %s TEXT)`,
		common.DefaultSourceTable, common.ColumnInflation, common.ColumnEarnings, common.ColumnGrowth, common.ColumnStatus)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s VALUES (?, ?, ?, ?)`, common.DefaultSourceTable)
	for _, row := range table {
		args := make([]interface{}, len(row))
		for i, cell := range row {
			if cell == "" {
				args[i] = nil
			} else {
				args[i] = cell
			}
		}
		if _, err := db.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return nil
}
