// Package warehouse loads the labeled training table the model is fitted
// on. A Source returns raw rows that may contain nulls; Clean drops every
// incomplete row before training.
package warehouse

import (
	"context"
	"fmt"
	"math"
	"strings"

	"econ-predictor/internal/cfg"
	"econ-predictor/internal/common"
	"econ-predictor/internal/features"

	"github.com/rs/zerolog/log"
)

// RawRecord is one row as read from the source. Nil means null.
type RawRecord struct {
	Inflation *float64 `json:"CPI_Inflation"`
	Earnings  *float64 `json:"Avg_Earnings"`
	Growth    *float64 `json:"Retail_Growth"`
	Status    *string  `json:"Econ_Status"`
}

// Source supplies the training table at startup.
type Source interface {
	Load(ctx context.Context) ([]RawRecord, error)
	Describe() string
}

// Clean drops rows with any null, non-finite or blank field and returns the
// remaining rows in source order, plus the number dropped.
func Clean(raw []RawRecord) ([]features.TrainingRecord, int) {
	out := make([]features.TrainingRecord, 0, len(raw))
	for _, r := range raw {
		if !present(r.Inflation) || !present(r.Earnings) || !present(r.Growth) {
			continue
		}
		if r.Status == nil || strings.TrimSpace(*r.Status) == "" {
			continue
		}
		out = append(out, features.TrainingRecord{
			Triple: features.Triple{
				Inflation: *r.Inflation,
				Earnings:  *r.Earnings,
				Growth:    *r.Growth,
			},
			Status: strings.TrimSpace(*r.Status),
		})
	}
	return out, len(raw) - len(out)
}

func present(x *float64) bool {
	return x != nil && !math.IsNaN(*x) && !math.IsInf(*x, 0)
}

// LoadTrainingSet loads and cleans the table from a source.
func LoadTrainingSet(ctx context.Context, src Source) ([]features.TrainingRecord, int, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load training data from %s: %w", src.Describe(), err)
	}

	records, dropped := Clean(raw)
	log.Info().
		Str("source", src.Describe()).
		Int("rows", len(raw)).
		Int("dropped", dropped).
		Int("kept", len(records)).
		Msg("training data loaded")

	return records, dropped, nil
}

// Open builds the source configured in settings. The returned close
// function releases any database handle and is never nil.
func Open(settings cfg.Settings) (Source, func() error, error) {
	noop := func() error { return nil }

	switch settings.SourceKind {
	case common.KindCSV:
		return &CSVSource{Path: settings.SourcePath}, noop, nil
	case common.KindMySQL, common.KindSQLite:
		src, err := NewSQLSource(settings.SourceKind, settings.SourceDSN, settings.SourceTable)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil
	case common.KindHTTP:
		return NewHTTPSource(settings.SourceURL, settings.HTTPTimeout), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown source kind %q", settings.SourceKind)
	}
}
