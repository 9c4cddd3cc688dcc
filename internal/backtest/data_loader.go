package backtest

import (
	"fmt"
	"sort"
	"time"

	"econ-predictor/internal/ml"
	"econ-predictor/internal/storage"

	"github.com/rs/zerolog/log"
)

// Disagreement is an audited prediction the current model labels differently.
type Disagreement struct {
	RecordID string    `json:"record_id"`
	At       time.Time `json:"timestamp"`
	Recorded string    `json:"recorded"`
	Current  string    `json:"current"`
}

// ReplayResults compares audited predictions with the current model.
type ReplayResults struct {
	ModelID       string         `json:"model_id"`
	Total         int            `json:"total"`
	Agree         int            `json:"agree"`
	Rejected      int            `json:"rejected"`
	AgreementRate float64        `json:"agreement_rate"`
	Disagreements []Disagreement `json:"disagreements,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
}

// LoadAudit reads the audited predictions of one model from the bolt store,
// ordered by timestamp.
func LoadAudit(store *storage.Store, modelID string, start, end time.Time) ([]storage.PredictionRecord, error) {
	log.Info().
		Time("start", start).
		Time("end", end).
		Str("model_id", modelID).
		Msg("Loading audited predictions from BoltDB")

	records, err := store.ListPredictions(modelID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for %s: %w", modelID, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	log.Info().Int("records", len(records)).Msg("Audited predictions loaded")
	return records, nil
}

// Replay re-classifies each audited input with model. Inputs the guardrail
// now rejects are counted separately and excluded from the agreement rate.
func Replay(records []storage.PredictionRecord, model *ml.TrainedService) *ReplayResults {
	r := &ReplayResults{ModelID: model.ModelID(), Total: len(records)}
	if len(records) > 0 {
		r.StartTime = records[0].Timestamp
		r.EndTime = records[len(records)-1].Timestamp
	}

	for _, rec := range records {
		in := rec.Input()
		if err := ml.Validate(in); err != nil {
			r.Rejected++
			continue
		}
		current := model.Predict(in)
		if current == rec.Prediction {
			r.Agree++
			continue
		}
		r.Disagreements = append(r.Disagreements, Disagreement{
			RecordID: rec.ID,
			At:       rec.Timestamp,
			Recorded: rec.Prediction,
			Current:  current,
		})
	}

	if checked := r.Total - r.Rejected; checked > 0 {
		r.AgreementRate = float64(r.Agree) / float64(checked)
	}
	return r
}
