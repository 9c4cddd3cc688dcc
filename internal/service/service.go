// Package service runs the prediction workflow: validate, scale, classify
// and, on confirmation, persist. Service handles one request per call and
// holds no per-request state; Session drives it from a console and Server
// exposes it over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"econ-predictor/internal/features"
	"econ-predictor/internal/ml"
	"econ-predictor/internal/storage"

	"github.com/rs/zerolog/log"
)

// ErrPersistenceDisabled is returned by Persist when no sink is configured.
var ErrPersistenceDisabled = errors.New("persistence is disabled")

// Sink is the append-only audit store for confirmed predictions.
type Sink interface {
	AppendPrediction(ctx context.Context, record storage.PredictionRecord) error
}

// MetricsInterface defines metrics methods needed by the service.
type MetricsInterface interface {
	PredictionInc(label string)
	RejectionInc(field string)
	ParseErrorInc()
	PredictionLatencyObserve(float64)
	PersistedInc()
	PersistFailureInc()
	PersistRetryInc()
}

// InputParseError is returned when a caller-supplied field is not a number.
type InputParseError struct {
	Field string
	Input string
}

func (e *InputParseError) Error() string {
	return fmt.Sprintf("%s: %q is not a numeric value", e.Field, e.Input)
}

// PersistError wraps the last sink error after all attempts failed.
type PersistError struct {
	Attempts int
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// PredictionRequest is the caller-supplied scenario.
type PredictionRequest struct {
	features.Triple
}

// ParseField parses one numeric field as typed by a caller.
func ParseField(field, input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return 0, &InputParseError{Field: field, Input: input}
	}
	return v, nil
}

// Outcome is the result of one request. Trace lists every state visited.
type Outcome struct {
	Request PredictionRequest
	State   State
	Trace   []State
	Label   string
	Err     error
	Record  *storage.PredictionRecord
}

func (o *Outcome) advance(to State) {
	if !canTransition(o.State, to) {
		panic(fmt.Sprintf("illegal transition %s -> %s", o.State, to))
	}
	o.State = to
	o.Trace = append(o.Trace, to)
}

// Violations returns the guardrail violations of a rejected outcome.
func (o *Outcome) Violations() []ml.Violation {
	var rejected *ml.RejectedInputError
	if errors.As(o.Err, &rejected) {
		return rejected.Violations
	}
	return nil
}

// Config controls persistence behaviour.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	Now        func() time.Time
}

// Service orchestrates validate, scale, classify and persist.
type Service struct {
	predictor ml.PredictorInterface
	sink      Sink
	metrics   MetricsInterface
	config    Config
}

// New creates a service. sink and m may be nil.
func New(p ml.PredictorInterface, sink Sink, m MetricsInterface, config Config) *Service {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Service{
		predictor: p,
		sink:      sink,
		metrics:   m,
		config:    config,
	}
}

// Bounds returns the advisory range of the trained model.
func (s *Service) Bounds() features.BoundsAdvisory {
	return s.predictor.Bounds()
}

// PersistenceEnabled reports whether a sink is configured.
func (s *Service) PersistenceEnabled() bool {
	return s.sink != nil
}

// ParseFailure records a request that never got past input parsing.
func (s *Service) ParseFailure(err error) *Outcome {
	if s.metrics != nil {
		s.metrics.ParseErrorInc()
	}
	o := &Outcome{State: Received, Trace: []State{Received}, Err: err}
	o.advance(InputParseFailed)
	return o
}

// Classify validates a request against the guardrail and, if it passes,
// scales and classifies it. A rejected request never reaches the model.
func (s *Service) Classify(req PredictionRequest) *Outcome {
	start := time.Now()
	o := &Outcome{Request: req, State: Received, Trace: []State{Received}}

	if err := ml.Validate(req.Triple); err != nil {
		o.Err = err
		o.advance(Rejected)
		if s.metrics != nil {
			for _, v := range o.Violations() {
				s.metrics.RejectionInc(v.Field)
			}
		}
		log.Debug().Err(err).Msg("request rejected by guardrail")
		return o
	}
	o.advance(Validated)

	scaled := s.predictor.Scale(req.Triple)
	o.advance(Scaled)

	o.Label = s.predictor.Classify(scaled)
	o.advance(Classified)

	if s.metrics != nil {
		s.metrics.PredictionInc(o.Label)
		s.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
	}
	log.Debug().
		Float64("inflation", req.Inflation).
		Float64("earnings", req.Earnings).
		Float64("growth", req.Growth).
		Str("label", o.Label).
		Msg("prediction made")

	return o
}

// Discard ends a classified outcome without side effects.
func (s *Service) Discard(o *Outcome) error {
	if o.State != Classified {
		return fmt.Errorf("cannot discard a %s request", o.State)
	}
	o.advance(Discarded)
	return nil
}

// Persist appends a classified outcome to the sink, retrying transient
// failures up to MaxRetries times. The record identity is fixed before the
// first attempt so retries cannot duplicate it. On failure the outcome is
// discarded and a *PersistError is returned.
func (s *Service) Persist(ctx context.Context, o *Outcome) error {
	if o.State != Classified {
		return fmt.Errorf("cannot persist a %s request", o.State)
	}
	if s.sink == nil {
		o.Err = ErrPersistenceDisabled
		o.advance(Discarded)
		return ErrPersistenceDisabled
	}

	record := storage.NewPredictionRecord(s.config.Now(), o.Request.Triple, o.Label, s.predictor.ModelID())

	var err error
	attempts := 0
	for attempts <= s.config.MaxRetries {
		if attempts > 0 {
			if s.metrics != nil {
				s.metrics.PersistRetryInc()
			}
			log.Warn().Err(err).Int("attempt", attempts+1).Str("record_id", record.ID).Msg("retrying prediction append")
			if werr := wait(ctx, s.config.RetryDelay); werr != nil {
				err = werr
				break
			}
		}
		attempts++

		if err = s.sink.AppendPrediction(ctx, record); err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err != nil {
		perr := &PersistError{Attempts: attempts, Err: err}
		o.Err = perr
		o.advance(Discarded)
		if s.metrics != nil {
			s.metrics.PersistFailureInc()
		}
		log.Error().Err(err).Int("attempts", attempts).Str("record_id", record.ID).Msg("failed to persist prediction")
		return perr
	}

	o.Record = &record
	o.advance(Persisted)
	if s.metrics != nil {
		s.metrics.PersistedInc()
	}
	log.Info().Str("record_id", record.ID).Str("label", record.Prediction).Msg("prediction persisted")
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
