package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"econ-predictor/internal/common"
	"econ-predictor/internal/features"

	"github.com/rs/zerolog/log"
)

const (
	promptInflation = "Enter Expected Inflation % (or 'exit'): "
	promptEarnings  = "Enter Expected Avg Earnings: "
	promptGrowth    = "Enter Expected Retail Growth %: "
	promptSave      = "Save this prediction to the tracking table? (y/n): "

	msgRejected   = "DATA ERROR: Input values are economically impossible."
	msgParseError = "ERROR: Please enter numeric values only."
)

// SessionStats summarizes one console session.
type SessionStats struct {
	Predictions int
	Rejected    int
	ParseErrors int
	Persisted   int
	Discarded   int
	Failed      int
}

// Session is the interactive console loop over a Service.
type Session struct {
	svc   *Service
	in    *bufio.Scanner
	out   io.Writer
	stats SessionStats
}

// NewSession creates a console session reading from r and writing to w.
func NewSession(svc *Service, r io.Reader, w io.Writer) *Session {
	return &Session{
		svc: svc,
		in:  bufio.NewScanner(r),
		out: w,
	}
}

var errExit = errors.New("session exit")

// Run handles requests until the caller types the exit sentinel, input ends
// or ctx is cancelled. Each turn starts with the bounds advisory. A panic
// inside a turn ends the session with an error instead of crashing.
func (s *Session) Run(ctx context.Context) (stats SessionStats, err error) {
	fmt.Fprintln(s.out, "--- Economic Status Predictor ---")

	defer func() {
		stats = s.stats
		log.Info().
			Int("predictions", s.stats.Predictions).
			Int("rejected", s.stats.Rejected).
			Int("parse_errors", s.stats.ParseErrors).
			Int("persisted", s.stats.Persisted).
			Int("discarded", s.stats.Discarded).
			Int("persist_failures", s.stats.Failed).
			Msg("session ended")
	}()

	for {
		if ctx.Err() != nil {
			return s.stats, nil
		}
		if turnErr := s.safeTurn(ctx); turnErr != nil {
			if errors.Is(turnErr, errExit) {
				fmt.Fprintln(s.out, "Exiting predictor.")
				return s.stats, nil
			}
			fmt.Fprintln(s.out, "FATAL ERROR: the predictor stopped unexpectedly.")
			return s.stats, turnErr
		}
	}
}

func (s *Session) safeTurn(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("session turn panicked")
			err = fmt.Errorf("session turn panicked: %v", r)
		}
	}()
	return s.turn(ctx)
}

// readLine prompts and returns the next trimmed line. End of input maps to
// errExit.
func (s *Session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errExit
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) turn(ctx context.Context) error {
	fmt.Fprint(s.out, "\n"+s.svc.Bounds().Note())
	rawInflation, err := s.readLine(promptInflation)
	if err != nil {
		return err
	}
	if strings.EqualFold(rawInflation, common.ExitSentinel) {
		return errExit
	}

	var t features.Triple
	if t.Inflation, err = ParseField("inflation", rawInflation); err != nil {
		return s.parseFailed(err)
	}
	if t.Earnings, err = s.readField("earnings", promptEarnings); err != nil {
		return s.parseFailed(err)
	}
	if t.Growth, err = s.readField("growth", promptGrowth); err != nil {
		return s.parseFailed(err)
	}
	req := PredictionRequest{Triple: t}

	outcome := s.svc.Classify(req)
	if outcome.State == Rejected {
		s.stats.Rejected++
		fmt.Fprintln(s.out, msgRejected)
		for _, v := range outcome.Violations() {
			fmt.Fprintf(s.out, "  - %s\n", v)
		}
		return nil
	}

	s.stats.Predictions++
	fmt.Fprintf(s.out, "\nMODEL PREDICTION: %s\n", outcome.Label)

	answer, err := s.readLine(promptSave)
	if err != nil {
		// input ended before confirmation, nothing is written
		_ = s.svc.Discard(outcome)
		s.stats.Discarded++
		return err
	}

	if !strings.EqualFold(answer, "y") {
		_ = s.svc.Discard(outcome)
		s.stats.Discarded++
		return nil
	}

	switch err := s.svc.Persist(ctx, outcome); {
	case err == nil:
		s.stats.Persisted++
		fmt.Fprintln(s.out, "SUCCESS: Prediction saved.")
	case errors.Is(err, ErrPersistenceDisabled):
		s.stats.Discarded++
		fmt.Fprintln(s.out, "NOTE: Persistence is disabled; prediction not saved.")
	default:
		s.stats.Failed++
		fmt.Fprintf(s.out, "ERROR: Could not save prediction: %v\n", err)
	}
	return nil
}

// readField prompts for one value and parses it before the next prompt is
// shown.
func (s *Session) readField(field, prompt string) (float64, error) {
	raw, err := s.readLine(prompt)
	if err != nil {
		return 0, err
	}
	return ParseField(field, raw)
}

// parseFailed reports a non-numeric entry and ends the turn so the loop
// returns to the inflation prompt. Other errors pass through.
func (s *Session) parseFailed(err error) error {
	var parseErr *InputParseError
	if !errors.As(err, &parseErr) {
		return err
	}
	s.svc.ParseFailure(err)
	s.stats.ParseErrors++
	fmt.Fprintln(s.out, msgParseError)
	return nil
}
