package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"econ-predictor/internal/common"

	"github.com/rs/zerolog/log"
)

// Reporter generates evaluation reports
type Reporter struct {
	results    *Results
	replay     *ReplayResults
	outputPath string
}

// NewReporter creates a new reporter. replay may be nil.
func NewReporter(results *Results, replay *ReplayResults, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		replay:     replay,
		outputPath: outputPath,
	}
}

// GenerateReport writes the text summary, the per-row CSV and the JSON report.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	if err := r.generateEvaluationLog(); err != nil {
		return err
	}

	return r.generateJSONReport()
}

func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "evaluation_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	r.WriteSummary(file)

	log.Info().Str("file", summaryPath).Msg("Summary generated")
	return nil
}

// WriteSummary renders the human-readable summary.
func (r *Reporter) WriteSummary(w io.Writer) {
	res := r.results

	fmt.Fprintf(w, "LEAVE-ONE-OUT EVALUATION\n")
	fmt.Fprintf(w, "========================\n\n")
	fmt.Fprintf(w, "Neighbours (k): %d\n", res.K)
	fmt.Fprintf(w, "Rows: %d\n", res.Total)
	fmt.Fprintf(w, "Evaluated: %d\n", res.Evaluated)
	fmt.Fprintf(w, "Skipped: %d\n", res.Skipped)
	fmt.Fprintf(w, "Correct: %d\n", res.Correct)
	fmt.Fprintf(w, "Accuracy: %.2f%%\n\n", res.Accuracy*100)

	fmt.Fprintf(w, "CONFUSION MATRIX (rows: actual, columns: predicted)\n")
	fmt.Fprintf(w, "---------------------------------------------------\n")
	fmt.Fprintf(w, "%-12s", "")
	for _, l := range res.Labels {
		fmt.Fprintf(w, "%12s", l)
	}
	fmt.Fprintln(w)
	for _, actual := range res.Labels {
		fmt.Fprintf(w, "%-12s", actual)
		for _, predicted := range res.Labels {
			fmt.Fprintf(w, "%12d", res.Confusion[actual][predicted])
		}
		fmt.Fprintln(w)
	}

	if rp := r.replay; rp != nil {
		fmt.Fprintf(w, "\nAUDIT REPLAY (%s)\n", rp.ModelID)
		fmt.Fprintf(w, "------------\n")
		fmt.Fprintf(w, "Records: %d\n", rp.Total)
		fmt.Fprintf(w, "Agree: %d\n", rp.Agree)
		fmt.Fprintf(w, "Rejected by guardrail: %d\n", rp.Rejected)
		fmt.Fprintf(w, "Agreement: %.2f%%\n", rp.AgreementRate*100)
	}
}

func (r *Reporter) generateEvaluationLog() error {
	csvPath := filepath.Join(r.outputPath, "evaluations.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create evaluation log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Index", common.ColumnInflation, common.ColumnEarnings, common.ColumnGrowth, "Actual", "Predicted", "Skipped"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range r.results.Evaluations {
		row := []string{
			strconv.Itoa(e.Index),
			strconv.FormatFloat(e.Input.Inflation, 'f', -1, 64),
			strconv.FormatFloat(e.Input.Earnings, 'f', -1, 64),
			strconv.FormatFloat(e.Input.Growth, 'f', -1, 64),
			e.Actual,
			e.Predicted,
			strconv.FormatBool(e.Skipped),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	log.Info().Str("file", csvPath).Msg("Evaluation log generated")
	return nil
}

func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, "evaluation_results.json")

	report := map[string]interface{}{
		"leave_one_out": r.results,
		"generated_at":  time.Now(),
	}
	if r.replay != nil {
		report["replay"] = r.replay
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// PrintSummary prints the summary to stdout.
func (r *Reporter) PrintSummary() {
	fmt.Println()
	r.WriteSummary(os.Stdout)
}
