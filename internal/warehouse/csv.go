package warehouse

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"econ-predictor/internal/common"
)

// CSVSource reads the training table from a CSV file with a header row.
// Extra columns are ignored; blank or unparsable cells are treated as null.
type CSVSource struct {
	Path string
}

func (s *CSVSource) Describe() string { return "csv:" + s.Path }

func (s *CSVSource) Load(ctx context.Context) ([]RawRecord, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(ctx, file)
}

// ReadCSV parses a training table from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Map header indices
	indices := make(map[string]int)
	for i, col := range header {
		indices[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	required := []string{common.ColumnInflation, common.ColumnEarnings, common.ColumnGrowth, common.ColumnStatus}
	for _, col := range required {
		if _, ok := indices[col]; !ok {
			return nil, fmt.Errorf("CSV is missing column %s", col)
		}
	}

	var records []RawRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}

		records = append(records, RawRecord{
			Inflation: floatCell(row, indices[common.ColumnInflation]),
			Earnings:  floatCell(row, indices[common.ColumnEarnings]),
			Growth:    floatCell(row, indices[common.ColumnGrowth]),
			Status:    stringCell(row, indices[common.ColumnStatus]),
		})
	}
	return records, nil
}

func floatCell(row []string, i int) *float64 {
	if i >= len(row) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return nil
	}
	return &v
}

func stringCell(row []string, i int) *string {
	if i >= len(row) || strings.TrimSpace(row[i]) == "" {
		return nil
	}
	v := row[i]
	return &v
}
