package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPSource fetches the training table as a JSON array of row objects
// keyed by column name. Missing or null fields are treated as null.
type HTTPSource struct {
	URL    string
	client *resty.Client
}

// NewHTTPSource creates an HTTP training source with a request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Accept", "application/json")
	return &HTTPSource{URL: url, client: client}
}

func (s *HTTPSource) Describe() string { return "http:" + s.URL }

func (s *HTTPSource) Load(ctx context.Context) ([]RawRecord, error) {
	var records []RawRecord
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&records).
		Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch training data: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch training data: unexpected status %s", resp.Status())
	}
	return records, nil
}
