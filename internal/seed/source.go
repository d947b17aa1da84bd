package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"api_transactions/internal/transactions"

	"resty.dev/v3"
)

// sourceRecord mirrors one entry of the product transaction dataset.
// Fields outside the data model (id, image, sold) are ignored.
type sourceRecord struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	DateOfSale  time.Time `json:"dateOfSale"`
	Category    string    `json:"category"`
}

// HTTPSource fetches the seed dataset as a JSON array over HTTP.
type HTTPSource struct {
	client *resty.Client
	url    string
}

var _ transactions.Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source reading url with the given timeout and
// number of transport-level retries.
func NewHTTPSource(url string, timeout time.Duration, retries int) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetHeader("Accept", "application/json")

	return &HTTPSource{client: client, url: url}
}

// Close releases the underlying HTTP client.
func (s *HTTPSource) Close() error {
	return s.client.Close()
}

// Fetch downloads and decodes the dataset. Every failure is an ErrSeedSource.
func (s *HTTPSource) Fetch(ctx context.Context) ([]transactions.Transaction, error) {
	res, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", transactions.ErrSeedSource, s.url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: get %s: unexpected status %d", transactions.ErrSeedSource, s.url, res.StatusCode())
	}

	return Decode([]byte(res.String()))
}

// Decode parses a JSON array of dataset entries.
func Decode(body []byte) ([]transactions.Transaction, error) {
	var records []sourceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: decode dataset: %w", transactions.ErrSeedSource, err)
	}

	out := make([]transactions.Transaction, len(records))
	for i, r := range records {
		out[i] = transactions.Transaction{
			Title:       r.Title,
			Description: r.Description,
			Price:       r.Price,
			DateOfSale:  r.DateOfSale,
			Category:    r.Category,
		}
	}
	return out, nil
}
