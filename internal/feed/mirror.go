package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Mirror fetches rows from a local feed-mirror server (see
// cmd/feed-mirror). Used for demos and as a quota-free source.
type Mirror struct {
	Client  *http.Client
	BaseURL string
}

func NewMirror(baseURL string) *Mirror {
	return &Mirror{
		Client:  &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
	}
}

func (s *Mirror) Name() string { return "mirror" }

func (s *Mirror) FetchAll(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/offers", nil)
	if err != nil {
		return nil, fmt.Errorf("mirror: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mirror: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror: status %d", resp.StatusCode)
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("mirror: decode: %w", err)
	}
	return rows, nil
}
