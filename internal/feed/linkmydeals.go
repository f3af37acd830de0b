package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// LinkMyDeals fetches the offer list from the LinkMyDeals-style feed
// API. The API meters by full extracts, which is why the syncer guards
// full syncs with a daily quota.
type LinkMyDeals struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func NewLinkMyDeals(baseURL, apiKey string) *LinkMyDeals {
	return &LinkMyDeals{
		Client:  &http.Client{Timeout: 20 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

func (s *LinkMyDeals) Name() string { return "linkmydeals" }

type lmdResponse struct {
	Result string `json:"result"`
	Offers []Row  `json:"offers"`
	Count  int    `json:"offers_count"`
	Msg    string `json:"msg"`
}

func (s *LinkMyDeals) FetchAll(ctx context.Context) ([]Row, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("linkmydeals: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("API_KEY", s.APIKey)
	q.Set("format", "json")
	q.Set("incremental", "0")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("linkmydeals: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkmydeals: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linkmydeals: status %d: %s", resp.StatusCode, string(body))
	}

	// the API answers either a bare array or a wrapper object
	var rows []Row
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped lmdResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("linkmydeals: decode: %w", err)
	}
	if wrapped.Result != "" && wrapped.Result != "success" {
		return nil, fmt.Errorf("linkmydeals: api error: %s", wrapped.Msg)
	}
	return wrapped.Offers, nil
}
