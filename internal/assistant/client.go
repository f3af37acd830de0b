package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"offersmonkey/internal/offers"
	"offersmonkey/pkg/models"
)

const (
	promptOfferLimit = 15
	requestTimeout   = 45 * time.Second
)

// Client talks to an OpenAI-compatible chat completions endpoint and
// grounds every conversation in the current offer catalog. A client
// with an empty endpoint is disabled and the feature simply reports
// itself unavailable.
type Client struct {
	Endpoint string
	APIKey   string
	Model    string

	HTTPClient *http.Client
	Offers     *offers.Repo
	History    *History
}

func NewClient(endpoint, apiKey, model string, offerRepo *offers.Repo) *Client {
	return &Client{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: requestTimeout},
		Offers:     offerRepo,
		History:    NewHistory(0),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat answers one user question, recording both sides in the user's
// transcript.
func (c *Client) Chat(ctx context.Context, userID, question string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("assistant is not configured")
	}

	msgs := []chatMessage{{Role: "system", Content: c.systemPrompt(ctx)}}
	for _, m := range c.History.For(userID) {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Text})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: question})

	body, err := json.Marshal(chatRequest{Model: c.Model, Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("assistant upstream: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("assistant upstream status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)

	c.History.Append(userID, Message{Role: "user", Text: question})
	c.History.Append(userID, Message{Role: "assistant", Text: answer})
	return answer, nil
}

// systemPrompt embeds a compact listing of current deals so the model
// answers from the live catalog instead of inventing offers.
func (c *Client) systemPrompt(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("You are the OffersMonkey shopping assistant. ")
	b.WriteString("Help users find deals, coupons and discounts. ")
	b.WriteString("Only recommend deals from the list below and say so when nothing matches.\n\nCurrent deals:\n")

	top, err := c.Offers.List(ctx, offers.ListQuery{Featured: true, Limit: promptOfferLimit})
	if err != nil || len(top) == 0 {
		top, _ = c.Offers.List(ctx, offers.ListQuery{Limit: promptOfferLimit})
	}
	if len(top) == 0 {
		b.WriteString("(no deals available right now)\n")
		return b.String()
	}

	for _, o := range top {
		b.WriteString("- ")
		b.WriteString(formatOffer(o))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatOffer(o models.Offer) string {
	parts := []string{o.Title}
	if o.Store != "" {
		parts = append(parts, "at "+o.Store)
	}
	if o.Savings != "" {
		parts = append(parts, "("+o.Savings+")")
	}
	if o.Code != "" {
		parts = append(parts, "code "+o.Code)
	}
	return strings.Join(parts, " ")
}
