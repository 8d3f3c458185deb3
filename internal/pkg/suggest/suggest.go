// Package suggest asks a generative model for professional skills that match
// a user's free-text interests.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// FailureSentinel is returned as the only suggestion when the model cannot be reached
// or answers with something unusable.
const FailureSentinel = "AI suggestion failed. Please add skills manually."

// Suggester returns skill suggestions, or a one-element list holding FailureSentinel.
type Suggester interface {
	SuggestSkills(ctx context.Context, interests string) []string
}

// Config configures the model client. An empty Endpoint uses the public API.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client asks the model through the genai SDK.
type Client struct {
	model  string
	api    *genai.Client
	err    error
	logger zerolog.Logger
}

// NewClient creates a Client. A client that cannot be set up answers every
// request with FailureSentinel.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &Client{model: cfg.Model, logger: logger}
	if cfg.APIKey == "" {
		c.err = errors.New("no API key configured")
		return c
	}
	c.api, c.err = genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	return c
}

// Prompt is the instruction sent for interests.
func Prompt(interests string) string {
	return fmt.Sprintf("Based on the following interests, suggest 5 relevant professional skills: %s.", interests)
}

var skillsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"skills": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Description: "A professional skill"},
		},
	},
	Required: []string{"skills"},
}

// SuggestSkills implements Suggester.
func (c *Client) SuggestSkills(ctx context.Context, interests string) []string {
	skills, err := c.suggest(ctx, interests)
	if err != nil {
		c.logger.Error().Err(err).Msg("skill suggestion failed")
		return []string{FailureSentinel}
	}
	return skills
}

func (c *Client) suggest(ctx context.Context, interests string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(Prompt(interests)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   skillsSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.New("model returned no text")
	}
	return ParseSkills(text)
}

// ParseSkills reads the model text, tolerating a markdown code fence around the JSON.
// Valid JSON without a skills array yields an empty list.
func ParseSkills(text string) ([]string, error) {
	s := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "```json"), "```"))
	case strings.HasPrefix(s, "```"):
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```"))
	}

	var result struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("parsing skills: %w", err)
	}
	if result.Skills == nil {
		return []string{}, nil
	}
	return result.Skills, nil
}

// MergeSkills appends suggested skills to existing ones, dropping the failure
// sentinel, blanks and case-insensitive duplicates.
func MergeSkills(existing, suggested []string) []string {
	seen := make(map[string]bool, len(existing)+len(suggested))
	out := make([]string, 0, len(existing)+len(suggested))
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || s == FailureSentinel || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, s := range existing {
		add(s)
	}
	for _, s := range suggested {
		add(s)
	}
	return out
}
