package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	googlegenai "google.golang.org/genai"
)

const apiVersion = "v1beta"

// GeminiClient generates text through the Gemini API.
type GeminiClient struct {
	client *googlegenai.Client
	model  string
}

// NewGeminiClient builds a client for the Gemini API backend. An empty baseURL
// keeps the SDK's default endpoint.
func NewGeminiClient(ctx context.Context, baseURL, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := googlegenai.NewClient(ctx, &googlegenai.ClientConfig{
		APIKey:  apiKey,
		Backend: googlegenai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		HTTPOptions: googlegenai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (*Result, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, googlegenai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no candidates returned", ErrProvider)
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w: empty candidate (finish reason %q)", ErrProvider, cand.FinishReason)
	}

	res := &Result{Text: sb.String()}
	if u := resp.UsageMetadata; u != nil {
		res.InputTokens = int(u.PromptTokenCount)
		// thinking tokens are billed at the output rate
		res.OutputTokens = int(u.CandidatesTokenCount) + int(u.ThoughtsTokenCount)
	}
	return res, nil
}
