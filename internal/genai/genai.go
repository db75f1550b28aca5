// Package genai talks to the external text-generation provider.
package genai

import (
	"context"
	"errors"
)

var ErrProvider = errors.New("generation provider failure")

type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// Pricing is expressed in currency units per one million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*p.InputPerMillion/1e6 + float64(outputTokens)*p.OutputPerMillion/1e6
}

var pricingTable = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerMillion: 0.30, OutputPerMillion: 3.00},
	"gemini-2.5-flash-lite": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-2.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.0-flash":      {InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

// PricingFor falls back to gemini-2.5-flash rates for unknown models.
func PricingFor(model string) Pricing {
	if p, ok := pricingTable[model]; ok {
		return p
	}
	return pricingTable["gemini-2.5-flash"]
}
