package models

import (
	"fmt"
	"strings"
)

const MaxOutputTokens = 4000

// ModelRequestConfig holds validated generation parameters.
type ModelRequestConfig struct {
	ModelID     string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

func NewModelRequestConfig(modelID string, maxTokens int, temperature, topP float64) (ModelRequestConfig, error) {
	c := ModelRequestConfig{
		ModelID:     strings.TrimSpace(modelID),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	if err := c.Validate(); err != nil {
		return ModelRequestConfig{}, err
	}
	return c, nil
}

func (c ModelRequestConfig) Validate() error {
	if c.ModelID == "" {
		return fmt.Errorf("model id is required")
	}
	if c.MaxTokens <= 0 || c.MaxTokens > MaxOutputTokens {
		return fmt.Errorf("max tokens must be between 1 and %d, got %d", MaxOutputTokens, c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0, got %g", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be between 0.0 and 1.0, got %g", c.TopP)
	}
	return nil
}
