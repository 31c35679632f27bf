package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangang/jokecli/internal/models"
	"github.com/tidwall/gjson"
)

// ProviderShape is the request/response format a model expects.
type ProviderShape int

const (
	ShapeChat ProviderShape = iota
	ShapeLegacyTitan
	ShapeLegacyClaude
	ShapeLegacyGeneric
)

func (s ProviderShape) String() string {
	switch s {
	case ShapeChat:
		return "chat"
	case ShapeLegacyTitan:
		return "legacy-titan"
	case ShapeLegacyClaude:
		return "legacy-claude"
	default:
		return "legacy-generic"
	}
}

// Claude generations that only speak the messages API.
var chatClaudeMarkers = []string{"claude-3", "claude-sonnet-4", "claude-opus-4", "claude-haiku-4"}

// ClassifyModel derives the shape from a model identifier by substring match.
// The convention is brittle on purpose: callers must pass a recognisable id.
func ClassifyModel(modelID string) ProviderShape {
	id := strings.ToLower(modelID)
	if strings.Contains(id, "claude") {
		for _, marker := range chatClaudeMarkers {
			if strings.Contains(id, marker) {
				return ShapeChat
			}
		}
	}
	switch {
	case strings.Contains(id, "titan"):
		return ShapeLegacyTitan
	case strings.Contains(id, "claude"):
		return ShapeLegacyClaude
	default:
		return ShapeLegacyGeneric
	}
}

type titanRequest struct {
	InputText            string                `json:"inputText"`
	TextGenerationConfig titanGenerationConfig `json:"textGenerationConfig"`
}

type titanGenerationConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	StopSequences []string `json:"stopSequences"`
}

type legacyClaudeRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
}

type genericRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// BuildLegacyRequest renders the flat completion body for a legacy shape.
func BuildLegacyRequest(shape ProviderShape, prompt string, cfg models.ModelRequestConfig) ([]byte, error) {
	var body any
	switch shape {
	case ShapeLegacyTitan:
		body = titanRequest{
			InputText: prompt,
			TextGenerationConfig: titanGenerationConfig{
				MaxTokenCount: cfg.MaxTokens,
				Temperature:   cfg.Temperature,
				TopP:          cfg.TopP,
				StopSequences: []string{},
			},
		}
	case ShapeLegacyClaude:
		body = legacyClaudeRequest{
			Prompt:            fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
			MaxTokensToSample: cfg.MaxTokens,
			Temperature:       cfg.Temperature,
			TopP:              cfg.TopP,
		}
	case ShapeLegacyGeneric:
		body = genericRequest{
			Prompt:      prompt,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		}
	default:
		return nil, fmt.Errorf("shape %s has no legacy request body", shape)
	}
	return json.Marshal(body)
}

// generic legacy fields, tried in order
var genericOutputPaths = []string{"generated_text", "text", "output"}

// ParseLegacyResponse extracts the generated text from a legacy response body.
func ParseLegacyResponse(shape ProviderShape, raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return "", &GatewayError{Kind: KindMalformedResponse, Detail: "response body is not a JSON object"}
	}

	var text string
	switch shape {
	case ShapeLegacyTitan:
		text = stringAt(raw, "results.0.outputText")
	case ShapeLegacyClaude:
		text = stringAt(raw, "completion")
	default:
		for _, path := range genericOutputPaths {
			if text = stringAt(raw, path); text != "" {
				break
			}
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GatewayError{Kind: KindEmptyResponse}
	}
	return text, nil
}

func stringAt(raw []byte, path string) string {
	r := gjson.GetBytes(raw, path)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
