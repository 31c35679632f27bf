package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/huangang/jokecli/internal/models"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// statusKind maps an HTTP status returned by a provider API to an error kind.
func statusKind(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindNoCredentials
	case http.StatusForbidden:
		return KindAccessDenied
	case http.StatusNotFound:
		return KindModelNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindInvalidRequest
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable,
		http.StatusGatewayTimeout, 529:
		return KindServiceUnavailable
	}
	return KindProviderError
}

func httpStatusError(provider, modelID string, status int, message string, err error) *GatewayError {
	gwErr := &GatewayError{
		Kind:     statusKind(status),
		Provider: provider,
		ModelID:  modelID,
		Err:      err,
	}
	switch gwErr.Kind {
	case KindInvalidRequest:
		gwErr.Detail = message
	case KindProviderError:
		gwErr.Detail = fmt.Sprintf("%s API error (%d): %s", providerLabel(provider), status, message)
	}
	return gwErr
}

// --- Anthropic ---

type AnthropicBackend struct {
	client anthropic.Client
}

func NewAnthropicBackend(apiKey, baseURL string, timeout time.Duration) *AnthropicBackend {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicBackend{client: anthropic.NewClient(opts...)}
}

func (b *AnthropicBackend) Name() string { return ProviderAnthropic }

func (b *AnthropicBackend) Converse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.ModelID),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
		TopP:        anthropic.Float(req.TopP),
	})
	if err != nil {
		return nil, anthropicError(err, req.ModelID)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return &ChatResponse{Text: content.String()}, nil
}

func (b *AnthropicBackend) ListModels(ctx context.Context) ([]models.ModelSummary, error) {
	page, err := b.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, anthropicError(err, "")
	}
	list := make([]models.ModelSummary, 0, len(page.Data))
	for _, m := range page.Data {
		list = append(list, models.ModelSummary{ID: m.ID, Name: m.DisplayName, Provider: "Anthropic"})
	}
	return list, nil
}

func anthropicError(err error, modelID string) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return httpStatusError(ProviderAnthropic, modelID, apiErr.StatusCode, apiErr.RawJSON(), err)
	}
	return err
}

// --- OpenAI and Azure OpenAI ---

type OpenAIBackend struct {
	name   string
	client *openai.Client
}

func NewOpenAIBackend(apiKey, baseURL string, timeout time.Duration) *OpenAIBackend {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIBackend{name: ProviderOpenAI, client: openai.NewClientWithConfig(cfg)}
}

// NewAzureBackend expects baseURL of the form https://{resource}.openai.azure.com;
// the model id is used as the deployment name.
func NewAzureBackend(apiKey, baseURL string, timeout time.Duration) *OpenAIBackend {
	cfg := openai.DefaultAzureConfig(apiKey, baseURL)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIBackend{name: ProviderAzure, client: openai.NewClientWithConfig(cfg)}
}

func (b *OpenAIBackend) Name() string { return b.name }

func (b *OpenAIBackend) Converse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.ModelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
	})
	if err != nil {
		return nil, b.mapError(err, req.ModelID)
	}

	if len(resp.Choices) == 0 {
		return &ChatResponse{}, nil
	}
	return &ChatResponse{Text: resp.Choices[0].Message.Content}, nil
}

func (b *OpenAIBackend) ListModels(ctx context.Context) ([]models.ModelSummary, error) {
	resp, err := b.client.ListModels(ctx)
	if err != nil {
		return nil, b.mapError(err, "")
	}
	list := make([]models.ModelSummary, 0, len(resp.Models))
	for _, m := range resp.Models {
		list = append(list, models.ModelSummary{ID: m.ID, Name: m.ID, Provider: m.OwnedBy})
	}
	return list, nil
}

func (b *OpenAIBackend) mapError(err error, modelID string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return httpStatusError(b.name, modelID, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return httpStatusError(b.name, modelID, reqErr.HTTPStatusCode, string(reqErr.Body), err)
	}
	return err
}

// --- Google Gemini ---

type GeminiBackend struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

func NewGeminiBackend(apiKey, baseURL string, timeout time.Duration) *GeminiBackend {
	return &GeminiBackend{apiKey: apiKey, baseURL: baseURL, timeout: timeout}
}

func (b *GeminiBackend) Name() string { return ProviderGemini }

func (b *GeminiBackend) newClient(ctx context.Context) (*genai.Client, error) {
	timeout := b.timeout
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  b.apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: b.baseURL,
			Timeout: &timeout,
		},
	})
	if err != nil {
		return nil, &GatewayError{Kind: KindNoCredentials, Provider: ProviderGemini, Err: err}
	}
	return client, nil
}

func (b *GeminiBackend) Converse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	client, err := b.newClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.GenerateContent(ctx, req.ModelID, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		TopP:            genai.Ptr(float32(req.TopP)),
		MaxOutputTokens: int32(req.MaxTokens),
	})
	if err != nil {
		return nil, geminiError(err, req.ModelID)
	}
	return &ChatResponse{Text: resp.Text()}, nil
}

func geminiError(err error, modelID string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return httpStatusError(ProviderGemini, modelID, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return httpStatusError(ProviderGemini, modelID, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return err
}

// --- Ollama ---

const defaultOllamaURL = "http://localhost:11434"

type OllamaBackend struct {
	client *api.Client
}

func NewOllamaBackend(baseURL string, timeout time.Duration) (*OllamaBackend, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	return &OllamaBackend{client: api.NewClient(u, &http.Client{Timeout: timeout})}, nil
}

func (b *OllamaBackend) Name() string { return ProviderOllama }

func (b *OllamaBackend) Converse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var content strings.Builder
	err := b.client.Chat(ctx, &api.ChatRequest{
		Model: req.ModelID,
		Messages: []api.Message{
			{Role: "user", Content: req.Prompt},
		},
		Options: map[string]interface{}{
			"temperature": req.Temperature,
			"top_p":       req.TopP,
			"num_predict": req.MaxTokens,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, ollamaError(err, req.ModelID)
	}
	return &ChatResponse{Text: content.String()}, nil
}

func (b *OllamaBackend) ListModels(ctx context.Context) ([]models.ModelSummary, error) {
	resp, err := b.client.List(ctx)
	if err != nil {
		return nil, ollamaError(err, "")
	}
	list := make([]models.ModelSummary, 0, len(resp.Models))
	for _, m := range resp.Models {
		list = append(list, models.ModelSummary{ID: m.Model, Name: m.Name, Provider: "Ollama"})
	}
	return list, nil
}

func ollamaError(err error, modelID string) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return httpStatusError(ProviderOllama, modelID, statusErr.StatusCode, statusErr.ErrorMessage, err)
	}
	return err
}
