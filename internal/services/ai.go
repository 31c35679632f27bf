package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/huangang/jokecli/internal/config"
	"github.com/huangang/jokecli/internal/models"
	"github.com/huangang/jokecli/pkg/logger"
)

const (
	ProviderBedrock   = "bedrock"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// Providers lists the accepted ai.provider values.
var Providers = []string{ProviderBedrock, ProviderAnthropic, ProviderOpenAI, ProviderAzure, ProviderGemini, ProviderOllama}

// Probe parameters used by VerifyCredentials.
const (
	probePrompt      = "test"
	probeMaxTokens   = 1
	probeTemperature = 0.1
	probeTopP        = 0.9
)

type ChatRequest struct {
	ModelID     string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

type ChatResponse struct {
	Text string
}

// LLMBackend is a text-completion provider. Every backend speaks the chat shape.
type LLMBackend interface {
	Name() string
	Converse(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// LegacyInvoker is implemented by backends that accept raw completion bodies.
type LegacyInvoker interface {
	InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

type ModelLister interface {
	ListModels(ctx context.Context) ([]models.ModelSummary, error)
}

type CredentialChecker interface {
	CheckCredentials(ctx context.Context) error
}

type AIServiceOptions struct {
	Timeout           time.Duration
	VerifyCredentials bool
	Profile           string
}

// AIService is the single entry point for model calls. It picks the request
// shape, bounds the call with a timeout and translates failures into
// *GatewayError. It makes exactly one attempt per call.
type AIService struct {
	backend LLMBackend
	opts    AIServiceOptions

	mu       sync.Mutex
	verified bool
}

func NewAIService(backend LLMBackend, opts AIServiceOptions) *AIService {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultTimeout * time.Second
	}
	return &AIService{backend: backend, opts: opts}
}

// NewBackend builds the backend selected by ai.provider.
func NewBackend(cfg *config.Config) (LLMBackend, error) {
	timeout := cfg.Timeout()
	switch strings.ToLower(cfg.AI.Provider) {
	case "", ProviderBedrock:
		return NewBedrockBackend(BedrockOptions{
			Profile: cfg.AWS.Profile,
			Region:  cfg.AWS.Region,
			Timeout: timeout,
		}), nil
	case ProviderAnthropic:
		return NewAnthropicBackend(cfg.AI.APIKey, cfg.AI.BaseURL, timeout), nil
	case ProviderOpenAI:
		return NewOpenAIBackend(cfg.AI.APIKey, cfg.AI.BaseURL, timeout), nil
	case ProviderAzure:
		if cfg.AI.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires ai.base_url (https://{resource}.openai.azure.com)")
		}
		return NewAzureBackend(cfg.AI.APIKey, cfg.AI.BaseURL, timeout), nil
	case ProviderGemini:
		return NewGeminiBackend(cfg.AI.APIKey, cfg.AI.BaseURL, timeout), nil
	case ProviderOllama:
		return NewOllamaBackend(cfg.AI.BaseURL, timeout)
	default:
		return nil, fmt.Errorf("unknown provider %q (available: %s)", cfg.AI.Provider, strings.Join(Providers, ", "))
	}
}

func (s *AIService) Provider() string {
	return s.backend.Name()
}

// ShapeFor returns the request shape used for modelID on this backend.
func (s *AIService) ShapeFor(modelID string) ProviderShape {
	if _, ok := s.backend.(LegacyInvoker); !ok {
		return ShapeChat
	}
	return ClassifyModel(modelID)
}

// Complete sends prompt to the configured model and returns the trimmed text.
func (s *AIService) Complete(ctx context.Context, prompt string, cfg models.ModelRequestConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", s.newError(KindInvalidRequest, cfg.ModelID, err.Error(), err)
	}

	if s.opts.VerifyCredentials {
		if err := s.VerifyCredentials(ctx, cfg.ModelID); err != nil {
			return "", err
		}
	}

	text, err := s.call(ctx, prompt, cfg)
	if err != nil {
		logger.Debug().Err(err).Str("provider", s.backend.Name()).Str("model", cfg.ModelID).Msg("[AI] call failed")
		return "", err
	}

	logger.Debugf("[AI] %s response length: %d chars", s.backend.Name(), len(text))
	return text, nil
}

// VerifyCredentials runs a one-token probe once per service so that
// authentication problems surface before the real request. Only credential,
// profile and access failures stop the run; anything else is left for the real
// call to report.
func (s *AIService) VerifyCredentials(ctx context.Context, modelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verified {
		return nil
	}

	if checker, ok := s.backend.(CredentialChecker); ok {
		if err := checker.CheckCredentials(ctx); err != nil {
			if fatal := s.fatalProbeError(err, modelID); fatal != nil {
				return fatal
			}
		}
	}

	probe := models.ModelRequestConfig{
		ModelID:     modelID,
		MaxTokens:   probeMaxTokens,
		Temperature: probeTemperature,
		TopP:        probeTopP,
	}
	if _, err := s.call(ctx, probePrompt, probe); err != nil {
		if fatal := s.fatalProbeError(err, modelID); fatal != nil {
			return fatal
		}
		logger.Debugf("[AI] Credential probe returned %v, continuing", err)
	}

	s.verified = true
	return nil
}

func (s *AIService) fatalProbeError(err error, modelID string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	err = s.classify(err, modelID)
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		switch gwErr.Kind {
		case KindNoCredentials, KindAccessDenied, KindInvalidProfile:
			return gwErr
		}
	}
	return nil
}

// ListModels returns the models the backend can serve, when it supports listing.
func (s *AIService) ListModels(ctx context.Context) ([]models.ModelSummary, error) {
	lister, ok := s.backend.(ModelLister)
	if !ok {
		return nil, s.newError(KindProviderError, "",
			fmt.Sprintf("provider %s does not support model listing", s.backend.Name()), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	list, err := lister.ListModels(ctx)
	if err != nil {
		err = s.classify(err, "")
		if IsKind(err, KindAccessDenied) {
			return nil, s.newError(KindInsufficientPermissions, "", "", err)
		}
		return nil, err
	}
	return list, nil
}

func (s *AIService) call(ctx context.Context, prompt string, cfg models.ModelRequestConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	shape := s.ShapeFor(cfg.ModelID)
	logger.Debug().
		Str("provider", s.backend.Name()).
		Str("model", cfg.ModelID).
		Stringer("shape", shape).
		Msg("[AI] Sending request")

	var (
		text string
		err  error
	)
	if shape == ShapeChat {
		text, err = s.converse(ctx, prompt, cfg)
	} else {
		text, err = s.invokeLegacy(ctx, shape, prompt, cfg)
	}
	if err != nil {
		return "", s.classify(err, cfg.ModelID)
	}
	return text, nil
}

func (s *AIService) converse(ctx context.Context, prompt string, cfg models.ModelRequestConfig) (string, error) {
	resp, err := s.backend.Converse(ctx, &ChatRequest{
		ModelID:     cfg.ModelID,
		Prompt:      prompt,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	})
	if err != nil {
		return "", err
	}
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text)
	}
	if text == "" {
		return "", &GatewayError{Kind: KindEmptyResponse}
	}
	return text, nil
}

func (s *AIService) invokeLegacy(ctx context.Context, shape ProviderShape, prompt string, cfg models.ModelRequestConfig) (string, error) {
	invoker := s.backend.(LegacyInvoker)

	body, err := BuildLegacyRequest(shape, prompt, cfg)
	if err != nil {
		return "", err
	}
	raw, err := invoker.InvokeModel(ctx, cfg.ModelID, body)
	if err != nil {
		return "", err
	}
	return ParseLegacyResponse(shape, raw)
}

// classify turns any call failure into a *GatewayError. Cancellation by the
// caller is returned unchanged.
func (s *AIService) classify(err error, modelID string) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Provider == "" {
			gwErr.Provider = s.backend.Name()
		}
		if gwErr.ModelID == "" {
			gwErr.ModelID = modelID
		}
		if gwErr.Profile == "" {
			gwErr.Profile = s.opts.Profile
		}
		if gwErr.Kind == KindNetworkTimeout && gwErr.Timeout == 0 {
			gwErr.Timeout = s.opts.Timeout
		}
		return gwErr
	}

	if isTimeout(err) {
		return &GatewayError{Kind: KindNetworkTimeout, Provider: s.backend.Name(), ModelID: modelID, Timeout: s.opts.Timeout, Err: err}
	}
	if isNetworkError(err) {
		return s.newError(KindNetworkError, modelID, "", err)
	}
	return s.newError(KindProviderError, modelID, "", err)
}

func (s *AIService) newError(kind ErrorKind, modelID, detail string, err error) *GatewayError {
	return &GatewayError{
		Kind:     kind,
		Provider: s.backend.Name(),
		ModelID:  modelID,
		Profile:  s.opts.Profile,
		Detail:   detail,
		Err:      err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
