package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangang/jokecli/internal/models"
	"github.com/huangang/jokecli/pkg/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const jokeBanner = "🎭 Joke of the Day 🎭"

// Completer is the slice of AIService the joke flow needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, cfg models.ModelRequestConfig) (string, error)
}

// GenerateOptions overrides the configured request parameters for one call.
// Zero values keep the defaults.
type GenerateOptions struct {
	ModelID     string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
}

type JokeService struct {
	catalog  *PromptCatalog
	gateway  Completer
	store    *FeedbackStore
	defaults models.ModelRequestConfig
}

func NewJokeService(gateway Completer, store *FeedbackStore, defaults models.ModelRequestConfig) *JokeService {
	return &JokeService{
		catalog:  NewPromptCatalog(),
		gateway:  gateway,
		store:    store,
		defaults: defaults,
	}
}

func (s *JokeService) Categories() []string {
	return s.catalog.Categories()
}

// Generate produces one joke. It never returns an error: every failure is
// folded into a JokeResponse with Success false, and Cause keeps the original
// error for exit-code mapping. An empty category picks one at random.
func (s *JokeService) Generate(ctx context.Context, category string, opts GenerateOptions) (resp *models.JokeResponse) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Joke] Unexpected panic generating joke: %v", r)
			err := fmt.Errorf("%v", r)
			resp = models.NewJokeError("Unexpected error: "+err.Error(), category, err)
		}
	}()

	if category == "" {
		category = s.catalog.RandomCategory()
	}
	prompt, err := s.catalog.PromptFor(category)
	if err != nil {
		return models.NewJokeError(err.Error(), category, err)
	}

	cfg := s.requestConfig(opts)
	logger.Infof("[Joke] Generating joke for category: %s, model: %s", category, cfg.ModelID)

	text, err := s.gateway.Complete(ctx, prompt, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return models.NewJokeError("Operation cancelled by user.", category, err)
		}
		logger.Errorf("[Joke] Generation failed: %v", err)
		return models.NewJokeError(err.Error(), category, err)
	}

	cleaned := CleanJokeText(text)
	if cleaned == "" {
		emptyErr := &GatewayError{Kind: KindEmptyResponse, ModelID: cfg.ModelID}
		return models.NewJokeError(emptyErr.Error(), category, emptyErr)
	}

	logger.Infof("[Joke] Generated joke of length: %d", len(cleaned))
	return models.NewJokeSuccess(cleaned, category)
}

func (s *JokeService) requestConfig(opts GenerateOptions) models.ModelRequestConfig {
	cfg := s.defaults
	if id := strings.TrimSpace(opts.ModelID); id != "" {
		cfg.ModelID = id
	}
	if opts.MaxTokens > 0 {
		cfg.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		cfg.Temperature = *opts.Temperature
	}
	if opts.TopP != nil {
		cfg.TopP = *opts.TopP
	}
	return cfg
}

// RecordFeedback stores a rating for a successful joke. It reports false,
// without touching storage for failed responses, when nothing was saved.
func (s *JokeService) RecordFeedback(resp *models.JokeResponse, rating int, comment *string) bool {
	if resp == nil || !resp.Success {
		logger.Warnf("[Joke] Refusing feedback for a failed joke response")
		return false
	}

	entry, err := models.NewFeedbackEntry(resp.ID, resp.Text, resp.Category, rating, comment)
	if err != nil {
		logger.Errorf("[Joke] Invalid feedback for joke %s: %v", resp.ID, err)
		return false
	}
	if err := s.store.Append(entry); err != nil {
		logger.Errorf("[Joke] Failed to save feedback: %v", err)
		return false
	}

	logger.Infof("[Joke] Saved feedback for joke %s: rating=%d", resp.ID, rating)
	return true
}

// StatisticsReport renders the feedback summary. Storage failures are
// returned, since there is nothing useful to show without the data.
func (s *JokeService) StatisticsReport() (string, error) {
	entries, err := s.store.AllEntries()
	if err != nil {
		return "", err
	}
	return FormatStatistics(ComputeStatistics(entries), RatingDistribution(entries)), nil
}

// FormatJoke renders a response for the terminal.
func FormatJoke(resp *models.JokeResponse) string {
	if !resp.Success {
		return "Error: " + resp.ErrorMessage
	}
	return strings.Join([]string{
		jokeBanner,
		"",
		resp.Text,
		"",
		"Category: " + titleCase(resp.Category),
	}, "\n")
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
