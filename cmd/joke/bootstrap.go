package main

import (
	"fmt"

	"github.com/huangang/jokecli/internal/config"
	"github.com/huangang/jokecli/internal/models"
	"github.com/huangang/jokecli/internal/services"
	"github.com/huangang/jokecli/pkg/logger"
	"github.com/huangang/jokecli/pkg/response"
)

// app holds the per-run dependencies. Nothing here outlives one invocation.
type app struct {
	streams
	cfg        *config.Config
	configPath string
	store      *services.FeedbackStore
}

// bootstrap loads configuration, applies flag overrides, initializes logging
// and opens the feedback store. Gateway construction is deferred to
// aiService so offline commands never touch provider settings.
func bootstrap(f *RootFlags, s streams) (*app, error) {
	path := f.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, response.New(services.ExitGeneralError,
			fmt.Sprintf("Failed to load configuration: %v", err),
			"Check the YAML syntax in "+path,
			"Run 'joke config init --force' to write a fresh default file.")
	}
	applyFlagOverrides(cfg, f)

	logger.Init(logger.Options{
		Level:  cfg.LogLevel(),
		Output: s.errOut,
		LogDir: cfg.LogDir(),
	})
	logger.Debugf("[Bootstrap] config=%s provider=%s model=%s feedback_dir=%s", path, cfg.AI.Provider, cfg.AI.Model, cfg.Feedback.Dir)

	return &app{
		streams:    s,
		cfg:        cfg,
		configPath: path,
		store:      services.NewFeedbackStore(cfg.Feedback.Dir, services.FeedbackStoreOptions{Strict: cfg.Feedback.Strict}),
	}, nil
}

func applyFlagOverrides(cfg *config.Config, f *RootFlags) {
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.Profile != "" {
		cfg.AWS.Profile = f.Profile
	}
	if f.Region != "" {
		cfg.AWS.Region = f.Region
	}
	if f.Provider != "" {
		cfg.AI.Provider = f.Provider
		cfg.ApplyProviderDefaults()
	}
	if f.Model != "" {
		cfg.AI.Model = f.Model
	}
}

func (a *app) aiService() (*services.AIService, error) {
	backend, err := services.NewBackend(a.cfg)
	if err != nil {
		return nil, response.NewUsageError(err.Error(),
			"Set ai.provider in "+a.configPath+" or pass --provider.")
	}
	return services.NewAIService(backend, services.AIServiceOptions{
		Timeout:           a.cfg.Timeout(),
		VerifyCredentials: a.cfg.AI.VerifyCredentials,
		Profile:           a.cfg.AWS.Profile,
	}), nil
}

func (a *app) jokeService() (*services.JokeService, error) {
	defaults, err := a.cfg.RequestConfig()
	if err != nil {
		return nil, response.NewUsageError(fmt.Sprintf("Invalid model configuration: %v", err),
			"Check the ai section of "+a.configPath)
	}
	gateway, err := a.aiService()
	if err != nil {
		return nil, err
	}
	return services.NewJokeService(gateway, a.store, defaults), nil
}

// reportService serves the read-only statistics paths; it never calls a model.
func (a *app) reportService() *services.JokeService {
	return services.NewJokeService(nil, a.store, models.ModelRequestConfig{})
}
