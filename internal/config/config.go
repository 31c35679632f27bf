package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangang/jokecli/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModelID     = "us.anthropic.claude-sonnet-4-20250514-v1:0"
	DefaultAWSRegion   = "us-east-1"
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultTimeout     = 10

	AppDirName     = ".joke_cli"
	ConfigFileName = "config.yaml"
)

// Fallback models for providers whose ids differ from Bedrock's.
// Azure uses deployment names, so it has none.
var providerDefaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-2.5-flash",
	"ollama":    "llama3",
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	AWS      AWSConfig      `yaml:"aws"`
	Feedback FeedbackConfig `yaml:"feedback"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Debug bool   `yaml:"debug"`
}

type AIConfig struct {
	Provider          string  `yaml:"provider"` // bedrock, anthropic, openai, azure, gemini, ollama
	Model             string  `yaml:"model"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	VerifyCredentials bool    `yaml:"verify_credentials"`
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
}

type AWSConfig struct {
	Profile string `yaml:"profile"`
	Region  string `yaml:"region"`
}

type FeedbackConfig struct {
	Dir    string `yaml:"dir"`
	Strict bool   `yaml:"strict"` // surface corrupt storage instead of starting fresh
}

// AppDir returns the per-user application directory.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(home, AppDirName)
}

// DefaultPath returns where the config file lives when no path is given.
func DefaultPath() string {
	if p := os.Getenv("JOKE_CLI_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(AppDir(), ConfigFileName)
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath()
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		// Unmarshal over the defaults so a partial file keeps the rest.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	cfg.ApplyProviderDefaults()
	return cfg, nil
}

// ApplyProviderDefaults swaps the Bedrock default model for the provider's own
// default when a non-Bedrock provider is selected without an explicit model.
func (c *Config) ApplyProviderDefaults() {
	if c.AI.Model != "" && c.AI.Model != DefaultModelID {
		return
	}
	if m, ok := providerDefaultModels[strings.ToLower(c.AI.Provider)]; ok {
		c.AI.Model = m
	} else if c.AI.Model == "" {
		c.AI.Model = DefaultModelID
	}
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "warn",
		},
		AI: AIConfig{
			Provider:          "bedrock",
			Model:             DefaultModelID,
			MaxTokens:         DefaultMaxTokens,
			Temperature:       DefaultTemperature,
			TopP:              DefaultTopP,
			TimeoutSeconds:    DefaultTimeout,
			VerifyCredentials: true,
		},
		AWS: AWSConfig{
			Region: DefaultAWSRegion,
		},
		Feedback: FeedbackConfig{
			Dir: AppDir(),
		},
	}
}

func (c *Config) overrideFromEnv() {
	if profile := os.Getenv("AWS_PROFILE"); profile != "" {
		c.AWS.Profile = profile
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		c.AWS.Region = region
	}
	if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		c.AWS.Region = region
	}
	if isTruthy(os.Getenv("JOKE_CLI_DEBUG")) {
		c.Log.Debug = true
	}
	if level := os.Getenv("JOKE_CLI_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if provider := os.Getenv("JOKE_CLI_PROVIDER"); provider != "" {
		c.AI.Provider = provider
	}
	if model := os.Getenv("JOKE_CLI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if baseURL := os.Getenv("JOKE_CLI_BASE_URL"); baseURL != "" {
		c.AI.BaseURL = baseURL
	}
	if apiKey := os.Getenv("JOKE_CLI_API_KEY"); apiKey != "" {
		c.AI.APIKey = apiKey
	}
	if dir := os.Getenv("JOKE_CLI_FEEDBACK_DIR"); dir != "" {
		c.Feedback.Dir = dir
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// LogLevel resolves the effective level; debug mode wins over the configured level.
func (c *Config) LogLevel() string {
	if c.Log.Debug {
		return "debug"
	}
	if c.Log.Level == "" {
		return "warn"
	}
	return c.Log.Level
}

// LogDir is where debug log files are written.
func (c *Config) LogDir() string {
	return filepath.Join(c.Feedback.Dir, "logs")
}

func (c *Config) Timeout() time.Duration {
	if c.AI.TimeoutSeconds <= 0 {
		return DefaultTimeout * time.Second
	}
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// RequestConfig builds the validated generation parameters from the AI section.
func (c *Config) RequestConfig() (models.ModelRequestConfig, error) {
	return models.NewModelRequestConfig(c.AI.Model, c.AI.MaxTokens, c.AI.Temperature, c.AI.TopP)
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = DefaultPath()
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
