package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies a failure class; the values double as guidance keys.
type ErrorKind string

const (
	KindNoCredentials           ErrorKind = "no_credentials"
	KindInvalidProfile          ErrorKind = "invalid_profile"
	KindAccessDenied            ErrorKind = "access_denied"
	KindInsufficientPermissions ErrorKind = "insufficient_permissions"
	KindRateLimited             ErrorKind = "rate_limit"
	KindServiceUnavailable      ErrorKind = "service_unavailable"
	KindInvalidRequest          ErrorKind = "invalid_request"
	KindModelNotFound           ErrorKind = "model_not_found"
	KindNetworkTimeout          ErrorKind = "timeout_error"
	KindNetworkError            ErrorKind = "network_error"
	KindMalformedResponse       ErrorKind = "malformed_response"
	KindEmptyResponse           ErrorKind = "empty_response"
	KindProviderError           ErrorKind = "provider_error"
	KindInvalidCategory         ErrorKind = "invalid_category"
	KindStorage                 ErrorKind = "feedback_storage_error"
	KindInvalidRating           ErrorKind = "invalid_rating"
	KindCancelled               ErrorKind = "user_cancelled"
	KindGeneral                 ErrorKind = "general_error"
)

// Process exit codes.
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitInvalidArguments   = 2
	ExitCredentialsError   = 3
	ExitAccessDenied       = 4
	ExitNetworkError       = 5
	ExitServiceUnavailable = 6
	ExitRateLimited        = 7
	ExitUserCancelled      = 130
)

// GatewayError is returned by AIService.Complete and the LLM backends.
type GatewayError struct {
	Kind     ErrorKind
	Provider string
	ModelID  string
	Profile  string
	Detail   string
	Timeout  time.Duration
	Err      error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindNoCredentials:
		if e.isAWS() {
			return "AWS credentials not found."
		}
		return fmt.Sprintf("%s credentials not found.", providerLabel(e.Provider))
	case KindInvalidProfile:
		return fmt.Sprintf("AWS profile '%s' not found.", profileOrDefault(e.Profile))
	case KindAccessDenied:
		if e.isAWS() {
			return fmt.Sprintf("Access denied to Bedrock model '%s'.", e.ModelID)
		}
		return fmt.Sprintf("Access denied to %s model '%s'.", providerLabel(e.Provider), e.ModelID)
	case KindInsufficientPermissions:
		return fmt.Sprintf("Insufficient permissions for %s operations.", providerLabel(e.Provider))
	case KindRateLimited:
		return fmt.Sprintf("Rate limit exceeded for %s API.", providerLabel(e.Provider))
	case KindServiceUnavailable:
		return fmt.Sprintf("%s service is currently unavailable.", providerLabel(e.Provider))
	case KindInvalidRequest:
		return fmt.Sprintf("Invalid request: %s", e.Detail)
	case KindModelNotFound:
		if e.isAWS() {
			return fmt.Sprintf("Bedrock model '%s' not found or not available.", e.ModelID)
		}
		return fmt.Sprintf("Model '%s' not found or not available.", e.ModelID)
	case KindNetworkTimeout:
		return fmt.Sprintf("Request timed out after %d seconds.", int(e.Timeout.Seconds()))
	case KindNetworkError:
		return "Network connection error occurred."
	case KindMalformedResponse:
		msg := fmt.Sprintf("Invalid response format from %s API", providerLabel(e.Provider))
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		return msg
	case KindEmptyResponse:
		return "The AI model returned an empty response."
	}
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", providerLabel(e.Provider), e.Err)
	}
	return fmt.Sprintf("%s API error", providerLabel(e.Provider))
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) isAWS() bool {
	return e.Provider == "" || e.Provider == ProviderBedrock
}

// IsKind reports whether err carries a GatewayError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Kind == kind
}

// InvalidCategoryError is a user input error; it never reaches a backend.
type InvalidCategoryError struct {
	Category string
	Valid    []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("Invalid category '%s'. Available categories: %s", e.Category, strings.Join(e.Valid, ", "))
}

// StorageError wraps an I/O failure of the feedback file.
type StorageError struct {
	Op   string // read, write, export, clear
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("feedback storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RatingError reports rating input outside the accepted range.
type RatingError struct {
	Input string
}

func (e *RatingError) Error() string {
	return fmt.Sprintf("Invalid rating '%s'. Rating must be between 1 and 5.", e.Input)
}

func profileOrDefault(p string) string {
	if p == "" {
		return "default"
	}
	return p
}

func providerLabel(p string) string {
	switch p {
	case "", ProviderBedrock:
		return "AWS Bedrock"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAzure:
		return "Azure OpenAI"
	case ProviderGemini:
		return "Gemini"
	case ProviderOllama:
		return "Ollama"
	}
	return p
}
