package models

import (
	"time"

	"github.com/google/uuid"
)

// UnknownCategory labels error responses produced before a category was resolved.
const UnknownCategory = "unknown"

// JokeResponse is the outcome of one generation attempt.
// Text is set iff Success; ErrorMessage is set iff !Success.
type JokeResponse struct {
	ID           string    `json:"id"`
	Text         string    `json:"text,omitempty"`
	Category     string    `json:"category"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Cause        error     `json:"-"` // original error, used to pick guidance and exit code
}

func NewJokeSuccess(text, category string) *JokeResponse {
	return &JokeResponse{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  category,
		Success:   true,
		CreatedAt: time.Now(),
	}
}

func NewJokeError(message, category string, cause error) *JokeResponse {
	if category == "" {
		category = UnknownCategory
	}
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &JokeResponse{
		ID:           uuid.NewString(),
		Category:     category,
		CreatedAt:    time.Now(),
		ErrorMessage: message,
		Cause:        cause,
	}
}
