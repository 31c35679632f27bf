package models

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJokeSuccess(t *testing.T) {
	r := NewJokeSuccess("Why did the chicken cross the road?", "general")

	assert.True(t, r.Success)
	assert.Equal(t, "general", r.Category)
	assert.Empty(t, r.ErrorMessage)
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestNewJokeError(t *testing.T) {
	cause := errors.New("boom")

	r := NewJokeError("", "", cause)
	assert.False(t, r.Success)
	assert.Empty(t, r.Text)
	assert.Equal(t, UnknownCategory, r.Category)
	assert.Equal(t, "boom", r.ErrorMessage)
	assert.Same(t, cause, r.Cause)

	r = NewJokeError("custom", "puns", nil)
	assert.Equal(t, "puns", r.Category)
	assert.Equal(t, "custom", r.ErrorMessage)
}

func TestNewModelRequestConfig(t *testing.T) {
	tests := []struct {
		name        string
		model       string
		maxTokens   int
		temperature float64
		topP        float64
		wantErr     bool
	}{
		{"valid", "amazon.titan-text-express-v1", 200, 0.7, 0.9, false},
		{"bounds inclusive", "m", MaxOutputTokens, 1.0, 0.0, false},
		{"empty model", "  ", 200, 0.7, 0.9, true},
		{"zero tokens", "m", 0, 0.7, 0.9, true},
		{"too many tokens", "m", MaxOutputTokens + 1, 0.7, 0.9, true},
		{"negative temperature", "m", 100, -0.1, 0.9, true},
		{"temperature above one", "m", 100, 1.1, 0.9, true},
		{"top_p above one", "m", 100, 0.5, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModelRequestConfig(tt.model, tt.maxTokens, tt.temperature, tt.topP)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFeedbackEntry_Validation(t *testing.T) {
	id := uuid.NewString()

	_, err := NewFeedbackEntry(id, "joke", "general", 0, nil)
	assert.Error(t, err)
	_, err = NewFeedbackEntry(id, "joke", "general", 6, nil)
	assert.Error(t, err)
	_, err = NewFeedbackEntry("not-a-uuid", "joke", "general", 3, nil)
	assert.Error(t, err)

	blank := "   "
	e, err := NewFeedbackEntry(id, "joke", "general", 5, &blank)
	require.NoError(t, err)
	assert.Nil(t, e.Comment)
}

func TestFeedbackEntry_JSON(t *testing.T) {
	comment := "funny"
	e, err := NewFeedbackEntry(uuid.NewString(), "joke", "puns", 4, &comment)
	require.NoError(t, err)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "puns", raw["category"])
	assert.Equal(t, "funny", raw["user_comment"])
	assert.Contains(t, raw, "timestamp")

	var back FeedbackEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, e.JokeID, back.JokeID)
	assert.Equal(t, 4, back.Rating)
	assert.True(t, e.Timestamp.Truncate(time.Second).Equal(back.Timestamp.Truncate(time.Second)))
}

func TestFeedbackEntry_TimestampFormat(t *testing.T) {
	e, err := NewFeedbackEntry(uuid.NewString(), "joke", "general", 5, nil)
	require.NoError(t, err)
	e.Timestamp = time.Date(2026, 10, 17, 1, 20, 0, 123456789, time.UTC)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	ts, ok := raw["timestamp"].(string)
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}$`), ts)
	assert.NotContains(t, ts, "Z")
	assert.Equal(t, e.Timestamp.Local().Format(TimestampLayout), ts)

	var back FeedbackEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, e.Timestamp.Truncate(time.Microsecond).Equal(back.Timestamp))
}

func TestFeedbackEntry_NullComment(t *testing.T) {
	e, err := NewFeedbackEntry(uuid.NewString(), "joke", "clean", 3, nil)
	require.NoError(t, err)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_comment":null`)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-05-01T12:30:45Z", false},
		{"2024-05-01T12:30:45.123456+02:00", false},
		{"2024-05-01T12:30:45.123456", false},
		{"2024-05-01T12:30:45", false},
		{"yesterday", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
}
