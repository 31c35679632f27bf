package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// TimestampLayout is the on-disk timestamp form: local time, microseconds, no zone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// naive ISO-8601 layouts written by older versions of the tool (no zone).
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// FeedbackEntry is one persisted rating event.
type FeedbackEntry struct {
	JokeID    string    `json:"joke_id"`
	JokeText  string    `json:"joke_text"`
	Category  string    `json:"category"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"-"`
	Comment   *string   `json:"user_comment"`
}

func NewFeedbackEntry(jokeID, jokeText, category string, rating int, comment *string) (*FeedbackEntry, error) {
	e := &FeedbackEntry{
		JokeID:    jokeID,
		JokeText:  jokeText,
		Category:  category,
		Rating:    rating,
		Timestamp: time.Now(),
		Comment:   normalizeComment(comment),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	c := strings.TrimSpace(*comment)
	if c == "" {
		return nil
	}
	return &c
}

func (e *FeedbackEntry) Validate() error {
	if e.Rating < MinRating || e.Rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinRating, MaxRating, e.Rating)
	}
	if _, err := uuid.Parse(e.JokeID); err != nil {
		return fmt.Errorf("invalid joke id %q: %w", e.JokeID, err)
	}
	if e.Category == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

type feedbackEntryJSON struct {
	JokeID    string  `json:"joke_id"`
	JokeText  string  `json:"joke_text"`
	Category  string  `json:"category"`
	Rating    int     `json:"rating"`
	Timestamp string  `json:"timestamp"`
	Comment   *string `json:"user_comment"`
}

func (e FeedbackEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedbackEntryJSON{
		JokeID:    e.JokeID,
		JokeText:  e.JokeText,
		Category:  e.Category,
		Rating:    e.Rating,
		Timestamp: e.Timestamp.Local().Format(TimestampLayout),
		Comment:   e.Comment,
	})
}

func (e *FeedbackEntry) UnmarshalJSON(data []byte) error {
	var raw feedbackEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	*e = FeedbackEntry{
		JokeID:    raw.JokeID,
		JokeText:  raw.JokeText,
		Category:  raw.Category,
		Rating:    raw.Rating,
		Timestamp: ts,
		Comment:   raw.Comment,
	}
	return nil
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO-8601 forms; zone-less
// values are read as local time.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
