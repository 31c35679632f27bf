package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/huangang/jokecli/internal/models"
	"github.com/huangang/jokecli/pkg/logger"
	"github.com/montanaflynn/stats"
)

const (
	FeedbackFileName   = "joke_feedback.json"
	exportNameLayout   = "20060102_150405"
	statisticsDecimals = 2
)

type feedbackDocument struct {
	Entries []*models.FeedbackEntry    `json:"feedback_entries"`
	Stats   models.AggregateStatistics `json:"stats"`
}

// entries are decoded one at a time so a bad record does not spoil the file
type rawFeedbackDocument struct {
	Entries []json.RawMessage `json:"feedback_entries"`
}

type FeedbackStoreOptions struct {
	// Strict reports an unparseable file as a StorageError instead of
	// treating it as empty.
	Strict bool
}

// FeedbackStore persists ratings in a single JSON document. Every mutation
// rewrites the whole file through a temp file and rename, so a failed write
// leaves the previous contents intact. There is no cross-process lock:
// concurrent writers race and the last rename wins.
type FeedbackStore struct {
	dir    string
	path   string
	strict bool
	now    func() time.Time
}

func NewFeedbackStore(dir string, opts FeedbackStoreOptions) *FeedbackStore {
	return &FeedbackStore{
		dir:    dir,
		path:   filepath.Join(dir, FeedbackFileName),
		strict: opts.Strict,
		now:    time.Now,
	}
}

func (s *FeedbackStore) Path() string { return s.path }

// Append adds one entry and recomputes the statistics block.
func (s *FeedbackStore) Append(entry *models.FeedbackEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid feedback entry: %w", err)
	}

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	if err := s.writeDocument(s.path, entries); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	logger.Debugf("[Feedback] Saved feedback for joke %s (rating %d)", entry.JokeID, entry.Rating)
	return nil
}

// AllEntries returns the valid entries in insertion order.
func (s *FeedbackStore) AllEntries() ([]*models.FeedbackEntry, error) {
	return s.load()
}

func (s *FeedbackStore) EntriesForCategory(category string) ([]*models.FeedbackEntry, error) {
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []*models.FeedbackEntry
	for _, e := range entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

// Statistics is always recomputed from the entries, never read from the file.
func (s *FeedbackStore) Statistics() (models.AggregateStatistics, error) {
	entries, err := s.load()
	if err != nil {
		return models.EmptyStatistics(), err
	}
	return ComputeStatistics(entries), nil
}

// ExportTo writes a snapshot to path, or to a timestamped file next to the
// store when path is empty, and returns the path written.
func (s *FeedbackStore) ExportTo(path string) (string, error) {
	if path == "" {
		path = filepath.Join(s.dir, fmt.Sprintf("feedback_export_%s.json", s.now().Format(exportNameLayout)))
	}

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	if err := s.writeDocument(path, entries); err != nil {
		return "", &StorageError{Op: "export", Path: path, Err: err}
	}
	logger.Infof("[Feedback] Exported %d entries to %s", len(entries), path)
	return path, nil
}

// ClearAll resets the store to an empty document.
func (s *FeedbackStore) ClearAll() error {
	if err := s.writeDocument(s.path, nil); err != nil {
		return &StorageError{Op: "clear", Path: s.path, Err: err}
	}
	logger.Infof("[Feedback] Cleared all feedback in %s", s.path)
	return nil
}

func (s *FeedbackStore) load() ([]*models.FeedbackEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var doc rawFeedbackDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		if s.strict {
			return nil, &StorageError{Op: "read", Path: s.path, Err: fmt.Errorf("corrupt feedback file: %w", err)}
		}
		logger.Warnf("[Feedback] %s is not valid feedback JSON, treating it as empty: %v", s.path, err)
		return nil, nil
	}

	entries := make([]*models.FeedbackEntry, 0, len(doc.Entries))
	for i, raw := range doc.Entries {
		var e models.FeedbackEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			logger.Warn().Err(err).Int("index", i).Str("path", s.path).Msg("[Feedback] Skipping unreadable entry")
			continue
		}
		if err := e.Validate(); err != nil {
			logger.Warn().Err(err).Int("index", i).Str("path", s.path).Msg("[Feedback] Skipping invalid entry")
			continue
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func (s *FeedbackStore) writeDocument(path string, entries []*models.FeedbackEntry) error {
	if entries == nil {
		entries = []*models.FeedbackEntry{}
	}
	data, err := json.MarshalIndent(feedbackDocument{
		Entries: entries,
		Stats:   ComputeStatistics(entries),
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	err = os.Rename(tmpName, path)
	return err
}

// ComputeStatistics derives totals and per-category averages, rounded to two
// decimals.
func ComputeStatistics(entries []*models.FeedbackEntry) models.AggregateStatistics {
	result := models.EmptyStatistics()
	if len(entries) == 0 {
		return result
	}

	all := make(stats.Float64Data, 0, len(entries))
	byCategory := make(map[string]stats.Float64Data)
	for _, e := range entries {
		all = append(all, float64(e.Rating))
		byCategory[e.Category] = append(byCategory[e.Category], float64(e.Rating))
	}

	result.TotalJokes = len(entries)
	result.AverageRating = roundedMean(all)
	for category, ratings := range byCategory {
		result.CategoryStats[category] = models.CategoryStat{
			Count:     len(ratings),
			AvgRating: roundedMean(ratings),
		}
	}
	return result
}

// RatingDistribution counts entries per rating value 1..5.
func RatingDistribution(entries []*models.FeedbackEntry) map[int]int {
	dist := make(map[int]int, models.MaxRating)
	for r := models.MinRating; r <= models.MaxRating; r++ {
		dist[r] = 0
	}
	for _, e := range entries {
		if e.Rating >= models.MinRating && e.Rating <= models.MaxRating {
			dist[e.Rating]++
		}
	}
	return dist
}

func roundedMean(data stats.Float64Data) float64 {
	mean, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	rounded, err := stats.Round(mean, statisticsDecimals)
	if err != nil {
		return mean
	}
	return rounded
}
