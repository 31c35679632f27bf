package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangang/jokecli/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	text    string
	err     error
	prompts []string
	configs []models.ModelRequestConfig
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, cfg models.ModelRequestConfig) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, cfg)
	return f.text, f.err
}

type panicCompleter struct{}

func (panicCompleter) Complete(ctx context.Context, prompt string, cfg models.ModelRequestConfig) (string, error) {
	panic("backend exploded")
}

func newJokeService(t *testing.T, gw Completer) (*JokeService, *FeedbackStore) {
	t.Helper()
	store := NewFeedbackStore(t.TempDir(), FeedbackStoreOptions{})
	return NewJokeService(gw, store, requestConfig(t, "us.anthropic.claude-sonnet-4-20250514-v1:0")), store
}

func TestJokeService_GenerateAndRate(t *testing.T) {
	gw := &fakeCompleter{text: "Why did the chicken cross the road?"}
	svc, store := newJokeService(t, gw)

	resp := svc.Generate(context.Background(), "general", GenerateOptions{})
	require.True(t, resp.Success, resp.ErrorMessage)
	assert.Equal(t, "general", resp.Category)
	assert.Equal(t, "Why did the chicken cross the road?", resp.Text)
	assert.NotEmpty(t, resp.ID)

	require.Len(t, gw.prompts, 1)
	assert.Contains(t, gw.prompts[0], "Please provide just the joke text")

	comment := "funny"
	assert.True(t, svc.RecordFeedback(resp, 4, &comment))

	st, err := store.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalJokes)
	assert.Equal(t, 4.0, st.AverageRating)

	entries, err := store.AllEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, resp.ID, entries[0].JokeID)
	assert.Equal(t, "funny", *entries[0].Comment)
}

func TestJokeService_RandomCategory(t *testing.T) {
	gw := &fakeCompleter{text: "A joke"}
	svc, _ := newJokeService(t, gw)
	svc.catalog.pick = func(int) int { return 1 }

	resp := svc.Generate(context.Background(), "", GenerateOptions{})
	require.True(t, resp.Success)
	assert.Equal(t, "programming", resp.Category)
}

func TestJokeService_InvalidCategory(t *testing.T) {
	gw := &fakeCompleter{text: "never used"}
	svc, _ := newJokeService(t, gw)

	resp := svc.Generate(context.Background(), "knock-knock", GenerateOptions{})
	assert.False(t, resp.Success)
	assert.Equal(t, "knock-knock", resp.Category)
	assert.Contains(t, resp.ErrorMessage, "knock-knock")
	for _, c := range svc.Categories() {
		assert.Contains(t, resp.ErrorMessage, c)
	}
	assert.Empty(t, gw.prompts)

	var catErr *InvalidCategoryError
	assert.ErrorAs(t, resp.Cause, &catErr)
}

func TestJokeService_CleansText(t *testing.T) {
	gw := &fakeCompleter{text: "Here's a joke: Why did X?\n\n  Because Y.  \nHope you enjoyed it!"}
	svc, _ := newJokeService(t, gw)

	resp := svc.Generate(context.Background(), "puns", GenerateOptions{})
	require.True(t, resp.Success)
	assert.Equal(t, "Why did X?\nBecause Y.", resp.Text)
}

func TestJokeService_EmptyAfterCleaning(t *testing.T) {
	for _, text := range []string{"   \n  ", "Here's a joke:"} {
		svc, _ := newJokeService(t, &fakeCompleter{text: text})

		resp := svc.Generate(context.Background(), "clean", GenerateOptions{})
		assert.False(t, resp.Success)
		assert.Equal(t, "The AI model returned an empty response.", resp.ErrorMessage)
		assert.True(t, IsKind(resp.Cause, KindEmptyResponse))
	}
}

func TestJokeService_GatewayFailure(t *testing.T) {
	gwErr := &GatewayError{Kind: KindRateLimited, Provider: ProviderBedrock}
	svc, _ := newJokeService(t, &fakeCompleter{err: gwErr})

	resp := svc.Generate(context.Background(), "general", GenerateOptions{})
	assert.False(t, resp.Success)
	assert.Equal(t, gwErr.Error(), resp.ErrorMessage)
	assert.Equal(t, ExitRateLimited, DescribeError(resp.Cause).ExitCode)
}

func TestJokeService_Cancelled(t *testing.T) {
	svc, _ := newJokeService(t, &fakeCompleter{err: context.Canceled})

	resp := svc.Generate(context.Background(), "general", GenerateOptions{})
	assert.False(t, resp.Success)
	assert.Equal(t, "Operation cancelled by user.", resp.ErrorMessage)
	assert.ErrorIs(t, resp.Cause, context.Canceled)
}

func TestJokeService_RecoversPanic(t *testing.T) {
	svc, _ := newJokeService(t, panicCompleter{})

	resp := svc.Generate(context.Background(), "general", GenerateOptions{})
	assert.False(t, resp.Success)
	assert.Equal(t, "Unexpected error: backend exploded", resp.ErrorMessage)
	assert.Equal(t, "general", resp.Category)
}

func TestJokeService_Overrides(t *testing.T) {
	gw := &fakeCompleter{text: "joke"}
	svc, _ := newJokeService(t, gw)

	temp := 0.2
	svc.Generate(context.Background(), "general", GenerateOptions{ModelID: " amazon.titan-text-express-v1 ", MaxTokens: 50, Temperature: &temp})
	svc.Generate(context.Background(), "general", GenerateOptions{})

	require.Len(t, gw.configs, 2)
	assert.Equal(t, models.ModelRequestConfig{ModelID: "amazon.titan-text-express-v1", MaxTokens: 50, Temperature: 0.2, TopP: 0.9}, gw.configs[0])
	assert.Equal(t, models.ModelRequestConfig{ModelID: "us.anthropic.claude-sonnet-4-20250514-v1:0", MaxTokens: 200, Temperature: 0.7, TopP: 0.9}, gw.configs[1])
}

func TestJokeService_RecordFeedbackRejected(t *testing.T) {
	svc, store := newJokeService(t, &fakeCompleter{})

	failed := models.NewJokeError("nope", "general", errors.New("nope"))
	assert.False(t, svc.RecordFeedback(failed, 5, nil))
	assert.False(t, svc.RecordFeedback(nil, 5, nil))

	ok := models.NewJokeSuccess("joke", "general")
	assert.False(t, svc.RecordFeedback(ok, 0, nil))

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "storage must not be touched")
}

func TestJokeService_RecordFeedbackStorageFailure(t *testing.T) {
	// a regular file where the storage directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	store := NewFeedbackStore(filepath.Join(blocker, "store"), FeedbackStoreOptions{})
	svc := NewJokeService(&fakeCompleter{}, store, requestConfig(t, "m"))

	ok := models.NewJokeSuccess("joke", "general")
	assert.False(t, svc.RecordFeedback(ok, 3, nil))
}

func TestJokeService_StatisticsReport(t *testing.T) {
	svc, store := newJokeService(t, &fakeCompleter{})

	report, err := svc.StatisticsReport()
	require.NoError(t, err)
	assert.Equal(t, noFeedbackReport, report)

	require.NoError(t, store.Append(newEntry(t, "general", 5)))
	report, err = svc.StatisticsReport()
	require.NoError(t, err)
	assert.Contains(t, report, "📈 Total jokes rated: 1")
	assert.Contains(t, report, "  General: 1 jokes (100.0%), 5.0/5.0 avg")
}

func TestJokeService_StatisticsReportStrictFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FeedbackFileName), []byte("[oops"), 0644))
	store := NewFeedbackStore(dir, FeedbackStoreOptions{Strict: true})
	svc := NewJokeService(&fakeCompleter{}, store, requestConfig(t, "m"))

	_, err := svc.StatisticsReport()
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestFormatJoke(t *testing.T) {
	ok := models.NewJokeSuccess("Why do programmers prefer dark mode?\nBecause light attracts bugs.", "programming")
	assert.Equal(t, "🎭 Joke of the Day 🎭\n\nWhy do programmers prefer dark mode?\nBecause light attracts bugs.\n\nCategory: Programming", FormatJoke(ok))

	failed := models.NewJokeError("Rate limit exceeded for AWS Bedrock API.", "general", nil)
	assert.Equal(t, "Error: Rate limit exceeded for AWS Bedrock API.", FormatJoke(failed))
}
