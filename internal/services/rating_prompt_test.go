package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingPrompter_Ask(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		input   string
		ok      bool
		value   int
		comment string
		output  []string
	}{
		{name: "rating and comment", input: "4\nnice one\n", ok: true, value: 4, comment: "nice one"},
		{name: "rating without comment", input: " 5 \n\n", ok: true, value: 5},
		{name: "skip", input: "s\n", ok: false},
		{name: "skip word any case", input: "SKIP\n", ok: false},
		{
			name:   "invalid then valid",
			input:  "9\nabc\n2\n\n",
			ok:     true,
			value:  2,
			output: []string{"❌ Invalid rating '9'. Rating must be between 1 and 5.", "❌ Invalid rating 'abc'.", "   1 = Poor"},
		},
		{name: "eof before rating", input: "", ok: false, output: []string{"Feedback skipped."}},
		{name: "eof before comment", input: "3\n", ok: false, output: []string{"Feedback skipped."}},
		{name: "last line without newline", input: "3\nmeh", ok: true, value: 3, comment: "meh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewRatingPrompter(strings.NewReader(tt.input), &out)

			rating, ok := p.Ask(context.Background())
			require.Equal(t, tt.ok, ok, out.String())
			assert.Contains(t, out.String(), "How would you rate this joke? (1-5, or 's' to skip): ")
			for _, want := range tt.output {
				assert.Contains(t, out.String(), want)
			}
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.value, rating.Value)
			if tt.comment == "" {
				assert.Nil(t, rating.Comment)
			} else {
				require.NotNil(t, rating.Comment)
				assert.Equal(t, tt.comment, *rating.Comment)
			}
		})
	}
}

func TestRatingPrompter_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	p := NewRatingPrompter(pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := p.Ask(ctx)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Feedback skipped.")
}

func TestRatingPrompter_LineAfterCancelIsKept(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	p := NewRatingPrompter(pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := p.Ask(ctx)
	require.False(t, ok)

	go func() {
		_, _ = pw.Write([]byte("4\nnice\n"))
	}()

	rating, ok := p.Ask(context.Background())
	require.True(t, ok)
	assert.Equal(t, 4, rating.Value)
	require.NotNil(t, rating.Comment)
	assert.Equal(t, "nice", *rating.Comment)
}
